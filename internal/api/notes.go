package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/owuorviny109/crmsync/internal/crm"
)

// NotesService covers the /api/notes/ endpoints.
type NotesService struct {
	client *Client
}

// NoteInput holds writable note fields.
type NoteInput struct {
	Lead    *int64  `json:"lead,omitempty"`
	Content *string `json:"content,omitempty"`
}

func (s *NotesService) List(ctx context.Context, params url.Values) (*crm.List[crm.Note], error) {
	var list crm.List[crm.Note]
	if err := s.client.get(ctx, "/api/notes/", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *NotesService) Create(ctx context.Context, input NoteInput) (*crm.Note, error) {
	var note crm.Note
	if err := s.client.post(ctx, "/api/notes/", input, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *NotesService) Update(ctx context.Context, id int64, input NoteInput) (*crm.Note, error) {
	var note crm.Note
	if err := s.client.patch(ctx, fmt.Sprintf("/api/notes/%d/", id), input, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *NotesService) Delete(ctx context.Context, id int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/notes/%d/", id))
}
