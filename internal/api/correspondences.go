package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/owuorviny109/crmsync/internal/crm"
)

// CorrespondencesService covers the /api/correspondences/ endpoints.
type CorrespondencesService struct {
	client *Client
}

// CorrespondenceInput holds writable correspondence fields.
type CorrespondenceInput struct {
	Contact     *int64     `json:"contact,omitempty"`
	Type        *string    `json:"type,omitempty"`
	Subject     *string    `json:"subject,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

func (s *CorrespondencesService) List(ctx context.Context, params url.Values) (*crm.List[crm.Correspondence], error) {
	var list crm.List[crm.Correspondence]
	if err := s.client.get(ctx, "/api/correspondences/", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *CorrespondencesService) Create(ctx context.Context, input CorrespondenceInput) (*crm.Correspondence, error) {
	var entry crm.Correspondence
	if err := s.client.post(ctx, "/api/correspondences/", input, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *CorrespondencesService) Update(ctx context.Context, id int64, input CorrespondenceInput) (*crm.Correspondence, error) {
	var entry crm.Correspondence
	if err := s.client.patch(ctx, fmt.Sprintf("/api/correspondences/%d/", id), input, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *CorrespondencesService) Delete(ctx context.Context, id int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/correspondences/%d/", id))
}
