package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/owuorviny109/crmsync/internal/crm"
)

// ContactsService covers the /api/contacts/ endpoints.
type ContactsService struct {
	client *Client
}

// ContactInput holds writable contact fields.
type ContactInput struct {
	Lead      *int64  `json:"lead,omitempty"`
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Position  *string `json:"position,omitempty"`
	IsPrimary *bool   `json:"is_primary,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (s *ContactsService) List(ctx context.Context, params url.Values) (*crm.List[crm.Contact], error) {
	var list crm.List[crm.Contact]
	if err := s.client.get(ctx, "/api/contacts/", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *ContactsService) Get(ctx context.Context, id int64) (*crm.Contact, error) {
	var contact crm.Contact
	if err := s.client.get(ctx, fmt.Sprintf("/api/contacts/%d/", id), nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *ContactsService) Create(ctx context.Context, input ContactInput) (*crm.Contact, error) {
	var contact crm.Contact
	if err := s.client.post(ctx, "/api/contacts/", input, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *ContactsService) Update(ctx context.Context, id int64, input ContactInput) (*crm.Contact, error) {
	var contact crm.Contact
	if err := s.client.patch(ctx, fmt.Sprintf("/api/contacts/%d/", id), input, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *ContactsService) Delete(ctx context.Context, id int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/contacts/%d/", id))
}

// Correspondences lists the interactions logged against one contact.
func (s *ContactsService) Correspondences(ctx context.Context, id int64) ([]crm.Correspondence, error) {
	var entries []crm.Correspondence
	if err := s.client.get(ctx, fmt.Sprintf("/api/contacts/%d/correspondences/", id), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
