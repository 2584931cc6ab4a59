package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/owuorviny109/crmsync/internal/crm"
)

// LeadsService covers the /api/leads/ endpoints.
type LeadsService struct {
	client *Client
}

// LeadInput holds writable lead fields. Nil fields are omitted, which
// makes the same type serve both create and partial update.
type LeadInput struct {
	Name           *string         `json:"name,omitempty"`
	Company        *string         `json:"company,omitempty"`
	Email          *string         `json:"email,omitempty"`
	Phone          *string         `json:"phone,omitempty"`
	Status         *crm.LeadStatus `json:"status,omitempty"`
	Priority       *string         `json:"priority,omitempty"`
	Source         *string         `json:"source,omitempty"`
	EstimatedValue *string         `json:"estimated_value,omitempty"`
	Description    *string         `json:"description,omitempty"`
}

func (s *LeadsService) List(ctx context.Context, params url.Values) (*crm.List[crm.Lead], error) {
	var list crm.List[crm.Lead]
	if err := s.client.get(ctx, "/api/leads/", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *LeadsService) Get(ctx context.Context, id int64) (*crm.Lead, error) {
	var lead crm.Lead
	if err := s.client.get(ctx, fmt.Sprintf("/api/leads/%d/", id), nil, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (s *LeadsService) Create(ctx context.Context, input LeadInput) (*crm.Lead, error) {
	var lead crm.Lead
	if err := s.client.post(ctx, "/api/leads/", input, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (s *LeadsService) Update(ctx context.Context, id int64, input LeadInput) (*crm.Lead, error) {
	var lead crm.Lead
	if err := s.client.patch(ctx, fmt.Sprintf("/api/leads/%d/", id), input, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (s *LeadsService) Delete(ctx context.Context, id int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/leads/%d/", id))
}

// Mine lists leads owned by the authenticated user.
func (s *LeadsService) Mine(ctx context.Context) (*crm.List[crm.Lead], error) {
	var list crm.List[crm.Lead]
	if err := s.client.get(ctx, "/api/leads/my_leads/", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AuditLog returns the change history of one lead.
func (s *LeadsService) AuditLog(ctx context.Context, id int64) ([]crm.AuditLogEntry, error) {
	var entries []crm.AuditLogEntry
	if err := s.client.get(ctx, fmt.Sprintf("/api/leads/%d/audit_log/", id), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
