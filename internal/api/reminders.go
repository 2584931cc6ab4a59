package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/owuorviny109/crmsync/internal/crm"
)

// RemindersService covers the /api/reminders/ endpoints.
type RemindersService struct {
	client *Client
}

// ReminderInput holds writable reminder fields.
type ReminderInput struct {
	Lead         *int64              `json:"lead,omitempty"`
	Title        *string             `json:"title,omitempty"`
	Description  *string             `json:"description,omitempty"`
	ReminderDate *time.Time          `json:"reminder_date,omitempty"`
	Status       *crm.ReminderStatus `json:"status,omitempty"`
}

func (s *RemindersService) List(ctx context.Context, params url.Values) (*crm.List[crm.Reminder], error) {
	var list crm.List[crm.Reminder]
	if err := s.client.get(ctx, "/api/reminders/", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *RemindersService) Get(ctx context.Context, id int64) (*crm.Reminder, error) {
	var reminder crm.Reminder
	if err := s.client.get(ctx, fmt.Sprintf("/api/reminders/%d/", id), nil, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (s *RemindersService) Create(ctx context.Context, input ReminderInput) (*crm.Reminder, error) {
	var reminder crm.Reminder
	if err := s.client.post(ctx, "/api/reminders/", input, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (s *RemindersService) Update(ctx context.Context, id int64, input ReminderInput) (*crm.Reminder, error) {
	var reminder crm.Reminder
	if err := s.client.patch(ctx, fmt.Sprintf("/api/reminders/%d/", id), input, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (s *RemindersService) Delete(ctx context.Context, id int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/reminders/%d/", id))
}

// Mine lists reminders belonging to the authenticated user.
func (s *RemindersService) Mine(ctx context.Context) (*crm.List[crm.Reminder], error) {
	var list crm.List[crm.Reminder]
	if err := s.client.get(ctx, "/api/reminders/my_reminders/", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Overdue lists pending reminders whose date has passed.
func (s *RemindersService) Overdue(ctx context.Context) (*crm.List[crm.Reminder], error) {
	var list crm.List[crm.Reminder]
	if err := s.client.get(ctx, "/api/reminders/overdue/", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
