package crm

import (
	"bytes"
	"encoding/json"
	"time"
)

// Role is the server-assigned user role.
type Role string

const (
	RoleManager Role = "manager"
	RoleAgent   Role = "agent"
)

// User is the authenticated user's profile as returned by the API.
// Only ID and Role carry client-side meaning; everything else is
// displayed verbatim.
type User struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Role      Role    `json:"role"`
	Phone     *string `json:"phone,omitempty"`
}

// LeadStatus is the sales pipeline state of a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

// Lead is a sales lead record.
type Lead struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Company        string     `json:"company,omitempty"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Status         LeadStatus `json:"status,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	Source         string     `json:"source,omitempty"`
	Owner          *User      `json:"owner,omitempty"`
	EstimatedValue *string    `json:"estimated_value,omitempty"`
	Description    string     `json:"description,omitempty"`
	ContactsCount  int        `json:"contacts_count,omitempty"`
	NotesCount     int        `json:"notes_count,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Contact is a person attached to a lead.
type Contact struct {
	ID        int64     `json:"id"`
	Lead      int64     `json:"lead"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Position  string    `json:"position,omitempty"`
	IsPrimary bool      `json:"is_primary"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Note is a free-form annotation on a lead.
type Note struct {
	ID        int64     `json:"id"`
	Lead      int64     `json:"lead"`
	Author    *User     `json:"author,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReminderStatus is the completion state of a reminder.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderCompleted ReminderStatus = "completed"
)

// Reminder is a dated follow-up task attached to a lead.
type Reminder struct {
	ID           int64          `json:"id"`
	Lead         int64          `json:"lead"`
	User         *User          `json:"user,omitempty"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	ReminderDate time.Time      `json:"reminder_date"`
	Status       ReminderStatus `json:"status,omitempty"`
	IsOverdue    bool           `json:"is_overdue,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Correspondence is a logged interaction with a contact.
type Correspondence struct {
	ID          int64     `json:"id"`
	Contact     int64     `json:"contact"`
	ContactName string    `json:"contact_name,omitempty"`
	Type        string    `json:"type"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	LoggedBy    *User     `json:"logged_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuditLogEntry is one row of a lead's change history.
type AuditLogEntry struct {
	ID         int64           `json:"id"`
	User       *User           `json:"user,omitempty"`
	Action     string          `json:"action"`
	ModelName  string          `json:"model_name"`
	ObjectID   int64           `json:"object_id"`
	ObjectRepr string          `json:"object_repr,omitempty"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	IPAddress  *string         `json:"ip_address,omitempty"`
}

func (l Lead) EntityID() int64           { return l.ID }
func (c Contact) EntityID() int64        { return c.ID }
func (n Note) EntityID() int64           { return n.ID }
func (r Reminder) EntityID() int64       { return r.ID }
func (c Correspondence) EntityID() int64 { return c.ID }

// List is a collection response. The API returns either a bare JSON
// array or a paginated envelope with count/next/previous/results;
// Paginated records which form was received.
type List[T any] struct {
	Count     int
	Next      *string
	Previous  *string
	Results   []T
	Paginated bool
}

func (l *List[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		l.Paginated = false
		l.Count = 0
		l.Next, l.Previous = nil, nil
		return json.Unmarshal(data, &l.Results)
	}

	var envelope struct {
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []T     `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	l.Count = envelope.Count
	l.Next = envelope.Next
	l.Previous = envelope.Previous
	l.Results = envelope.Results
	l.Paginated = true
	return nil
}
