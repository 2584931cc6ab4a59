package store

import (
	"log/slog"

	"github.com/owuorviny109/crmsync/internal/api"
	"github.com/owuorviny109/crmsync/internal/crm"
)

// Leads is the leads collection store. It is the only store that
// tracks pagination and reconciles the selected record on update.
type Leads = Collection[crm.Lead, api.LeadInput]

// Contacts is the contacts collection store.
type Contacts = Collection[crm.Contact, api.ContactInput]

// Reminders is the reminders collection store.
type Reminders = Collection[crm.Reminder, api.ReminderInput]

// NewLeads builds the leads store on top of the transport client.
func NewLeads(client *api.Client, logger *slog.Logger) *Leads {
	leads := client.Leads
	return NewCollection(CollectionConfig[crm.Lead, api.LeadInput]{
		API: CollectionAPI[crm.Lead, api.LeadInput]{
			FetchAll: leads.List,
			FetchOne: leads.Get,
			Create:   leads.Create,
			Update:   leads.Update,
			Delete:   leads.Delete,
		},
		Messages: Messages{
			FetchAll: "Failed to fetch leads",
			FetchOne: "Failed to fetch lead",
			Create:   "Failed to create lead",
			Update:   "Failed to update lead",
			Delete:   "Failed to delete lead",
		},
		TrackPagination:   true,
		ReconcileSelected: true,
		Logger:            logger,
	})
}

// NewContacts builds the contacts store.
func NewContacts(client *api.Client, logger *slog.Logger) *Contacts {
	contacts := client.Contacts
	return NewCollection(CollectionConfig[crm.Contact, api.ContactInput]{
		API: CollectionAPI[crm.Contact, api.ContactInput]{
			FetchAll: contacts.List,
			Create:   contacts.Create,
			Update:   contacts.Update,
			Delete:   contacts.Delete,
		},
		Messages: Messages{
			FetchAll: "Failed to fetch contacts",
			FetchOne: "Failed to fetch contact",
			Create:   "Failed to create contact",
			Update:   "Failed to update contact",
			Delete:   "Failed to delete contact",
		},
		Logger: logger,
	})
}

// NewReminders builds the reminders store.
func NewReminders(client *api.Client, logger *slog.Logger) *Reminders {
	reminders := client.Reminders
	return NewCollection(CollectionConfig[crm.Reminder, api.ReminderInput]{
		API: CollectionAPI[crm.Reminder, api.ReminderInput]{
			FetchAll: reminders.List,
			Create:   reminders.Create,
			Update:   reminders.Update,
			Delete:   reminders.Delete,
		},
		Messages: Messages{
			FetchAll: "Failed to fetch reminders",
			FetchOne: "Failed to fetch reminder",
			Create:   "Failed to create reminder",
			Update:   "Failed to update reminder",
			Delete:   "Failed to delete reminder",
		},
		Logger: logger,
	})
}

// PendingReminders filters the cached reminders down to those not yet
// completed.
func PendingReminders(reminders *Reminders) []crm.Reminder {
	return reminders.Where(func(r crm.Reminder) bool {
		return r.Status == crm.ReminderPending
	})
}
