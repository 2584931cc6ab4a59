package api

import (
	"time"

	"github.com/owuorviny109/crmsync/internal/crm"
)

// Pointer helpers for building input structs.

func String(v string) *string                           { return &v }
func Int64(v int64) *int64                              { return &v }
func Bool(v bool) *bool                                 { return &v }
func Time(v time.Time) *time.Time                       { return &v }
func LeadStatus(v crm.LeadStatus) *crm.LeadStatus       { return &v }
func ReminderStatus(v crm.ReminderStatus) *crm.ReminderStatus {
	return &v
}
