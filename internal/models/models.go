package models

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// ReminderKind represents the reminder kind enum
type ReminderKind string

const (
	// ReminderKindCustom is a user-created, one-shot reminder. Once it has
	// fired, its completed flag is set and it never becomes a candidate again.
	ReminderKindCustom ReminderKind = "custom"
	// ReminderKindAppointment is a reminder derived from an appointment
	// record. These rows are not self-completing; the delivery log is the
	// only record that they fired.
	ReminderKindAppointment ReminderKind = "appointment"
)

// Scan implements the sql.Scanner interface for ReminderKind
func (k *ReminderKind) Scan(value interface{}) error {
	if value == nil {
		*k = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*k = ReminderKind(v)
		return nil
	case []byte:
		*k = ReminderKind(v)
		return nil
	}
	return fmt.Errorf("cannot scan %T into ReminderKind", value)
}

// Value implements the driver.Valuer interface for ReminderKind
func (k ReminderKind) Value() (driver.Value, error) {
	return string(k), nil
}

// ReminderEvent is the unit the dispatch engine acts on. The scheduled date
// and time are stored as plain civil values; Timezone decides which instant
// they mean for this particular owner.
type ReminderEvent struct {
	ID            string         `json:"id" db:"id"`
	OwnerID       string         `json:"owner_id" db:"owner_id"`
	Kind          ReminderKind   `json:"kind" db:"kind"`
	RelatedID     sql.NullString `json:"related_id,omitempty" db:"related_id"`
	ScheduledDate string         `json:"scheduled_date" db:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime string         `json:"scheduled_time" db:"scheduled_time"` // HH:MM
	Timezone      string         `json:"timezone" db:"timezone"`
	NotifyEnabled bool           `json:"notify_enabled" db:"notify_enabled"`
	NotifyEmail   string         `json:"notify_email" db:"notify_email"`
	Title         string         `json:"title" db:"title"`
	Notes         string         `json:"notes,omitempty" db:"notes"`
	Completed     bool           `json:"completed" db:"completed"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}

// OriginID returns the identifier the delivery log keys on: the source
// appointment for derived reminders, the reminder row itself otherwise.
func (e *ReminderEvent) OriginID() string {
	if e.Kind == ReminderKindAppointment && e.RelatedID.Valid {
		return e.RelatedID.String
	}
	return e.ID
}

// DeliveryRecord is one append-only row of the delivery audit trail. Its
// presence inside the dedup cooldown window is the source of truth for
// "already sent".
type DeliveryRecord struct {
	DeliveryID  int          `json:"delivery_id" db:"delivery_id"`
	OriginID    string       `json:"origin_id" db:"origin_id"`
	Kind        ReminderKind `json:"kind" db:"kind"`
	NotifyEmail string       `json:"notify_email" db:"notify_email"`
	FiredAt     time.Time    `json:"fired_at" db:"fired_at"`
	Completed   bool         `json:"completed" db:"completed"`
}
