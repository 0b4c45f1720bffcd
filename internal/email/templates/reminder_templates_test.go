package templates

import (
	"testing"
	"time"

	"ms-reminders/internal/email"
	"ms-reminders/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCustomReminderEmail(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	assert.NoError(t, err)

	event := &models.ReminderEvent{
		ID:          "rem-1",
		Kind:        models.ReminderKindCustom,
		Title:       "Water the plants",
		Notes:       "The balcony ones too",
		NotifyEmail: "owner@example.com",
	}
	localTime := time.Date(2025, 6, 1, 9, 0, 0, 0, berlin)

	tmpl := GenerateCustomReminderEmail(event, localTime)

	assert.Equal(t, email.EmailReminderDue, tmpl.Type)
	assert.Contains(t, tmpl.Subject, "Water the plants")
	// The body shows the wall-clock time in the reminder's own zone
	assert.Contains(t, tmpl.HTML, "9:00 AM")
	assert.Contains(t, tmpl.HTML, "Europe/Berlin")
	assert.Contains(t, tmpl.HTML, "The balcony ones too")
}

func TestGenerateCustomReminderEmailUntitled(t *testing.T) {
	event := &models.ReminderEvent{
		ID:   "rem-2",
		Kind: models.ReminderKindCustom,
	}

	tmpl := GenerateCustomReminderEmail(event, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	assert.Contains(t, tmpl.Subject, "Your reminder")
	assert.NotContains(t, tmpl.HTML, "📝 Notes")
}

func TestGenerateAppointmentReminderEmail(t *testing.T) {
	event := &models.ReminderEvent{
		ID:    "rem-3",
		Kind:  models.ReminderKindAppointment,
		Title: "Dentist",
	}
	localTime := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

	tmpl := GenerateAppointmentReminderEmail(event, localTime)

	assert.Equal(t, email.EmailAppointmentDue, tmpl.Type)
	assert.Contains(t, tmpl.Subject, "Dentist")
	assert.Contains(t, tmpl.HTML, "2:30 PM")
	assert.Contains(t, tmpl.HTML, "June 1, 2025")
}
