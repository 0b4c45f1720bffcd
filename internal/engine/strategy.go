package engine

import (
	"time"

	"ms-reminders/internal/email"
	"ms-reminders/internal/email/templates"
	"ms-reminders/internal/models"
)

// kindStrategy is the per-kind variation point of the otherwise shared
// pipeline: which template to render and whether firing completes the
// originating record.
type kindStrategy struct {
	render func(event *models.ReminderEvent, localTime time.Time) email.EmailTemplate

	// selfCompleting records get their completed flag set after a successful
	// send. Appointment-derived reminders are not self-completing; for them
	// the delivery log alone records that the occurrence fired.
	selfCompleting bool
}

func strategyFor(kind models.ReminderKind) kindStrategy {
	switch kind {
	case models.ReminderKindAppointment:
		return kindStrategy{
			render:         templates.GenerateAppointmentReminderEmail,
			selfCompleting: false,
		}
	default:
		return kindStrategy{
			render:         templates.GenerateCustomReminderEmail,
			selfCompleting: true,
		}
	}
}
