package templates

import (
	"fmt"
	"time"

	"ms-reminders/internal/email"
	"ms-reminders/internal/email/builders"
	"ms-reminders/internal/models"
)

// GenerateCustomReminderEmail renders the notification for a user-created
// reminder. localTime is the scheduled instant expressed in the reminder's
// own zone, so the wall-clock text matches what the user typed in.
func GenerateCustomReminderEmail(event *models.ReminderEvent, localTime time.Time) email.EmailTemplate {
	builder := builders.NewEmailBuilder("Daylog", "#4F46E5")

	title := event.Title
	if title == "" {
		title = "Your reminder"
	}

	builder.SetHeader("⏰ Reminder", fmt.Sprintf("It's time: %s", title))

	builder.AddInfoBox(
		fmt.Sprintf("<strong>%s</strong><br>%s", title, localTime.Format("Monday, January 2, 2006 at 3:04 PM")),
		"info",
	)

	details := [][2]string{
		{"Scheduled For", localTime.Format("3:04 PM")},
		{"Date", localTime.Format("January 2, 2006")},
		{"Time Zone", localTime.Location().String()},
	}
	builder.AddDetailsList(details)

	if event.Notes != "" {
		builder.AddSection("📝 Notes", fmt.Sprintf("<p>%s</p>", event.Notes))
	}

	builder.AddDivider()
	builder.AddParagraph("This reminder will not repeat. You can create a new one from your Daylog dashboard.")

	return email.EmailTemplate{
		Type:    email.EmailReminderDue,
		Subject: fmt.Sprintf("⏰ Reminder: %s", title),
		HTML:    builder.Build(),
	}
}

// GenerateAppointmentReminderEmail renders the notification for a reminder
// derived from an appointment record.
func GenerateAppointmentReminderEmail(event *models.ReminderEvent, localTime time.Time) email.EmailTemplate {
	builder := builders.NewEmailBuilder("Daylog", "#F59E0B")

	title := event.Title
	if title == "" {
		title = "Your appointment"
	}

	builder.SetHeader("📅 Appointment Reminder", fmt.Sprintf("%s is coming up", title))

	builder.AddInfoBox(
		fmt.Sprintf("<strong>%s</strong><br>%s", title, localTime.Format("Monday, January 2, 2006 at 3:04 PM")),
		"warning",
	)

	details := [][2]string{
		{"Starts At", localTime.Format("3:04 PM")},
		{"Date", localTime.Format("January 2, 2006")},
		{"Time Zone", localTime.Location().String()},
	}
	builder.AddDetailsList(details)

	if event.Notes != "" {
		builder.AddSection("📝 Details", fmt.Sprintf("<p>%s</p>", event.Notes))
	}

	builder.AddDivider()
	builder.AddParagraph("Please plan to arrive a few minutes early.")

	return email.EmailTemplate{
		Type:    email.EmailAppointmentDue,
		Subject: fmt.Sprintf("📅 Upcoming: %s", title),
		HTML:    builder.Build(),
	}
}
