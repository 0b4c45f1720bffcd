package email

// EmailCategory represents the main category of the email
type EmailCategory string

const (
	CategoryReminder    EmailCategory = "REMINDER"
	CategoryAppointment EmailCategory = "APPOINTMENT"
)

// EmailAction represents the action that triggered the email
type EmailAction string

const (
	ActionDue EmailAction = "DUE"
)

// EmailType represents a specific type of email combining category and action
type EmailType struct {
	Category EmailCategory
	Action   EmailAction
}

// Common email types
var (
	EmailReminderDue    = EmailType{CategoryReminder, ActionDue}
	EmailAppointmentDue = EmailType{CategoryAppointment, ActionDue}
)

// String returns a string representation of the email type
func (t EmailType) String() string {
	return string(t.Category) + "_" + string(t.Action)
}

// EmailTemplate represents a rendered email ready for sending
type EmailTemplate struct {
	Type    EmailType
	Subject string
	HTML    string
}
