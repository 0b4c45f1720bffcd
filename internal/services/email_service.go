package services

import (
	"fmt"
	"log"
	"net/smtp"
)

type EmailService struct {
	SMTPHost  string
	SMTPPort  string
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func NewEmailService(smtpHost, smtpPort, username, password, fromEmail, fromName string) *EmailService {
	return &EmailService{
		SMTPHost:  smtpHost,
		SMTPPort:  smtpPort,
		Username:  username,
		Password:  password,
		FromEmail: fromEmail,
		FromName:  fromName,
	}
}

// SendEmail sends an HTML email using SMTP. The body is expected to be a
// complete HTML document (the template builder produces one).
func (e *EmailService) SendEmail(to, subject, htmlBody string) error {
	smtpServer := fmt.Sprintf("%s:%s", e.SMTPHost, e.SMTPPort)

	auth := smtp.PlainAuth("", e.Username, e.Password, e.SMTPHost)

	from := fmt.Sprintf("%s <%s>", e.FromName, e.FromEmail)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		from, to, subject, htmlBody))

	err := smtp.SendMail(smtpServer, auth, e.FromEmail, []string{to}, msg)
	if err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
		return err
	}

	log.Printf("Email sent successfully to %s", to)
	return nil
}
