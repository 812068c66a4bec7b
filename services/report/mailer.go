package report

import (
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Attachment is a file carried with a report email
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Mailer delivers a finished report
type Mailer interface {
	SendReport(subject, body string, attachments []Attachment) error
}

// SendGridMailer implements Mailer using the SendGrid API
type SendGridMailer struct {
	apiKey string
	from   string
	to     []string
}

// NewSendGridMailer creates a mailer sending from the given address to the
// given recipients
func NewSendGridMailer(apiKey, from string, to []string) *SendGridMailer {
	return &SendGridMailer{
		apiKey: apiKey,
		from:   from,
		to:     to,
	}
}

// SendReport sends the report to every configured recipient
func (m *SendGridMailer) SendReport(subject, body string, attachments []Attachment) error {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail("", m.from))
	message.Subject = subject

	p := mail.NewPersonalization()
	for _, addr := range m.to {
		p.AddTos(mail.NewEmail("", addr))
	}
	message.AddPersonalizations(p)
	message.AddContent(mail.NewContent("text/plain", body))

	for _, a := range attachments {
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(a.Data))
		attachment.SetType(a.ContentType)
		attachment.SetFilename(a.Filename)
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send report, status code: %d", response.StatusCode)
	}
	return nil
}
