// Package email delivers reminder emails.
package email

import (
	"fmt"
	"log"

	"github.com/resendlabs/resend-go"
)

// Service sends one reminder email. Implementations must be safe for
// concurrent use by the sweep goroutines.
type Service interface {
	SendReminder(toEmail, toName, title, body string) error
}

// ResendClient sends through the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewResendClient builds a client. fromEmail and fromName fall back to
// sensible defaults when empty.
func NewResendClient(apiKey, fromEmail, fromName string) *ResendClient {
	if fromEmail == "" {
		fromEmail = "reminders@praxis.app"
	}
	if fromName == "" {
		fromName = "Praxis"
	}
	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendReminder composes and sends one reminder email.
func (c *ResendClient) SendReminder(toEmail, toName, title, body string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: title,
		Html:    renderReminder(toName, title, body),
	}
	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("send reminder via resend: %w", err)
	}
	return nil
}

func renderReminder(name, title, body string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:480px;margin:0 auto">
<h2 style="color:#2d3748">%s</h2>
<p>Hi %s,</p>
<p>%s</p>
<p style="color:#718096;font-size:13px">You can change your reminder settings any time in Praxis.</p>
</div>`, title, name, body)
}

// LogService writes reminders to the log instead of sending them. Used when
// no email provider is configured.
type LogService struct{}

// SendReminder logs the reminder and succeeds.
func (LogService) SendReminder(toEmail, toName, title, body string) error {
	log.Printf("[email] (dry run) to=%s title=%q", toEmail, title)
	return nil
}
