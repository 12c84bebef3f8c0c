// Package mailer sends the CSV report mails produced by the scheduled
// jobs. Messages carry a plain-text part plus a styled HTML alternative.
package mailer

import (
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/pasuper/supercron/pkg/config"
	apperrors "github.com/pasuper/supercron/pkg/errors"
)

// Sender delivers report mail. Implemented by Mailer; jobs depend on the
// interface so tests can capture messages.
type Sender interface {
	Send(msg Message) error
}

// Message is one outgoing report mail.
type Message struct {
	Recipient      string
	Subject        string
	Body           string
	AttachmentPath string
	AttachmentName string
}

// Mailer sends mail through the configured SMTP relay.
type Mailer struct {
	cfg config.SMTPConfig
}

// New creates a Mailer from SMTP settings.
func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers one message. The recipient falls back to the configured
// default when empty.
func (m *Mailer) Send(msg Message) error {
	recipient := msg.Recipient
	if recipient == "" {
		recipient = m.cfg.DefaultRecipient
	}
	if recipient == "" {
		return fmt.Errorf("%w: no recipient configured", apperrors.ErrMailDelivery)
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.cfg.Sender)
	mail.SetHeader("To", recipient)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)
	mail.AddAlternative("text/html", HTMLBody(msg.Body))
	if msg.AttachmentPath != "" {
		if msg.AttachmentName != "" {
			mail.Attach(msg.AttachmentPath, gomail.Rename(msg.AttachmentName))
		} else {
			mail.Attach(msg.AttachmentPath)
		}
	}

	dialer := gomail.NewDialer(m.cfg.Server, m.cfg.Port, m.cfg.Sender, m.cfg.Password)
	if err := dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("%w: sending to %s: %v", apperrors.ErrMailDelivery, recipient, err)
	}
	return nil
}

// HTMLBody wraps a plain-text body in the company mail template,
// preserving paragraph breaks.
func HTMLBody(body string) string {
	formatted := strings.ReplaceAll(body, "\n\n", "</p><p>")
	formatted = strings.ReplaceAll(formatted, "\n", "<br>")
	if !strings.HasPrefix(formatted, "<p>") {
		formatted = "<p>" + formatted + "</p>"
	}
	return fmt.Sprintf(htmlTemplate, formatted)
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<style>
body {
    font-family: -apple-system, BlinkMacSystemFont, 'Helvetica Neue', sans-serif;
    line-height: 1.6;
    color: #333;
    margin: 0;
    padding: 0;
    background-color: white;
}
.container {
    max-width: 580px;
    margin: 0 auto;
    padding: 40px 20px;
}
.logo {
    margin-bottom: 30px;
    font-size: 16px;
    color: #666;
    text-transform: uppercase;
    letter-spacing: 2px;
}
.content {
    padding-bottom: 30px;
}
.content p {
    margin: 0 0 1em 0;
}
.footer {
    padding-top: 20px;
    border-top: 1px solid #eee;
    font-size: 12px;
    color: #999;
}
</style>
</head>
<body>
<div class="container">
<div class="logo">Distribution Auto Parts Canada</div>
<div class="content">%s</div>
<div class="footer">
<p>Sent via Distribution Auto Parts Canada automated system</p>
</div>
</div>
</body>
</html>
`
