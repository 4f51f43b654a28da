package notification

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"tcw1/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var ErrMailerNotConfigured = errors.New("mailer not configured")

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridMailer(apiKey, fromEmail, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	text := msg.Text
	if text == "" {
		text = stripTags(msg.HTML)
	}
	email := mail.NewSingleEmail(m.from, msg.Subject, mail.NewEmail("", msg.To), text, msg.HTML)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer stands in when no SendGrid key is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logger.Log.Warnw("⚠️ SendGrid API key not configured, email not sent", "to", msg.To, "subject", msg.Subject)
	return ErrMailerNotConfigured
}

// NewMailer picks SendGrid when apiKey is set.
func NewMailer(apiKey, fromEmail, fromName string) Mailer {
	if apiKey == "" {
		return LogMailer{}
	}
	return NewSendGridMailer(apiKey, fromEmail, fromName)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(html string) string {
	lines := strings.Split(tagPattern.ReplaceAllString(html, ""), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
