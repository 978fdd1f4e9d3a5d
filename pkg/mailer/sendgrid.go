package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var sendGridSend = func(ctx context.Context, c *sendgrid.Client, m *mail.SGMailV3) (int, string, error) {
	resp, err := c.SendWithContext(ctx, m)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, resp.Body, nil
}

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	client  *sendgrid.Client
	from    Address
	sandbox bool
}

func NewSendGridSender(cfg Config) *SendGridSender {
	return &SendGridSender{
		client:  sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:    cfg.From,
		sandbox: cfg.SendGridSandbox,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	m := s.build(msg)
	status, body, err := sendGridSend(ctx, s.client, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", status, body)
	}
	return nil
}

func (s *SendGridSender) build(msg Message) *mail.SGMailV3 {
	from := mail.NewEmail(s.from.Name, s.from.Email)
	to := mail.NewEmail(msg.To.Name, msg.To.Email)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	if msg.ReplyTo != nil {
		m.SetReplyTo(mail.NewEmail(msg.ReplyTo.Name, msg.ReplyTo.Email))
	}
	if s.sandbox {
		settings := mail.NewMailSettings()
		settings.SetSandboxMode(mail.NewSetting(true))
		m.SetMailSettings(settings)
	}
	return m
}
