// Package mailer delivers transactional mail through an SMTP relay or the
// SendGrid API.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// Providers
const (
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
)

var ErrInvalidMessage = errors.New("mailer: message needs a recipient and a subject")

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// Message is a single outbound mail.
type Message struct {
	To      Address
	ReplyTo *Address
	Subject string
	Text    string
	HTML    string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To.Email) == "" || strings.TrimSpace(m.Subject) == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Sender delivers one message or returns the relay's error.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects the provider and its credentials.
type Config struct {
	Provider        string
	From            Address
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	SendGridAPIKey  string
	SendGridSandbox bool
}

// New builds the Sender named by cfg.Provider.
func New(cfg Config) (Sender, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, errors.New("mailer: smtp host is required")
		}
		return NewSMTPSender(cfg), nil
	case ProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, errors.New("mailer: sendgrid api key is required")
		}
		return NewSendGridSender(cfg), nil
	default:
		return nil, fmt.Errorf("mailer: unknown provider %q", cfg.Provider)
	}
}
