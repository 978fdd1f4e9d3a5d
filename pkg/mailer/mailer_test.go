package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsProvider(t *testing.T) {
	s, err := New(Config{Provider: "smtp", SMTPHost: "mail.luxe.test", SMTPPort: 587})
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	s, err = New(Config{Provider: "SendGrid", SendGridAPIKey: "SG.key"})
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, s)

	_, err = New(Config{Provider: "smtp"})
	assert.Error(t, err)
	_, err = New(Config{Provider: "sendgrid"})
	assert.Error(t, err)
	_, err = New(Config{Provider: "pigeon"})
	assert.Error(t, err)
}

func TestSMTPSender_Send(t *testing.T) {
	orig := sendMail
	t.Cleanup(func() { sendMail = orig })

	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody string
	sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, string(msg)
		return nil
	}

	s := NewSMTPSender(Config{
		SMTPHost: "mail.luxe.test", SMTPPort: 587, SMTPUser: "u", SMTPPassword: "p",
		From: Address{Name: "Luxe Estates", Email: "noreply@luxe.test"},
	})
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	err := s.Send(context.Background(), Message{
		To:      Address{Email: "info@luxe.test"},
		ReplyTo: &Address{Name: "Ann Lee", Email: "ann@mail.test"},
		Subject: "Viewing request",
		Text:    "hello",
		HTML:    "<p>hello</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "mail.luxe.test:587", gotAddr)
	assert.Equal(t, "noreply@luxe.test", gotFrom)
	assert.Equal(t, []string{"info@luxe.test"}, gotTo)
	assert.Contains(t, gotBody, "Reply-To: \"Ann Lee\" <ann@mail.test>")
	assert.Contains(t, gotBody, "Subject: Viewing request")
	assert.Contains(t, gotBody, "multipart/alternative")
	assert.Contains(t, gotBody, "<p>hello</p>")
	assert.True(t, strings.Contains(gotBody, "text/plain"))
}

func TestAddress_String(t *testing.T) {
	assert.Equal(t, "ann@mail.test", Address{Email: "ann@mail.test"}.String())
	assert.Equal(t, `"Ann Lee" <ann@mail.test>`, Address{Name: "Ann Lee", Email: "ann@mail.test"}.String())
	assert.Equal(t, `"Ann \"The Agent\" Lee" <ann@mail.test>`, Address{Name: `Ann "The Agent" Lee`, Email: "ann@mail.test"}.String())
	assert.Equal(t, "=?utf-8?q?Ren=C3=A9e_M=C3=BCller?= <renee@mail.test>", Address{Name: "Renée Müller", Email: "renee@mail.test"}.String())
}

func TestSMTPSender_Errors(t *testing.T) {
	orig := sendMail
	t.Cleanup(func() { sendMail = orig })
	sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("535 auth failed") }

	s := NewSMTPSender(Config{SMTPHost: "mail.luxe.test", SMTPPort: 25, From: Address{Email: "noreply@luxe.test"}})

	err := s.Send(context.Background(), Message{To: Address{Email: "a@b.test"}, Subject: "x", Text: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "535 auth failed")

	err = s.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Send(ctx, Message{To: Address{Email: "a@b.test"}, Subject: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSendGridSender_Send(t *testing.T) {
	orig := sendGridSend
	t.Cleanup(func() { sendGridSend = orig })

	var got *mail.SGMailV3
	sendGridSend = func(_ context.Context, _ *sendgrid.Client, m *mail.SGMailV3) (int, string, error) {
		got = m
		return 202, "", nil
	}

	s := NewSendGridSender(Config{SendGridAPIKey: "SG.key", SendGridSandbox: true, From: Address{Name: "Luxe", Email: "noreply@luxe.test"}})
	err := s.Send(context.Background(), Message{
		To:      Address{Name: "Ann", Email: "ann@mail.test"},
		ReplyTo: &Address{Email: "info@luxe.test"},
		Subject: "Thank you",
		Text:    "t",
		HTML:    "<p>t</p>",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Thank you", got.Subject)
	assert.Equal(t, "noreply@luxe.test", got.From.Address)
	assert.Equal(t, "info@luxe.test", got.ReplyTo.Address)
	require.NotNil(t, got.MailSettings)
	assert.True(t, *got.MailSettings.SandboxMode.Enable)
}

func TestSendGridSender_Failures(t *testing.T) {
	orig := sendGridSend
	t.Cleanup(func() { sendGridSend = orig })

	s := NewSendGridSender(Config{SendGridAPIKey: "SG.key", From: Address{Email: "noreply@luxe.test"}})
	msg := Message{To: Address{Email: "a@b.test"}, Subject: "s", Text: "t", HTML: "h"}

	sendGridSend = func(context.Context, *sendgrid.Client, *mail.SGMailV3) (int, string, error) {
		return 401, `{"errors":[{"message":"bad key"}]}`, nil
	}
	err := s.Send(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")

	sendGridSend = func(context.Context, *sendgrid.Client, *mail.SGMailV3) (int, string, error) {
		return 0, "", errors.New("dial tcp: timeout")
	}
	err = s.Send(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}
