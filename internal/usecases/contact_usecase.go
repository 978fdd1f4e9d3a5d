package usecases

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
	"luxe-estates.backend/internal/domain/entities"
	"luxe-estates.backend/pkg/logger"
	"luxe-estates.backend/pkg/mailer"
	"luxe-estates.backend/pkg/metrics"
)

// ContactUsecase relays contact form submissions by mail
type ContactUsecase struct {
	sender    mailer.Sender
	recipient mailer.Address
	brand     string
	metrics   *metrics.Metrics
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(sender mailer.Sender, recipient mailer.Address, brand string, m *metrics.Metrics) *ContactUsecase {
	if brand == "" {
		brand = "Luxe Estates"
	}
	return &ContactUsecase{sender: sender, recipient: recipient, brand: brand, metrics: m}
}

// Submit sends the business notification, then the auto-reply. Both sends
// must succeed; the first failure is returned.
func (u *ContactUsecase) Submit(ctx context.Context, input *entities.ContactInput) error {
	notification := u.notification(input)
	if err := u.sender.Send(ctx, notification); err != nil {
		u.metrics.ObserveContact("failed")
		logger.Error(ctx, "Contact notification email failed", zap.Error(err))
		return fmt.Errorf("send notification: %w", err)
	}

	reply := u.autoReply(input)
	if err := u.sender.Send(ctx, reply); err != nil {
		u.metrics.ObserveContact("failed")
		logger.Error(ctx, "Contact auto-reply email failed", zap.Error(err))
		return fmt.Errorf("send auto-reply: %w", err)
	}

	u.metrics.ObserveContact("sent")
	logger.Info(ctx, "Contact submission relayed", zap.String("subject", input.Subject))
	return nil
}

func (u *ContactUsecase) notification(in *entities.ContactInput) mailer.Message {
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		phone = "Not provided"
	}
	rows := [][2]string{
		{"Name", in.FullName()},
		{"Email", in.Email},
		{"Phone", phone},
		{"Subject", in.Subject},
	}

	var text, body strings.Builder
	body.WriteString("<h2>New Contact Form Submission</h2><table>")
	for _, r := range rows {
		fmt.Fprintf(&text, "%s: %s\n", r[0], r[1])
		fmt.Fprintf(&body, "<tr><td><strong>%s:</strong></td><td>%s</td></tr>", r[0], html.EscapeString(r[1]))
	}
	body.WriteString("</table>")
	fmt.Fprintf(&text, "\nMessage:\n%s\n", in.Message)
	fmt.Fprintf(&body, "<h3>Message</h3><p>%s</p>", htmlParagraphs(in.Message))

	return mailer.Message{
		To:      u.recipient,
		ReplyTo: &mailer.Address{Name: in.FullName(), Email: in.Email},
		Subject: "New Contact Form Submission: " + in.Subject,
		Text:    text.String(),
		HTML:    body.String(),
	}
}

func (u *ContactUsecase) autoReply(in *entities.ContactInput) mailer.Message {
	text := fmt.Sprintf("Dear %s,\n\nThank you for contacting %s. We have received your message regarding %q and a member of our team will respond within 24 hours.\n\nKind regards,\nThe %s Team\n",
		in.FirstName, u.brand, in.Subject, u.brand)
	body := fmt.Sprintf("<p>Dear %s,</p><p>Thank you for contacting %s. We have received your message regarding <strong>%s</strong> and a member of our team will respond within 24 hours.</p><p>Kind regards,<br>The %s Team</p>",
		html.EscapeString(in.FirstName), html.EscapeString(u.brand), html.EscapeString(in.Subject), html.EscapeString(u.brand))

	msg := mailer.Message{
		To:      mailer.Address{Name: in.FullName(), Email: in.Email},
		Subject: "Thank you for contacting " + u.brand,
		Text:    text,
		HTML:    body,
	}
	if u.recipient.Email != "" {
		replyTo := u.recipient
		msg.ReplyTo = &replyTo
	}
	return msg
}

func htmlParagraphs(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}
