// Package sendermock provides function-backed fakes for the outbound
// delivery interfaces. The zero value of each fake reports success.
package sendermock

import (
	"context"
	"time"

	"beautyhub-backend/internal/sender"
)

// Email satisfies sender.EmailSender. Set SendEmailFn to control the
// outcome; leave it nil for an always-successful sender.
type Email struct {
	SendEmailFn func(ctx context.Context, to, subject, body string) (sender.SendResult, error)
}

func (m *Email) SendEmail(ctx context.Context, to, subject, body string) (sender.SendResult, error) {
	if m.SendEmailFn != nil {
		return m.SendEmailFn(ctx, to, subject, body)
	}
	return sender.SendResult{MessageID: "mock-email", SentAt: time.Now()}, nil
}

// Messenger satisfies sender.MessageSender.
type Messenger struct {
	SendSMSFn      func(ctx context.Context, to, body string) (sender.SendResult, error)
	SendWhatsAppFn func(ctx context.Context, to, body string) (sender.SendResult, error)
}

func (m *Messenger) SendSMS(ctx context.Context, to, body string) (sender.SendResult, error) {
	if m.SendSMSFn != nil {
		return m.SendSMSFn(ctx, to, body)
	}
	return sender.SendResult{MessageID: "mock-sms", SentAt: time.Now()}, nil
}

func (m *Messenger) SendWhatsApp(ctx context.Context, to, body string) (sender.SendResult, error) {
	if m.SendWhatsAppFn != nil {
		return m.SendWhatsAppFn(ctx, to, body)
	}
	return sender.SendResult{MessageID: "mock-whatsapp", SentAt: time.Now()}, nil
}
