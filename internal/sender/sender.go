package sender

import (
	"context"
	"time"
)

// SendResult describes one successful outbound delivery.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// EmailSender delivers a single HTML email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (SendResult, error)
}

// MessageSender delivers short text messages over SMS or WhatsApp.
type MessageSender interface {
	SendSMS(ctx context.Context, to, body string) (SendResult, error)
	SendWhatsApp(ctx context.Context, to, body string) (SendResult, error)
}
