package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioSender struct {
	client         *twilio.RestClient
	phoneNumber    string
	whatsappNumber string
}

func NewTwilioSender(accountSID, authToken, phoneNumber, whatsappNumber string) (*TwilioSender, error) {
	if accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("twilio credentials not set")
	}
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		phoneNumber:    phoneNumber,
		whatsappNumber: whatsappNumber,
	}, nil
}

func (t *TwilioSender) SendSMS(ctx context.Context, to, body string) (SendResult, error) {
	return t.send(to, t.phoneNumber, body)
}

func (t *TwilioSender) SendWhatsApp(ctx context.Context, to, body string) (SendResult, error) {
	return t.send("whatsapp:"+to, "whatsapp:"+t.whatsappNumber, body)
}

func (t *TwilioSender) send(to, from, body string) (SendResult, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return SendResult{}, fmt.Errorf("twilio send failed: %w", err)
	}

	messageID := ""
	if resp.Sid != nil {
		messageID = *resp.Sid
	}
	return SendResult{MessageID: messageID, SentAt: time.Now()}, nil
}
