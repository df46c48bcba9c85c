package services

import (
	"context"
	"fmt"
	"log"

	"github.com/otomono/jersey-orders-api/config"
	"github.com/otomono/jersey-orders-api/utils"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender delivers text messages
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// TwilioMessageAPI is the subset of the Twilio REST client used for sending
type TwilioMessageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSMSService sends SMS through Twilio
type TwilioSMSService struct {
	api  TwilioMessageAPI
	from string
}

// NewTwilioSMSService creates a Twilio-backed sender from configuration
func NewTwilioSMSService(cfg *config.Config) *TwilioSMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &TwilioSMSService{api: client.Api, from: cfg.TwilioPhoneNumber}
}

// NewTwilioSMSServiceWithAPI creates a sender around an existing message API
func NewTwilioSMSServiceWithAPI(api TwilioMessageAPI, from string) *TwilioSMSService {
	return &TwilioSMSService{api: api, from: from}
}

// SendSMS sends body to the given number and returns the message SID
func (s *TwilioSMSService) SendSMS(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	to = utils.NormalizePhone(to)
	if !utils.ValidatePhone(to) {
		return "", newValidationError("INVALID_PHONE", "phone number %q is not in international format", to)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		log.Printf("[sms] failed to send message to %s: %v", to, err)
		return "", fmt.Errorf("failed to send SMS: %w", err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	log.Printf("[sms] message sent to %s, SID: %s", to, sid)
	return sid, nil
}

// MockSMSService records messages instead of sending them
type MockSMSService struct {
	Messages []SentSMS
	Err      error
}

// SentSMS is one recorded message
type SentSMS struct {
	To   string
	Body string
}

// SendSMS records the message
func (m *MockSMSService) SendSMS(ctx context.Context, to, body string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Messages = append(m.Messages, SentSMS{To: to, Body: body})
	return fmt.Sprintf("SM%d", len(m.Messages)), nil
}
