package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeTwilio struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeTwilio) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSMSService(t *testing.T) {
	api := &fakeTwilio{}
	svc := NewTwilioSMSServiceWithAPI(api, "+15005550006")
	ctx := context.Background()

	sid, err := svc.SendSMS(ctx, "+63 917-123-4567", "Your jersey form: https://orders.example.com/customer")
	require.NoError(t, err)
	assert.Equal(t, "SM123", sid)
	require.NotNil(t, api.params)
	assert.Equal(t, "+639171234567", *api.params.To)
	assert.Equal(t, "+15005550006", *api.params.From)

	_, err = svc.SendSMS(ctx, "call me", "hi")
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "INVALID_PHONE", v.Code)

	api.err = errors.New("unverified number")
	_, err = svc.SendSMS(ctx, "+639171234567", "hi")
	assert.Error(t, err)
}
