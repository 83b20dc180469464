package services

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type mockMessageCreator struct {
	mock.Mock
}

func (m *mockMessageCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	args := m.Called(params)
	msg, _ := args.Get(0).(*twilioApi.ApiV2010Message)
	return msg, args.Error(1)
}

func newTestTwilio(api messageCreator, limiter RateLimiter, threshold int) *TwilioSMSService {
	breakers := NewCircuitBreakerService(threshold, time.Minute, testLogger())
	return newTwilioSMSService(api, "+15550000000", limiter, breakers, testLogger())
}

func TestTwilioSMSService_SendMessage(t *testing.T) {
	api := new(mockMessageCreator)
	sid := "SM123"
	api.On("CreateMessage", mock.MatchedBy(func(p *twilioApi.CreateMessageParams) bool {
		return *p.To == "+15551234567" && *p.From == "+15550000000" && *p.Body == "12' City: sub"
	})).Return(&twilioApi.ApiV2010Message{Sid: &sid}, nil).Once()

	svc := newTestTwilio(api, nil, 5)
	require.NoError(t, svc.SendMessage("(555) 123-4567", "12' City: sub"))
	api.AssertExpectations(t)
	assert.Equal(t, "closed", svc.GetStats()["circuit_breaker_state"])
}

func TestTwilioSMSService_InvalidNumberNeverCallsAPI(t *testing.T) {
	api := new(mockMessageCreator)
	svc := newTestTwilio(api, nil, 5)

	err := svc.SendMessage("12345", "hello")
	assert.Error(t, err)
	api.AssertNotCalled(t, "CreateMessage", mock.Anything)
}

func TestTwilioSMSService_RateLimited(t *testing.T) {
	api := new(mockMessageCreator)
	api.On("CreateMessage", mock.Anything).Return(&twilioApi.ApiV2010Message{}, nil)

	svc := newTestTwilio(api, NewSMSRateLimiter(1, time.Hour), 5)
	require.NoError(t, svc.SendMessage("+15551234567", "one"))
	assert.ErrorIs(t, svc.SendMessage("+15551234567", "two"), ErrRateLimited)
	api.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestTwilioSMSService_BreakerOpensAfterFailures(t *testing.T) {
	api := new(mockMessageCreator)
	api.On("CreateMessage", mock.Anything).Return(nil, errors.New("connection reset"))

	svc := newTestTwilio(api, nil, 2)
	for i := 0; i < 2; i++ {
		err := svc.SendMessage("+15551234567", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send SMS")
	}

	assert.ErrorIs(t, svc.SendMessage("+15551234567", "hello"), ErrSMSUnavailable)
	api.AssertNumberOfCalls(t, "CreateMessage", 2)
	assert.Equal(t, gobreaker.StateOpen, svc.breakers.GetState(BreakerTwilio))
}

func TestMapTwilioError(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The 'To' number is not a valid phone number", "failed to send SMS: The 'To' number is not a valid phone number"},
		{"Invalid 'To' Phone Number", "invalid phone number"},
		{"unverified number for trial", "phone number not verified for trial account"},
		{"Account has insufficient funds", ErrSMSUnavailable.Error()},
		{"Rate limit exceeded", "too many SMS requests, please try again later"},
		{"blocked number", "unable to send SMS to this number"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, mapTwilioError(errors.New(tt.in)).Error())
		})
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"+44 20 7946 0958", "+442079460958", false},
		{"555-123-4567", "+15551234567", false},
		{"+1 (555) 123-4567", "+15551234567", false},
		{"12345", "", true},
		{"+0123456", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizePhoneNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
