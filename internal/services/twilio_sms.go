package services

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrSMSUnavailable = errors.New("SMS service temporarily unavailable")

var (
	nonDialable = regexp.MustCompile(`[^\d+]`)
	tenDigits   = regexp.MustCompile(`^\d{10}$`)
	e164        = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

	errInvalidNumber = regexp.MustCompile(`(?i)invalid.*phone.*number`)
	errUnverified    = regexp.MustCompile(`(?i)unverified.*number`)
	errInsufficient  = regexp.MustCompile(`(?i)insufficient.*funds`)
	errTwilioRate    = regexp.MustCompile(`(?i)rate.*limit`)
	errBlockedNumber = regexp.MustCompile(`(?i)blocked.*number`)
)

// messageCreator is the slice of the Twilio REST client we depend on
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSMSService implements SMSService using Twilio API
type TwilioSMSService struct {
	api         messageCreator
	fromNumber  string
	logger      *logrus.Entry
	breakers    *CircuitBreakerService
	rateLimiter RateLimiter
}

// NewTwilioSMSService creates a new Twilio SMS service
func NewTwilioSMSService(accountSID, authToken, fromNumber string, rateLimiter RateLimiter, breakers *CircuitBreakerService, logger *logrus.Logger) *TwilioSMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return newTwilioSMSService(client.Api, fromNumber, rateLimiter, breakers, logger)
}

func newTwilioSMSService(api messageCreator, fromNumber string, rateLimiter RateLimiter, breakers *CircuitBreakerService, logger *logrus.Logger) *TwilioSMSService {
	return &TwilioSMSService{
		api:         api,
		fromNumber:  fromNumber,
		logger:      logger.WithField("service", "twilio_sms"),
		breakers:    breakers,
		rateLimiter: rateLimiter,
	}
}

// SendMessage sends an SMS message via Twilio
func (s *TwilioSMSService) SendMessage(phoneNumber, message string) error {
	normalizedNumber, err := NormalizePhoneNumber(phoneNumber)
	if err != nil {
		return fmt.Errorf("invalid phone number format: %w", err)
	}

	if s.rateLimiter != nil {
		if err := s.rateLimiter.Allow(normalizedNumber); err != nil {
			s.logger.WithField("to", normalizedNumber).Warn("Twilio SMS: rate limited")
			return err
		}
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(normalizedNumber)
	params.SetFrom(s.fromNumber)
	params.SetBody(message)

	s.logger.WithField("to", normalizedNumber).Debug("Twilio SMS: sending")

	result, err := s.breakers.Execute(BreakerTwilio, func() (interface{}, error) {
		return s.api.CreateMessage(params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			s.logger.Warn("Twilio SMS: circuit breaker is open, rejecting request")
			return ErrSMSUnavailable
		}
		s.logger.WithError(err).Error("Twilio SMS: API error")
		return mapTwilioError(err)
	}

	entry := s.logger.WithField("to", normalizedNumber)
	if resp, ok := result.(*twilioApi.ApiV2010Message); ok && resp != nil && resp.Sid != nil {
		entry = entry.WithField("sid", *resp.Sid)
	}
	entry.Info("Twilio SMS: message sent")

	return nil
}

// NormalizePhoneNumber ensures phone number is in E.164 format. Ten digit
// numbers without a country code are taken as US numbers.
func NormalizePhoneNumber(phone string) (string, error) {
	cleaned := nonDialable.ReplaceAllString(phone, "")

	if cleaned == "" || cleaned[0] != '+' {
		if !tenDigits.MatchString(cleaned) {
			return "", fmt.Errorf("invalid phone number format")
		}
		cleaned = "+1" + cleaned
	}

	if !e164.MatchString(cleaned) {
		return "", fmt.Errorf("invalid phone number format")
	}

	return cleaned, nil
}

// mapTwilioError maps Twilio-specific errors to user-friendly messages
func mapTwilioError(err error) error {
	errStr := err.Error()

	switch {
	case errInvalidNumber.MatchString(errStr):
		return fmt.Errorf("invalid phone number")
	case errUnverified.MatchString(errStr):
		return fmt.Errorf("phone number not verified for trial account")
	case errInsufficient.MatchString(errStr):
		return ErrSMSUnavailable
	case errTwilioRate.MatchString(errStr):
		return fmt.Errorf("too many SMS requests, please try again later")
	case errBlockedNumber.MatchString(errStr):
		return fmt.Errorf("unable to send SMS to this number")
	default:
		return fmt.Errorf("failed to send SMS: %w", err)
	}
}

// GetStats returns circuit breaker and service statistics
func (s *TwilioSMSService) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"circuit_breaker_state": s.breakers.GetState(BreakerTwilio).String(),
		"service_type":          "twilio",
	}
}
