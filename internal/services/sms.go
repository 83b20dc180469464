package services

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// SMSService interface for sending SMS messages
type SMSService interface {
	SendMessage(phoneNumber, message string) error
}

// MockSMSService for development - logs instead of sending real SMS
type MockSMSService struct {
	logger *logrus.Entry

	mu   sync.Mutex
	sent []SentMessage
}

type SentMessage struct {
	To   string
	Body string
}

func NewMockSMSService(logger *logrus.Logger) *MockSMSService {
	return &MockSMSService{logger: logger.WithField("service", "mock_sms")}
}

func (s *MockSMSService) SendMessage(phoneNumber, message string) error {
	s.mu.Lock()
	s.sent = append(s.sent, SentMessage{To: phoneNumber, Body: message})
	s.mu.Unlock()

	s.logger.WithField("to", phoneNumber).Infof("MOCK SMS: %s", message)
	return nil
}

// Sent returns a copy of every message handed to the mock so far
func (s *MockSMSService) Sent() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage(nil), s.sent...)
}
