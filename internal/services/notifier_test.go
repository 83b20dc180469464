package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jstittsworth/lineup-editor/internal/pitch"
)

type mockSMSService struct {
	mock.Mock
}

func (m *mockSMSService) SendMessage(phoneNumber, message string) error {
	args := m.Called(phoneNumber, message)
	return args.Error(0)
}

func substitutionMove() pitch.Move {
	out := pitch.Player{ID: "P3", Name: "Stones", Number: 3, Team: pitch.TeamA}
	return pitch.Move{
		Kind:       pitch.MoveSubstitution,
		Team:       pitch.TeamA,
		Player:     pitch.Player{ID: "P4", Name: "Dias", Number: 4, Team: pitch.TeamA, Position: "CB1"},
		Other:      &out,
		PositionID: "CB1",
	}
}

func TestFormatSubstitution(t *testing.T) {
	mv := substitutionMove()
	assert.Equal(t, "12' City: #4 Dias on for #3 Stones (CB1)", FormatSubstitution("City", 12, mv))
	assert.Equal(t, "12' team_a: #4 Dias on for #3 Stones (CB1)", FormatSubstitution("", 12, mv))
}

func TestSubstitutionNotifier_DeliversToEveryRecipient(t *testing.T) {
	sms := new(mockSMSService)
	body := "67' City: #4 Dias on for #3 Stones (CB1)"
	sms.On("SendMessage", "+15550001111", body).Return(nil).Once()
	sms.On("SendMessage", "+15550002222", body).Return(errors.New("boom")).Once()

	n := NewSubstitutionNotifier(sms, []string{"+15550001111", "+15550002222"}, testLogger())
	n.Start()

	n.NotifySubstitution("City", 67, substitutionMove())
	n.NotifySubstitution("City", 68, pitch.Move{Kind: pitch.MoveSwap, Team: pitch.TeamA})
	n.Stop()

	sms.AssertExpectations(t)
	sms.AssertNumberOfCalls(t, "SendMessage", 2)
}

func TestSubstitutionNotifier_NoRecipients(t *testing.T) {
	sms := new(mockSMSService)
	n := NewSubstitutionNotifier(sms, nil, testLogger())
	n.Start()
	n.NotifySubstitution("City", 10, substitutionMove())
	n.Stop()
	n.Stop()

	sms.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}
