package services

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/lineup-editor/internal/pitch"
)

type substitution struct {
	team   string
	minute int
	move   pitch.Move
}

// SubstitutionNotifier texts every recipient when a substitution commits.
// Delivery runs on its own goroutine so the editor never waits on SMS.
type SubstitutionNotifier struct {
	sms        SMSService
	recipients []string
	logger     *logrus.Entry

	queue chan substitution
	stop  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

func NewSubstitutionNotifier(sms SMSService, recipients []string, logger *logrus.Logger) *SubstitutionNotifier {
	return &SubstitutionNotifier{
		sms:        sms,
		recipients: append([]string(nil), recipients...),
		logger:     logger.WithField("service", "substitution_notifier"),
		queue:      make(chan substitution, 64),
		stop:       make(chan struct{}),
	}
}

func (n *SubstitutionNotifier) Start() {
	n.wg.Add(1)
	go n.run()
}

// Stop delivers what is already queued and waits for the worker
func (n *SubstitutionNotifier) Stop() {
	n.once.Do(func() { close(n.stop) })
	n.wg.Wait()
}

// NotifySubstitution queues mv for delivery. team is the display name of the
// side; other kinds of movement are ignored.
func (n *SubstitutionNotifier) NotifySubstitution(team string, minute int, mv pitch.Move) {
	if mv.Kind != pitch.MoveSubstitution || mv.Other == nil || len(n.recipients) == 0 {
		return
	}
	select {
	case n.queue <- substitution{team: team, minute: minute, move: mv}:
	default:
		n.logger.WithField("minute", minute).Warn("Notification queue full, dropping substitution")
	}
}

func (n *SubstitutionNotifier) run() {
	defer n.wg.Done()
	for {
		select {
		case sub := <-n.queue:
			n.deliver(sub)
		case <-n.stop:
			for {
				select {
				case sub := <-n.queue:
					n.deliver(sub)
				default:
					return
				}
			}
		}
	}
}

func (n *SubstitutionNotifier) deliver(sub substitution) {
	body := FormatSubstitution(sub.team, sub.minute, sub.move)
	for _, to := range n.recipients {
		if err := n.sms.SendMessage(to, body); err != nil {
			n.logger.WithError(err).WithFields(logrus.Fields{
				"to":     to,
				"minute": sub.minute,
			}).Warn("Failed to send substitution SMS")
		}
	}
}

// FormatSubstitution renders a substitution as a one-line text, e.g.
// "12' City: #4 Dias on for #3 Stones (CB1)"
func FormatSubstitution(team string, minute int, mv pitch.Move) string {
	if team == "" {
		team = string(mv.Team)
	}
	out := mv.Other
	return fmt.Sprintf("%d' %s: #%d %s on for #%d %s (%s)",
		minute, team, mv.Player.Number, mv.Player.Name, out.Number, out.Name, mv.PositionID)
}
