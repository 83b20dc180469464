package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SessionReaper periodically autosaves dirty sessions and evicts idle ones
type SessionReaper struct {
	manager          *SessionManager
	logger           *logrus.Logger
	cron             *cron.Cron
	mu               sync.Mutex
	isRunning        bool
	autosaveInterval time.Duration
	evictInterval    time.Duration
}

func NewSessionReaper(manager *SessionManager, logger *logrus.Logger, autosaveInterval, evictInterval time.Duration) *SessionReaper {
	return &SessionReaper{
		manager:          manager,
		logger:           logger,
		cron:             cron.New(),
		autosaveInterval: autosaveInterval,
		evictInterval:    evictInterval,
	}
}

// Start schedules the jobs
func (r *SessionReaper) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return fmt.Errorf("session reaper is already running")
	}

	if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.autosaveInterval), r.autosave); err != nil {
		return fmt.Errorf("failed to schedule autosave: %w", err)
	}
	if r.evictInterval > 0 {
		if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.evictInterval), r.evict); err != nil {
			return fmt.Errorf("failed to schedule eviction: %w", err)
		}
	}

	r.cron.Start()
	r.isRunning = true

	r.logger.WithFields(logrus.Fields{
		"autosave_interval": r.autosaveInterval.String(),
		"evict_interval":    r.evictInterval.String(),
	}).Info("Session reaper started")
	return nil
}

// Stop halts the schedule and waits for running jobs
func (r *SessionReaper) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRunning {
		return
	}

	ctx := r.cron.Stop()
	<-ctx.Done()

	r.isRunning = false
	r.logger.Info("Session reaper stopped")
}

func (r *SessionReaper) autosave() {
	ctx, cancel := context.WithTimeout(context.Background(), r.autosaveInterval)
	defer cancel()

	if n := r.manager.Autosave(ctx); n > 0 {
		r.logger.WithField("sessions", n).Info("Autosaved editor sessions")
	}
}

func (r *SessionReaper) evict() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if n := r.manager.EvictIdle(ctx); n > 0 {
		r.logger.WithField("sessions", n).Info("Evicted idle editor sessions")
	}
}
