package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/lineup-editor/internal/models"
	"github.com/jstittsworth/lineup-editor/internal/pitch"
	"github.com/jstittsworth/lineup-editor/pkg/logger"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one open editor bound to a match
type Session struct {
	ID        string
	MatchID   string
	Match     models.Match
	Editor    *pitch.Editor
	CreatedAt time.Time

	mirror *stateMirror

	mu         sync.Mutex
	lastActive time.Time
	generation uint64
	saved      uint64
}

// SessionInfo is the summary returned when listing sessions
type SessionInfo struct {
	ID          string    `json:"id"`
	MatchID     string    `json:"match_id"`
	MatchName   string    `json:"match_name"`
	CreatedAt   time.Time `json:"created_at"`
	LastActive  time.Time `json:"last_active"`
	Dirty       bool      `json:"dirty"`
	CurrentTime int       `json:"current_time"`
	IsPlaying   bool      `json:"is_playing"`
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Session) markDirty() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// Dirty reports whether the snapshot history changed since the last save
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation != s.saved
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SaveSnapshot records the working board at the current minute
func (s *Session) SaveSnapshot() (pitch.Snapshot, error) {
	snap, err := s.Editor.SaveSnapshot()
	if err != nil {
		return pitch.Snapshot{}, err
	}
	s.markDirty()
	return snap, nil
}

// TeamName returns the display name of side
func (s *Session) TeamName(side pitch.Side) string {
	switch side {
	case pitch.TeamA:
		return s.Match.TeamAName
	case pitch.TeamB:
		return s.Match.TeamBName
	}
	return string(side)
}

func (s *Session) Info() SessionInfo {
	state := s.Editor.State()
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		ID:          s.ID,
		MatchID:     s.MatchID,
		MatchName:   s.Match.Name,
		CreatedAt:   s.CreatedAt,
		LastActive:  s.lastActive,
		Dirty:       s.generation != s.saved,
		CurrentTime: state.CurrentTime,
		IsPlaying:   state.IsPlaying,
	}
}

type SessionManagerConfig struct {
	TickInterval  time.Duration
	IdleTimeout   time.Duration
	StateCacheTTL time.Duration
	Catalog       pitch.Catalog
	NewTicker     pitch.TickerFunc
}

// SessionManager owns every open editor session
type SessionManager struct {
	repo     *TimelineRepository
	cache    *CacheService
	breakers *CircuitBreakerService
	hub      *Hub
	notifier *SubstitutionNotifier
	cfg      SessionManagerConfig
	logger   *logrus.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager wires sessions to their collaborators. cache, breakers,
// hub and notifier are optional.
func NewSessionManager(
	repo *TimelineRepository,
	cache *CacheService,
	breakers *CircuitBreakerService,
	hub *Hub,
	notifier *SubstitutionNotifier,
	cfg SessionManagerConfig,
	logger *logrus.Logger,
) *SessionManager {
	if cfg.Catalog == nil {
		cfg.Catalog = pitch.DefaultCatalog()
	}
	return &SessionManager{
		repo:     repo,
		cache:    cache,
		breakers: breakers,
		hub:      hub,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (m *SessionManager) Catalog() pitch.Catalog {
	return m.cfg.Catalog
}

// Create opens an editor for matchID, restoring its persisted timeline
func (m *SessionManager) Create(ctx context.Context, matchID string) (*Session, error) {
	match, err := m.repo.LoadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	board, err := match.Board()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pitch.ErrInvalidRoster, err)
	}
	snapshots, err := m.repo.LoadSnapshots(ctx, matchID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	sess := &Session{
		ID:         uuid.NewString(),
		MatchID:    match.ID,
		Match:      *match,
		CreatedAt:  now,
		lastActive: now,
	}
	log := logger.WithSession(m.logger, sess.ID, sess.MatchID)

	if m.cache != nil {
		sess.mirror = newStateMirror(m.cache, m.breakers, StateCacheKey(sess.ID), m.cfg.StateCacheTTL, log)
	}

	editor, err := pitch.NewEditor(board, pitch.Options{
		Catalog:      m.cfg.Catalog,
		TickInterval: m.cfg.TickInterval,
		NewTicker:    m.cfg.NewTicker,
		Publisher:    pitch.PublisherFunc(func(s pitch.State) { m.publish(sess, s) }),
		OnMove: func(minute int, mv pitch.Move) {
			sess.markDirty()
			if m.notifier != nil {
				m.notifier.NotifySubstitution(sess.TeamName(mv.Team), minute, mv)
			}
		},
		Logger: log,
	})
	if err != nil {
		if sess.mirror != nil {
			sess.mirror.close()
		}
		return nil, err
	}
	sess.Editor = editor

	if len(snapshots) > 0 {
		if err := editor.Restore(snapshots); err != nil {
			editor.Close()
			if sess.mirror != nil {
				sess.mirror.close()
			}
			return nil, err
		}
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	log.WithField("snapshots", len(snapshots)).Info("Editor session opened")
	return sess, nil
}

func (m *SessionManager) publish(sess *Session, state pitch.State) {
	if m.hub != nil {
		m.hub.Publish(sess.ID, state)
	}
	if sess.mirror != nil {
		sess.mirror.Publish(state)
	}
}

// Get returns the session and marks it active
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.touch(m.now())
	return sess, nil
}

func (m *SessionManager) List() []SessionInfo {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sess.Info())
	}
	return infos
}

func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Persist writes the session's snapshot history to the database
func (m *SessionManager) Persist(ctx context.Context, id string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}
	return m.persist(ctx, sess)
}

func (m *SessionManager) persist(ctx context.Context, sess *Session) error {
	sess.mu.Lock()
	gen := sess.generation
	sess.mu.Unlock()

	snapshots := sess.Editor.Snapshots()
	if err := m.repo.SaveSnapshots(ctx, sess.MatchID, snapshots); err != nil {
		return err
	}

	sess.mu.Lock()
	if gen > sess.saved {
		sess.saved = gen
	}
	sess.mu.Unlock()

	if m.cache != nil {
		if err := m.cache.Delete(ctx, SnapshotsCacheKey(sess.MatchID)); err != nil {
			m.logger.WithError(err).WithField("match_id", sess.MatchID).Warn("Failed to invalidate snapshot cache")
		}
	}

	m.logger.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"match_id":   sess.MatchID,
		"snapshots":  len(snapshots),
	}).Info("Timeline persisted")
	return nil
}

// Close persists pending changes and tears the session down
func (m *SessionManager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return m.teardown(ctx, sess)
}

func (m *SessionManager) teardown(ctx context.Context, sess *Session) error {
	sess.Editor.Close()

	var persistErr error
	if sess.Dirty() {
		persistErr = m.persist(ctx, sess)
	}

	if m.hub != nil {
		m.hub.CloseSession(sess.ID)
	}
	if sess.mirror != nil {
		sess.mirror.close()
	}
	if m.cache != nil {
		if err := m.cache.Delete(ctx, StateCacheKey(sess.ID)); err != nil {
			m.logger.WithError(err).WithField("session_id", sess.ID).Debug("Failed to drop mirrored state")
		}
	}

	m.logger.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"match_id":   sess.MatchID,
	}).Info("Editor session closed")
	return persistErr
}

// CloseAll closes every session, returning the first persistence error
func (m *SessionManager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var firstErr error
	for _, sess := range sessions {
		if err := m.teardown(ctx, sess); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Autosave persists every dirty session and reports how many were saved
func (m *SessionManager) Autosave(ctx context.Context) int {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.RUnlock()

	saved := 0
	for _, sess := range sessions {
		if !sess.Dirty() {
			continue
		}
		if err := m.persist(ctx, sess); err != nil {
			m.logger.WithError(err).WithField("session_id", sess.ID).Error("Autosave failed")
			continue
		}
		saved++
	}
	return saved
}

// EvictIdle closes sessions inactive for longer than the idle timeout. A
// session with websocket viewers counts as active.
func (m *SessionManager) EvictIdle(ctx context.Context) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	now := m.now()
	cutoff := now.Add(-m.cfg.IdleTimeout)

	m.mu.RLock()
	var stale []*Session
	for _, sess := range m.sessions {
		if sess.LastActive().Before(cutoff) {
			stale = append(stale, sess)
		}
	}
	m.mu.RUnlock()

	var idle []*Session
	for _, sess := range stale {
		if m.hub != nil && m.hub.SessionConnectionCount(ctx, sess.ID) > 0 {
			sess.touch(now)
			continue
		}
		m.mu.Lock()
		if m.sessions[sess.ID] == sess && sess.LastActive().Before(cutoff) {
			delete(m.sessions, sess.ID)
			idle = append(idle, sess)
		}
		m.mu.Unlock()
	}

	for _, sess := range idle {
		if err := m.teardown(ctx, sess); err != nil {
			m.logger.WithError(err).WithField("session_id", sess.ID).Error("Failed to persist evicted session")
		}
	}
	return len(idle)
}
