package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/lineup-editor/internal/pitch"
)

const mirrorWriteTimeout = 2 * time.Second

// stateMirror keeps the latest editor state of a session in redis. Publish
// only replaces the pending state, so a slow redis never stalls the editor
// and intermediate states may be skipped.
type stateMirror struct {
	cache    *CacheService
	breakers *CircuitBreakerService
	key      string
	ttl      time.Duration
	logger   *logrus.Entry

	pending chan pitch.State
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newStateMirror(cache *CacheService, breakers *CircuitBreakerService, key string, ttl time.Duration, logger *logrus.Entry) *stateMirror {
	m := &stateMirror{
		cache:    cache,
		breakers: breakers,
		key:      key,
		ttl:      ttl,
		logger:   logger,
		pending:  make(chan pitch.State, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *stateMirror) Publish(s pitch.State) {
	for {
		select {
		case m.pending <- s:
			return
		default:
		}
		select {
		case <-m.pending:
		default:
		}
	}
}

func (m *stateMirror) run() {
	defer close(m.done)
	for {
		select {
		case s := <-m.pending:
			m.write(s)
		case <-m.stop:
			return
		}
	}
}

func (m *stateMirror) write(s pitch.State) {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
	defer cancel()

	set := func() (interface{}, error) {
		return nil, m.cache.Set(ctx, m.key, s, m.ttl)
	}

	var err error
	if m.breakers != nil {
		_, err = m.breakers.Execute(BreakerRedis, set)
	} else {
		_, err = set()
	}
	if err != nil {
		m.logger.WithError(err).Debug("Failed to mirror editor state")
	}
}

// close stops the writer and waits for an in-flight write to finish
func (m *stateMirror) close() {
	m.once.Do(func() { close(m.stop) })
	<-m.done
}
