package pitch

import (
	"sync"
	"time"
)

const (
	MatchStart = 0
	MatchEnd   = 90

	DefaultTickInterval = 500 * time.Millisecond
)

// ClampMinute bounds minute to the match clock
func ClampMinute(minute int) int {
	if minute < MatchStart {
		return MatchStart
	}
	if minute > MatchEnd {
		return MatchEnd
	}
	return minute
}

// Ticker is the periodic source that drives playback
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d
type TickerFunc func(d time.Duration) Ticker

type wallTicker struct {
	*time.Ticker
}

func (t wallTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// NewWallTicker wraps time.NewTicker
func NewWallTicker(d time.Duration) Ticker {
	return wallTicker{time.NewTicker(d)}
}

// Playback is the handle of one running ticker goroutine. It is cancelled
// by the timeline and can be waited on once the owner lock is released.
type Playback struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func newPlayback() *Playback {
	return &Playback{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (p *Playback) cancel() {
	p.once.Do(func() { close(p.stop) })
}

func (p *Playback) cancelled() bool {
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}

// Wait blocks until the ticker goroutine has exited. A nil handle returns
// immediately.
func (p *Playback) Wait() {
	if p == nil {
		return
	}
	<-p.done
}

// Timeline is the match clock with play/pause/seek.
//
// Timeline does not lock. The owner serializes every call, including the
// step callback passed to Play, which runs on the ticker goroutine and must
// take the owner's lock before calling Advance.
type Timeline struct {
	current   int
	interval  time.Duration
	newTicker TickerFunc
	run       *Playback
}

// NewTimeline creates a stopped timeline at kick-off
func NewTimeline(interval time.Duration, newTicker TickerFunc) *Timeline {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if newTicker == nil {
		newTicker = NewWallTicker
	}
	return &Timeline{
		current:   MatchStart,
		interval:  interval,
		newTicker: newTicker,
	}
}

// Current returns the clock minute
func (t *Timeline) Current() int {
	return t.current
}

// Playing reports whether a ticker is running
func (t *Timeline) Playing() bool {
	return t.run != nil
}

// Play starts the ticker. It returns false when already playing or when
// the clock has reached full time.
func (t *Timeline) Play(step func(*Playback)) bool {
	if t.run != nil || t.current >= MatchEnd {
		return false
	}

	p := newPlayback()
	ticker := t.newTicker(t.interval)
	t.run = p

	go func() {
		defer close(p.done)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C():
				if p.cancelled() {
					return
				}
				step(p)
			}
		}
	}()

	return true
}

// Advance moves the clock one minute for the playback p. Ticks from a
// cancelled or replaced playback are discarded and report false. Reaching
// full time stops playback.
func (t *Timeline) Advance(p *Playback) (int, bool) {
	if p == nil || p != t.run || p.cancelled() {
		return t.current, false
	}

	t.current++
	if t.current >= MatchEnd {
		t.current = MatchEnd
		t.halt()
	}
	return t.current, true
}

// Pause stops playback without moving the clock. The returned handle (nil
// when nothing was playing) should be waited on after releasing the lock.
func (t *Timeline) Pause() *Playback {
	return t.halt()
}

// Seek stops playback and moves the clock to the clamped minute
func (t *Timeline) Seek(minute int) (int, *Playback) {
	p := t.halt()
	t.current = ClampMinute(minute)
	return t.current, p
}

// Close releases the ticker
func (t *Timeline) Close() *Playback {
	return t.halt()
}

func (t *Timeline) halt() *Playback {
	p := t.run
	t.run = nil
	if p != nil {
		p.cancel()
	}
	return p
}
