package pitch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedTimeline mimics an owner serializing access to a Timeline
type lockedTimeline struct {
	mu       sync.Mutex
	tl       *Timeline
	advanced chan int
}

func newLockedTimeline(clock *fakeClock) *lockedTimeline {
	return &lockedTimeline{
		tl:       NewTimeline(time.Millisecond, clock.NewTicker),
		advanced: make(chan int, 128),
	}
}

func (l *lockedTimeline) step(p *Playback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if minute, ok := l.tl.Advance(p); ok {
		l.advanced <- minute
	}
}

func (l *lockedTimeline) play() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tl.Play(l.step)
}

func (l *lockedTimeline) seek(minute int) int {
	l.mu.Lock()
	clamped, p := l.tl.Seek(minute)
	l.mu.Unlock()
	p.Wait()
	return clamped
}

func (l *lockedTimeline) playing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tl.Playing()
}

func (l *lockedTimeline) waitAdvance(t *testing.T) int {
	t.Helper()
	select {
	case m := <-l.advanced:
		return m
	case <-time.After(time.Second):
		t.Fatal("timeline did not advance")
		return -1
	}
}

func TestClampMinute(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 0},
		{0, 0},
		{45, 45},
		{90, 90},
		{120, 90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampMinute(tt.in))
	}
}

func TestTimeline_PlayAdvancesOnePerTickUntilFullTime(t *testing.T) {
	clock := &fakeClock{}
	lt := newLockedTimeline(clock)
	lt.seek(86)

	require.True(t, lt.play())
	ft := clock.last(t)

	for want := 87; want <= 90; want++ {
		ft.fire(t)
		assert.Equal(t, want, lt.waitAdvance(t))
	}

	assert.False(t, lt.playing(), "playback stops at full time")
	select {
	case <-ft.stopped:
	case <-time.After(time.Second):
		t.Fatal("ticker was not stopped at full time")
	}
	ft.assertSilent(t)
	assert.Equal(t, MatchEnd, lt.tl.Current())
}

func TestTimeline_PlayAtFullTimeIsNoop(t *testing.T) {
	clock := &fakeClock{}
	lt := newLockedTimeline(clock)
	lt.seek(90)

	assert.False(t, lt.play())
	assert.False(t, lt.playing())
	assert.Empty(t, clock.tickers)
}

func TestTimeline_PlayTwiceKeepsOneTicker(t *testing.T) {
	clock := &fakeClock{}
	lt := newLockedTimeline(clock)

	require.True(t, lt.play())
	assert.False(t, lt.play())
	assert.Len(t, clock.tickers, 1)

	lt.seek(0)
}

func TestTimeline_SeekCancelsTicker(t *testing.T) {
	clock := &fakeClock{}
	lt := newLockedTimeline(clock)

	require.True(t, lt.play())
	ft := clock.last(t)
	ft.fire(t)
	assert.Equal(t, 1, lt.waitAdvance(t))

	assert.Equal(t, 40, lt.seek(40))
	assert.False(t, lt.playing())

	<-ft.stopped
	ft.assertSilent(t)
	assert.Equal(t, 40, lt.tl.Current())
	assert.Empty(t, lt.advanced)
}

func TestTimeline_StaleHandleIsDiscarded(t *testing.T) {
	tl := NewTimeline(time.Millisecond, (&fakeClock{}).NewTicker)

	require.True(t, tl.Play(func(*Playback) {}))
	stale := tl.run
	p := tl.Pause()
	require.Same(t, stale, p)
	p.Wait()

	minute, ok := tl.Advance(stale)
	assert.False(t, ok)
	assert.Equal(t, 0, minute)

	_, ok = tl.Advance(nil)
	assert.False(t, ok)
}

func TestTimeline_SeekClamps(t *testing.T) {
	tl := NewTimeline(0, nil)

	got, p := tl.Seek(-3)
	assert.Nil(t, p)
	assert.Equal(t, 0, got)

	got, _ = tl.Seek(95)
	assert.Equal(t, 90, got)
}
