package pitch

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func player(id string, number int, team Side, position string, prefs ...string) Player {
	return Player{
		ID:                 id,
		Name:               "Player " + id,
		Number:             number,
		Team:               team,
		Position:           position,
		PreferredPositions: prefs,
	}
}

// testBoard returns a 4-4-2 team_a with RW empty and P4, P7, P12 on the
// bench, plus a small team_b
func testBoard() Board {
	return Board{
		Formations: Formations{TeamA: "4-4-2", TeamB: "4-3-3"},
		Lineups: Squads{
			TeamA: {
				player("P1", 1, TeamA, "GK", "GK"),
				player("P2", 2, TeamA, "LB", "LB"),
				player("P3", 3, TeamA, "CB1", "CB1", "CB2"),
				player("P5", 5, TeamA, "CB2", "CB2"),
				player("P6", 6, TeamA, "RB", "RB"),
				player("P8", 8, TeamA, "LW", "LW"),
				player("P9", 9, TeamA, "CM1", "CM1"),
				player("P10", 10, TeamA, "CM2", "CM2"),
				player("P11", 11, TeamA, "ST1", "ST1"),
				player("P14", 14, TeamA, "ST2", "ST2"),
			},
			TeamB: {
				player("B1", 1, TeamB, "GK", "GK"),
				player("B2", 4, TeamB, "CB1", "CB1"),
			},
		},
		Substitutes: Squads{
			TeamA: {
				player("P4", 4, TeamA, "", "CB1"),
				player("P7", 7, TeamA, ""),
				player("P12", 12, TeamA, "", "CM1", "CM2"),
			},
			TeamB: {
				player("B3", 12, TeamB, "", "ST"),
			},
		},
	}
}

func sortedRoster(b Board, team Side) []string {
	ids := b.Roster(team)
	sort.Strings(ids)
	return ids
}

func requireUniquePositions(t *testing.T, b Board) {
	t.Helper()
	for _, side := range Sides {
		seen := make(map[string]string)
		for _, p := range b.Lineups[side] {
			require.NotEmpty(t, p.Position, "on-pitch player %s has no position", p.ID)
			other, dup := seen[p.Position]
			require.False(t, dup, "%s and %s share %s", other, p.ID, p.Position)
			seen[p.Position] = p.ID
		}
	}
}

// fakeTicker is driven by the test instead of the wall clock
type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() { f.once.Do(func() { close(f.stopped) }) }

// fakeClock hands out fake tickers and remembers the last one
type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	ft := &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
	c.tickers = append(c.tickers, ft)
	return ft
}

func (c *fakeClock) last(t *testing.T) *fakeTicker {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.tickers, "no ticker was created")
	return c.tickers[len(c.tickers)-1]
}

// fire delivers one tick, failing if no goroutine is listening
func (f *fakeTicker) fire(t *testing.T) {
	t.Helper()
	select {
	case f.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("tick was not received")
	}
}

// assertSilent waits for the ticker to be released and checks that nobody
// consumes ticks any more
func (f *fakeTicker) assertSilent(t *testing.T) {
	t.Helper()
	select {
	case <-f.stopped:
	case <-time.After(time.Second):
		t.Fatal("ticker was never stopped")
	}
	select {
	case f.ch <- time.Now():
		t.Fatal("tick delivered after playback stopped")
	case <-time.After(50 * time.Millisecond):
	}
}
