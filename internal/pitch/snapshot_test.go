package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore_Query(t *testing.T) {
	store := NewSnapshotStore()
	board := testBoard()

	store.Capture(10, board)
	store.Capture(0, board)

	tests := []struct {
		name     string
		minute   int
		wantTime int
		wantOK   bool
	}{
		{"before first capture", -1, 0, false},
		{"exact first", 0, 0, true},
		{"between captures", 5, 0, true},
		{"exact second", 10, 10, true},
		{"after last", 15, 10, true},
		{"full time", 90, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, ok := store.Query(tt.minute)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantTime, snap.Time)
			}
		})
	}
}

func TestSnapshotStore_QueryEmpty(t *testing.T) {
	_, ok := NewSnapshotStore().Query(45)
	assert.False(t, ok)
}

func TestSnapshotStore_OverwriteSameMinute(t *testing.T) {
	store := NewSnapshotStore()
	first := testBoard()
	second := testBoard()
	second.Formations[TeamA] = "4-3-3"

	store.Capture(30, first)
	store.Capture(30, second)

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, 30, all[0].Time)
	assert.Equal(t, "4-3-3", all[0].Formations[TeamA])
}

func TestSnapshotStore_KeepsTimeOrder(t *testing.T) {
	store := NewSnapshotStore()
	for _, minute := range []int{45, 3, 90, 12, 3, 60} {
		store.Capture(minute, testBoard())
	}

	var times []int
	for _, snap := range store.All() {
		times = append(times, snap.Time)
	}
	assert.Equal(t, []int{3, 12, 45, 60, 90}, times)
	assert.Equal(t, 5, store.Len())
}

func TestSnapshotStore_ValueSemantics(t *testing.T) {
	store := NewSnapshotStore()
	board := testBoard()
	store.Capture(0, board)

	// mutate the live board after capture
	board.Lineups[TeamA][0].Position = "ST1"
	board.Lineups[TeamA][0].PreferredPositions[0] = "ST1"
	board.Substitutes[TeamA] = nil
	board.Formations[TeamA] = "3-5-2"

	snap, ok := store.Query(0)
	require.True(t, ok)
	assert.Equal(t, "GK", snap.Lineups[TeamA][0].Position)
	assert.Equal(t, []string{"GK"}, snap.Lineups[TeamA][0].PreferredPositions)
	assert.Len(t, snap.Substitutes[TeamA], 3)
	assert.Equal(t, "4-4-2", snap.Formations[TeamA])

	// mutating a query result must not leak back either
	snap.Lineups[TeamA][0].Name = "changed"
	again, _ := store.Query(0)
	assert.Equal(t, "Player P1", again.Lineups[TeamA][0].Name)
}

func TestSnapshotStore_Restore(t *testing.T) {
	store := NewSnapshotStore()
	store.Capture(5, testBoard())

	older := testBoard()
	newer := testBoard()
	newer.Formations[TeamB] = "5-3-2"

	store.Restore([]Snapshot{
		{Time: 20, Board: testBoard()},
		{Time: 10, Board: older},
		{Time: 10, Board: newer},
	})

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, 10, all[0].Time)
	assert.Equal(t, "5-3-2", all[0].Formations[TeamB])
	assert.Equal(t, 20, all[1].Time)

	_, ok := store.Query(5)
	assert.False(t, ok, "restore replaces earlier content")
}
