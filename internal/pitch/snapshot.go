package pitch

import (
	"sort"
	"sync"
)

// Snapshot is the recorded board at one match minute
type Snapshot struct {
	Time int `json:"time"`
	Board
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Time: s.Time, Board: s.Board.Clone()}
}

// SnapshotStore keeps snapshots ordered by time, one per minute. Stored
// values never alias the boards passed in or handed out.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots []Snapshot
}

// NewSnapshotStore creates an empty store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Capture records board at minute, replacing any snapshot already there
func (s *SnapshotStore) Capture(minute int, board Board) Snapshot {
	snap := Snapshot{Time: minute, Board: board.Clone()}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := sort.Search(len(s.snapshots), func(i int) bool { return s.snapshots[i].Time >= minute })
	if i < len(s.snapshots) && s.snapshots[i].Time == minute {
		s.snapshots[i] = snap
	} else {
		s.snapshots = append(s.snapshots, Snapshot{})
		copy(s.snapshots[i+1:], s.snapshots[i:])
		s.snapshots[i] = snap
	}

	return snap.Clone()
}

// Query returns the latest snapshot taken at or before minute. The second
// result is false when minute precedes the first capture.
func (s *SnapshotStore) Query(minute int) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := sort.Search(len(s.snapshots), func(i int) bool { return s.snapshots[i].Time > minute })
	if i == 0 {
		return Snapshot{}, false
	}
	return s.snapshots[i-1].Clone(), true
}

// All returns every snapshot in time order
func (s *SnapshotStore) All() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Snapshot, len(s.snapshots))
	for i, snap := range s.snapshots {
		out[i] = snap.Clone()
	}
	return out
}

// Len returns the number of stored snapshots
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// Restore replaces the store content. Later entries win over earlier ones
// with the same time.
func (s *SnapshotStore) Restore(snapshots []Snapshot) {
	byTime := make(map[int]Snapshot, len(snapshots))
	for _, snap := range snapshots {
		byTime[snap.Time] = snap.Clone()
	}

	restored := make([]Snapshot, 0, len(byTime))
	for _, snap := range byTime {
		restored = append(restored, snap)
	}
	sort.Slice(restored, func(i, j int) bool { return restored[i].Time < restored[j].Time })

	s.mu.Lock()
	s.snapshots = restored
	s.mu.Unlock()
}
