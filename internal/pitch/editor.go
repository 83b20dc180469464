package pitch

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is everything a rendering client needs to draw the editor
type State struct {
	Board
	CurrentTime    int         `json:"current_time"`
	IsPlaying      bool        `json:"is_playing"`
	SelectedPlayer *Player     `json:"selected_player"`
	ActionState    ActionState `json:"action_state"`
}

// Publisher receives the state after every committed change. Publish is
// called with the editor lock held and must not call back into the editor.
type Publisher interface {
	Publish(State)
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(State)

func (f PublisherFunc) Publish(s State) { f(s) }

// Options configures an Editor
type Options struct {
	Catalog      Catalog
	TickInterval time.Duration
	NewTicker    TickerFunc
	Publisher    Publisher
	// OnMove is called for every committed movement with the minute it was
	// recorded at. Same locking rules as Publisher.
	OnMove func(minute int, mv Move)
	Logger *logrus.Entry
}

// Editor is one lineup editing session. It owns the working board, the
// snapshot history, the match clock and the selection, and serializes every
// operation on them.
type Editor struct {
	mu        sync.Mutex
	initial   Board
	board     Board
	store     *SnapshotStore
	timeline  *Timeline
	selection Selection
	engine    *Engine
	catalog   Catalog
	publisher Publisher
	onMove    func(int, Move)
	log       *logrus.Entry
	closed    bool
}

// NewEditor validates the match-load roster and creates an editor at
// kick-off with an empty snapshot history
func NewEditor(initial Board, opts Options) (*Editor, error) {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}

	board, err := normalizeRoster(initial, opts.Catalog)
	if err != nil {
		return nil, err
	}

	return &Editor{
		initial:   board,
		board:     board.Clone(),
		store:     NewSnapshotStore(),
		timeline:  NewTimeline(opts.TickInterval, opts.NewTicker),
		engine:    NewEngine(opts.Catalog, board),
		catalog:   opts.Catalog,
		publisher: opts.Publisher,
		onMove:    opts.OnMove,
		log:       opts.Logger,
	}, nil
}

// ValidateRoster checks a match-load roster the way NewEditor does and
// returns it with defaults filled in
func ValidateRoster(b Board, catalog Catalog) (Board, error) {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return normalizeRoster(b, catalog)
}

func normalizeRoster(in Board, catalog Catalog) (Board, error) {
	b := in.Clone()
	seen := make(map[string]Side)

	for side := range b.Lineups {
		if !side.Valid() {
			return Board{}, fmt.Errorf("%w: unknown side %q in lineups", ErrInvalidRoster, side)
		}
	}
	for side := range b.Substitutes {
		if !side.Valid() {
			return Board{}, fmt.Errorf("%w: unknown side %q in substitutes", ErrInvalidRoster, side)
		}
	}

	for _, side := range Sides {
		if b.Formations[side] == "" {
			b.Formations[side] = DefaultFormation
		}
		formation, ok := catalog.Lookup(b.Formations[side])
		if !ok {
			return Board{}, fmt.Errorf("%w: %s", ErrUnknownFormation, b.Formations[side])
		}

		// slots are unique and drawn from the formation, so a lineup never
		// exceeds its size
		taken := make(map[string]string)
		for i := range b.Lineups[side] {
			p := &b.Lineups[side][i]
			if p.Position == "" {
				return Board{}, fmt.Errorf("%w: %s is in the lineup without a position", ErrInvalidRoster, p.ID)
			}
			if _, ok := formation.Position(p.Position); !ok {
				return Board{}, fmt.Errorf("%w: %s holds %s, not in %s", ErrUnknownPosition, p.ID, p.Position, formation.Name)
			}
			if other, dup := taken[p.Position]; dup {
				return Board{}, fmt.Errorf("%w: %s and %s both hold %s", ErrInvalidRoster, other, p.ID, p.Position)
			}
			taken[p.Position] = p.ID
		}
		for i := range b.Substitutes[side] {
			b.Substitutes[side][i].Position = ""
		}

		for _, squad := range [][]Player{b.Lineups[side], b.Substitutes[side]} {
			for i := range squad {
				p := &squad[i]
				if p.ID == "" {
					return Board{}, fmt.Errorf("%w: player without id on %s", ErrInvalidRoster, side)
				}
				if prev, dup := seen[p.ID]; dup {
					return Board{}, fmt.Errorf("%w: %s listed for %s and %s", ErrInvalidRoster, p.ID, prev, side)
				}
				seen[p.ID] = side
				if p.Team == "" {
					p.Team = side
				}
				if p.Team != side {
					return Board{}, fmt.Errorf("%w: %s belongs to %s but is listed for %s", ErrInvalidRoster, p.ID, p.Team, side)
				}
			}
		}
	}

	return b, nil
}

// State returns the current state tuple
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Editor) stateLocked() State {
	s := State{
		Board:       e.board.Clone(),
		CurrentTime: e.timeline.Current(),
		IsPlaying:   e.timeline.Playing(),
		ActionState: e.selection.State(),
	}
	if p, ok := e.selection.Armed(); ok {
		s.SelectedPlayer = &p
	}
	return s
}

func (e *Editor) publishLocked() {
	if e.publisher != nil {
		e.publisher.Publish(e.stateLocked())
	}
}

// Snapshots returns the snapshot history in time order
func (e *Editor) Snapshots() []Snapshot {
	return e.store.All()
}

// Formation returns the template currently used by team
func (e *Editor) Formation(team Side) (Formation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Lookup(e.board.Formations[team])
}

// Select arms a player for a move
func (e *Editor) Select(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEditorClosed
	}
	p, _, loc, _ := e.board.Find(playerID)
	if loc == Nowhere {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if err := e.selection.Select(p); err != nil {
		return err
	}
	e.publishLocked()
	return nil
}

// ChooseSwap switches the armed selection into swap mode
func (e *Editor) ChooseSwap() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEditorClosed
	}
	if err := e.selection.ChooseSwap(); err != nil {
		return err
	}
	e.publishLocked()
	return nil
}

// Cancel drops the selection
func (e *Editor) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEditorClosed
	}
	e.selection.Cancel()
	e.publishLocked()
	return nil
}

// Resolve applies the armed player to target and commits the result
func (e *Editor) Resolve(target Target) (Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Move{}, ErrEditorClosed
	}
	next, mv, err := e.selection.Resolve(e.engine, e.board, target)
	return e.apply(next, mv, err)
}

// MoveToEmptyPosition places a player on an unoccupied slot of team
func (e *Editor) MoveToEmptyPosition(playerID, positionID string, team Side) (Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Move{}, ErrEditorClosed
	}
	next, mv, err := e.engine.MoveToEmptyPosition(e.board, playerID, positionID, team)
	return e.apply(next, mv, err)
}

// SwapPitchPlayers exchanges two on-pitch players of team
func (e *Editor) SwapPitchPlayers(playerA, playerB string, team Side) (Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Move{}, ErrEditorClosed
	}
	next, mv, err := e.engine.SwapPitchPlayers(e.board, playerA, playerB, team)
	return e.apply(next, mv, err)
}

// SwapPitchWithBench substitutes a bench player on for a pitch player
func (e *Editor) SwapPitchWithBench(pitchPlayer, benchPlayer string, team Side) (Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Move{}, ErrEditorClosed
	}
	next, mv, err := e.engine.SwapPitchWithBench(e.board, pitchPlayer, benchPlayer, team)
	return e.apply(next, mv, err)
}

// SetFormation changes the formation of team
func (e *Editor) SetFormation(team Side, name string) (Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Move{}, ErrEditorClosed
	}
	next, mv, err := e.engine.SetFormation(e.board, team, name)
	return e.apply(next, mv, err)
}

// apply commits a movement result. Failures leave the board untouched and
// the selection idle.
func (e *Editor) apply(next Board, mv Move, err error) (Move, error) {
	e.selection.Cancel()

	if err != nil {
		e.log.WithError(err).WithField("minute", e.timeline.Current()).Debug("Movement rejected")
		e.publishLocked()
		return Move{}, err
	}
	if mv.Kind == "" {
		e.publishLocked()
		return mv, nil
	}

	minute := e.timeline.Current()
	e.board = next
	e.store.Capture(minute, e.board)

	e.log.WithFields(logrus.Fields{
		"kind":     mv.Kind,
		"team":     mv.Team,
		"player":   mv.Player.ID,
		"position": mv.PositionID,
		"minute":   minute,
	}).Info("Movement committed")

	if e.onMove != nil {
		e.onMove(minute, mv)
	}
	e.publishLocked()
	return mv, nil
}

// SaveSnapshot records the working board at the current minute
func (e *Editor) SaveSnapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Snapshot{}, ErrEditorClosed
	}
	snap := e.store.Capture(e.timeline.Current(), e.board)
	e.publishLocked()
	return snap, nil
}

// Play starts playback. It reports false when already playing, at full
// time, or after Close.
func (e *Editor) Play() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}
	if !e.timeline.Play(e.tick) {
		return false
	}
	e.log.WithField("minute", e.timeline.Current()).Debug("Playback started")
	e.publishLocked()
	return true
}

// tick runs on the ticker goroutine
func (e *Editor) tick(p *Playback) {
	e.mu.Lock()
	defer e.mu.Unlock()

	minute, ok := e.timeline.Advance(p)
	if !ok {
		return
	}
	e.replayLocked(minute)
	if !e.timeline.Playing() {
		e.log.WithField("minute", minute).Debug("Playback reached full time")
	}
	e.publishLocked()
}

// Pause stops playback and waits for the ticker to exit
func (e *Editor) Pause() {
	e.mu.Lock()
	p := e.timeline.Pause()
	if p != nil {
		e.publishLocked()
	}
	e.mu.Unlock()

	p.Wait()
}

// Seek stops playback, moves the clock and republishes the board recorded
// for that minute. It returns the clamped minute.
func (e *Editor) Seek(minute int) (int, error) {
	e.mu.Lock()
	if e.closed {
		current := e.timeline.Current()
		e.mu.Unlock()
		return current, ErrEditorClosed
	}
	clamped, p := e.timeline.Seek(minute)
	e.selection.Cancel()
	e.replayLocked(clamped)
	e.publishLocked()
	e.mu.Unlock()

	p.Wait()
	return clamped, nil
}

// replayLocked loads the effective snapshot for minute into the working
// board, falling back to the match-load roster
func (e *Editor) replayLocked(minute int) {
	if snap, ok := e.store.Query(minute); ok {
		e.board = snap.Board
		return
	}
	e.board = e.initial.Clone()
}

// Restore loads a persisted snapshot history and replays the current minute
func (e *Editor) Restore(snapshots []Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEditorClosed
	}
	e.store.Restore(snapshots)
	e.replayLocked(e.timeline.Current())
	e.publishLocked()
	return nil
}

// Close stops playback for good. The editor keeps answering reads.
func (e *Editor) Close() {
	e.mu.Lock()
	e.closed = true
	p := e.timeline.Close()
	e.mu.Unlock()

	p.Wait()
}
