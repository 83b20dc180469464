package pitch

import (
	"fmt"
	"slices"
)

// MoveKind names a committed movement
type MoveKind string

const (
	MovePlace        MoveKind = "move"
	MoveSwap         MoveKind = "swap"
	MoveSubstitution MoveKind = "substitution"
	MoveFormation    MoveKind = "formation"
)

// Move describes a movement the engine applied
type Move struct {
	Kind       MoveKind `json:"kind"`
	Team       Side     `json:"team"`
	Player     Player   `json:"player"`
	Other      *Player  `json:"other,omitempty"`
	PositionID string   `json:"position_id,omitempty"`
	Formation  string   `json:"formation,omitempty"`
}

// Engine validates and applies player movements. Every operation works on a
// copy of the board, so a rejected movement never touches the caller's
// state.
type Engine struct {
	catalog     Catalog
	preferences map[string][]string
}

// NewEngine creates an engine that remembers the preferred positions of
// every player on the roster
func NewEngine(catalog Catalog, roster Board) *Engine {
	prefs := make(map[string][]string)
	for _, squads := range []Squads{roster.Lineups, roster.Substitutes} {
		for _, players := range squads {
			for _, p := range players {
				if len(p.PreferredPositions) > 0 {
					prefs[p.ID] = slices.Clone(p.PreferredPositions)
				}
			}
		}
	}
	return &Engine{catalog: catalog, preferences: prefs}
}

// locate finds playerID inside team's containers
func (e *Engine) locate(b Board, playerID string, team Side) (Player, Location, int, error) {
	if !team.Valid() {
		return Player{}, Nowhere, -1, fmt.Errorf("%w: %q", ErrInvalidTeam, team)
	}
	p, side, loc, idx := b.Find(playerID)
	switch {
	case loc == Nowhere:
		return Player{}, Nowhere, -1, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	case side != team || (p.Team != "" && p.Team != team):
		return Player{}, Nowhere, -1, fmt.Errorf("%w: %s belongs to %s, not %s", ErrTeamMismatch, playerID, side, team)
	}
	return p, loc, idx, nil
}

func (e *Engine) checkPosition(b Board, team Side, positionID string) error {
	f, ok := e.catalog.Lookup(b.Formations[team])
	if !ok {
		// custom formation without a template, accept any slot id
		return nil
	}
	if _, ok := f.Position(positionID); !ok {
		return fmt.Errorf("%w: %s not in %s", ErrUnknownPosition, positionID, f.Name)
	}
	return nil
}

// MoveToEmptyPosition places a pitch or bench player on an unoccupied slot
func (e *Engine) MoveToEmptyPosition(b Board, playerID, positionID string, team Side) (Board, Move, error) {
	player, _, _, err := e.locate(b, playerID, team)
	if err != nil {
		return b, Move{}, err
	}
	if positionID == "" {
		return b, Move{}, fmt.Errorf("%w: empty position id", ErrUnknownPosition)
	}
	if err := e.checkPosition(b, team, positionID); err != nil {
		return b, Move{}, err
	}
	if occupant, ok := b.Occupant(team, positionID); ok {
		return b, Move{}, fmt.Errorf("%w: %s holds %s", ErrPositionOccupied, occupant.ID, positionID)
	}

	next := b.Clone()
	next.Substitutes[team] = without(next.Substitutes[team], playerID)
	lineup := without(next.Lineups[team], playerID)

	moved := player.Clone()
	moved.Position = positionID
	moved.FromBench = false
	if prefs, ok := e.preferences[playerID]; ok {
		moved.PreferredPositions = slices.Clone(prefs)
	} else {
		moved.PreferredPositions = []string{positionID}
	}
	next.Lineups[team] = append(lineup, moved)

	return next, Move{Kind: MovePlace, Team: team, Player: moved.Clone(), PositionID: positionID}, nil
}

// SwapPitchPlayers exchanges the positions of two on-pitch players
func (e *Engine) SwapPitchPlayers(b Board, playerA, playerB string, team Side) (Board, Move, error) {
	if playerA == playerB {
		return b, Move{}, ErrSamePlayer
	}
	a, locA, idxA, err := e.locate(b, playerA, team)
	if err != nil {
		return b, Move{}, err
	}
	other, locB, idxB, err := e.locate(b, playerB, team)
	if err != nil {
		return b, Move{}, err
	}
	if locA != OnPitch {
		return b, Move{}, fmt.Errorf("%w: %s", ErrNotOnPitch, playerA)
	}
	if locB != OnPitch {
		return b, Move{}, fmt.Errorf("%w: %s", ErrNotOnPitch, playerB)
	}

	next := b.Clone()
	lineup := next.Lineups[team]
	lineup[idxA].Position, lineup[idxB].Position = other.Position, a.Position

	swapped := lineup[idxB].Clone()
	return next, Move{Kind: MoveSwap, Team: team, Player: lineup[idxA].Clone(), Other: &swapped, PositionID: a.Position}, nil
}

// SwapPitchWithBench substitutes benchPlayer on in place of pitchPlayer.
// The outgoing player takes the incoming player's bench slot.
func (e *Engine) SwapPitchWithBench(b Board, pitchPlayer, benchPlayer string, team Side) (Board, Move, error) {
	if pitchPlayer == benchPlayer {
		return b, Move{}, ErrSamePlayer
	}
	out, outLoc, outIdx, err := e.locate(b, pitchPlayer, team)
	if err != nil {
		return b, Move{}, err
	}
	in, inLoc, inIdx, err := e.locate(b, benchPlayer, team)
	if err != nil {
		return b, Move{}, err
	}
	if outLoc != OnPitch {
		return b, Move{}, fmt.Errorf("%w: %s", ErrNotOnPitch, pitchPlayer)
	}
	if inLoc != OnBench {
		return b, Move{}, fmt.Errorf("%w: %s", ErrNotOnBench, benchPlayer)
	}

	positionID := out.Position

	incoming := in.Clone()
	incoming.Position = positionID
	incoming.FromBench = false

	outgoing := out.Clone()
	outgoing.Position = ""
	outgoing.FromBench = true

	next := b.Clone()
	next.Lineups[team][outIdx] = incoming
	next.Substitutes[team][inIdx] = outgoing

	return next, Move{Kind: MoveSubstitution, Team: team, Player: incoming.Clone(), Other: &outgoing, PositionID: positionID}, nil
}

// SetFormation switches team to a catalog formation. Players keep their
// slot ids; only the available targets change.
func (e *Engine) SetFormation(b Board, team Side, name string) (Board, Move, error) {
	if !team.Valid() {
		return b, Move{}, fmt.Errorf("%w: %q", ErrInvalidTeam, team)
	}
	if _, ok := e.catalog.Lookup(name); !ok {
		return b, Move{}, fmt.Errorf("%w: %s", ErrUnknownFormation, name)
	}

	next := b.Clone()
	next.Formations[team] = name
	return next, Move{Kind: MoveFormation, Team: team, Formation: name}, nil
}
