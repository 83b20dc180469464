package pitch

import "fmt"

// ActionState is the phase of the current pick-and-place interaction
type ActionState string

const (
	ActionIdle      ActionState = "idle"
	ActionSelecting ActionState = "selecting"
	ActionSwapping  ActionState = "swapping"
)

// TargetKind tells Resolve what the user clicked
type TargetKind string

const (
	TargetPosition TargetKind = "position"
	TargetPlayer   TargetKind = "player"
)

// Target is the destination of an armed player
type Target struct {
	Kind       TargetKind `json:"kind"`
	Team       Side       `json:"team,omitempty"`
	PositionID string     `json:"position_id,omitempty"`
	PlayerID   string     `json:"player_id,omitempty"`
}

// Selection tracks the armed player. The zero value is idle.
type Selection struct {
	player *Player
	state  ActionState
}

// State returns the current action state
func (s *Selection) State() ActionState {
	if s.state == "" {
		return ActionIdle
	}
	return s.state
}

// Armed returns a copy of the selected player, if any
func (s *Selection) Armed() (Player, bool) {
	if s.player == nil {
		return Player{}, false
	}
	return s.player.Clone(), true
}

// Select arms p. Only valid while idle.
func (s *Selection) Select(p Player) error {
	if s.State() != ActionIdle {
		return fmt.Errorf("%w: select while %s", ErrInvalidTransition, s.State())
	}
	armed := p.Clone()
	s.player = &armed
	s.state = ActionSelecting
	return nil
}

// ChooseSwap switches an armed selection into explicit swap mode
func (s *Selection) ChooseSwap() error {
	if s.State() != ActionSelecting {
		return fmt.Errorf("%w: swap while %s", ErrInvalidTransition, s.State())
	}
	s.state = ActionSwapping
	return nil
}

// Cancel returns to idle without touching the board
func (s *Selection) Cancel() {
	s.player = nil
	s.state = ActionIdle
}

// Resolve dispatches the armed player onto target through the engine and
// returns to idle whatever the outcome. A nil error with an empty Move
// means the user clicked the armed player again and nothing changed.
func (s *Selection) Resolve(e *Engine, b Board, target Target) (Board, Move, error) {
	state := s.State()
	armedPtr := s.player
	s.Cancel()

	if state == ActionIdle || armedPtr == nil {
		return b, Move{}, fmt.Errorf("%w: nothing selected", ErrInvalidTransition)
	}

	// re-read the armed player from the live board, the copy may be stale
	armed, team, armedLoc, _ := b.Find(armedPtr.ID)
	if armedLoc == Nowhere {
		return b, Move{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, armedPtr.ID)
	}

	switch target.Kind {
	case TargetPosition:
		if state == ActionSwapping {
			return b, Move{}, fmt.Errorf("%w: swap mode needs a player target", ErrInvalidTarget)
		}
		targetTeam := target.Team
		if targetTeam == "" {
			targetTeam = team
		}
		if targetTeam != team {
			return b, Move{}, fmt.Errorf("%w: %s cannot move to %s", ErrTeamMismatch, armed.ID, targetTeam)
		}
		return e.MoveToEmptyPosition(b, armed.ID, target.PositionID, team)

	case TargetPlayer:
		if target.PlayerID == armed.ID {
			return b, Move{}, nil
		}
		_, targetTeam, targetLoc, _ := b.Find(target.PlayerID)
		if targetLoc == Nowhere {
			return b, Move{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, target.PlayerID)
		}
		if targetTeam != team {
			return b, Move{}, fmt.Errorf("%w: %s and %s play for different teams", ErrTeamMismatch, armed.ID, target.PlayerID)
		}

		switch {
		case armedLoc == OnPitch && targetLoc == OnPitch:
			return e.SwapPitchPlayers(b, armed.ID, target.PlayerID, team)
		case armedLoc == OnPitch && targetLoc == OnBench:
			return e.SwapPitchWithBench(b, armed.ID, target.PlayerID, team)
		case armedLoc == OnBench && targetLoc == OnPitch:
			return e.SwapPitchWithBench(b, target.PlayerID, armed.ID, team)
		default:
			return b, Move{}, fmt.Errorf("%w: both players are on the bench", ErrInvalidTarget)
		}
	}

	return b, Move{}, fmt.Errorf("%w: unknown target kind %q", ErrInvalidTarget, target.Kind)
}
