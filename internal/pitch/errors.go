package pitch

import "errors"

var (
	ErrInvalidTeam       = errors.New("invalid team")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrTeamMismatch      = errors.New("rejected: team mismatch")
	ErrPositionOccupied  = errors.New("position is occupied")
	ErrUnknownPosition   = errors.New("position is not part of the team's formation")
	ErrUnknownFormation  = errors.New("unknown formation")
	ErrSamePlayer        = errors.New("cannot swap a player with itself")
	ErrNotOnPitch        = errors.New("player is not on the pitch")
	ErrNotOnBench        = errors.New("player is not on the bench")
	ErrInvalidTarget     = errors.New("target cannot receive the selected player")
	ErrInvalidTransition = errors.New("action not allowed in the current selection state")
	ErrInvalidRoster     = errors.New("invalid roster")
	ErrEditorClosed      = errors.New("editor is closed")
)
