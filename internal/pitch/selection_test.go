package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func armed(t *testing.T, b Board, playerID string, swap bool) *Selection {
	t.Helper()
	p, _, loc, _ := b.Find(playerID)
	require.NotEqual(t, Nowhere, loc)

	s := &Selection{}
	require.NoError(t, s.Select(p))
	if swap {
		require.NoError(t, s.ChooseSwap())
	}
	return s
}

func TestSelection_Transitions(t *testing.T) {
	var s Selection
	assert.Equal(t, ActionIdle, s.State())
	_, ok := s.Armed()
	assert.False(t, ok)

	assert.ErrorIs(t, s.ChooseSwap(), ErrInvalidTransition, "swap needs an armed player")

	require.NoError(t, s.Select(player("P3", 3, TeamA, "CB1")))
	assert.Equal(t, ActionSelecting, s.State())
	p, ok := s.Armed()
	require.True(t, ok)
	assert.Equal(t, "P3", p.ID)

	assert.ErrorIs(t, s.Select(player("P9", 9, TeamA, "CM1")), ErrInvalidTransition)

	require.NoError(t, s.ChooseSwap())
	assert.Equal(t, ActionSwapping, s.State())
	assert.ErrorIs(t, s.ChooseSwap(), ErrInvalidTransition)

	s.Cancel()
	assert.Equal(t, ActionIdle, s.State())
	_, ok = s.Armed()
	assert.False(t, ok)
}

func TestSelection_ResolveDispatch(t *testing.T) {
	tests := []struct {
		name     string
		armed    string
		swap     bool
		target   Target
		wantKind MoveKind
		wantErr  error
	}{
		{"bench to empty slot", "P7", false, Target{Kind: TargetPosition, Team: TeamA, PositionID: "RW"}, MovePlace, nil},
		{"slot team defaults to armed team", "P7", false, Target{Kind: TargetPosition, PositionID: "RW"}, MovePlace, nil},
		{"pitch to pitch", "P3", false, Target{Kind: TargetPlayer, PlayerID: "P9"}, MoveSwap, nil},
		{"pitch to bench", "P3", false, Target{Kind: TargetPlayer, PlayerID: "P4"}, MoveSubstitution, nil},
		{"bench to pitch", "P4", true, Target{Kind: TargetPlayer, PlayerID: "P3"}, MoveSubstitution, nil},
		{"swap mode rejects slot", "P3", true, Target{Kind: TargetPosition, PositionID: "RW"}, "", ErrInvalidTarget},
		{"bench to bench", "P4", false, Target{Kind: TargetPlayer, PlayerID: "P7"}, "", ErrInvalidTarget},
		{"other team player", "P3", false, Target{Kind: TargetPlayer, PlayerID: "B2"}, "", ErrTeamMismatch},
		{"other team slot", "P7", false, Target{Kind: TargetPosition, Team: TeamB, PositionID: "ST"}, "", ErrTeamMismatch},
		{"unknown target player", "P3", false, Target{Kind: TargetPlayer, PlayerID: "X"}, "", ErrPlayerNotFound},
		{"unknown target kind", "P3", false, Target{Kind: "bench"}, "", ErrInvalidTarget},
		{"occupied slot", "P7", false, Target{Kind: TargetPosition, PositionID: "GK"}, "", ErrPositionOccupied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := testBoard()
			engine := NewEngine(DefaultCatalog(), board)
			s := armed(t, board, tt.armed, tt.swap)

			next, mv, err := s.Resolve(engine, board, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, board, next)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantKind, mv.Kind)
				requireUniquePositions(t, next)
			}
			assert.Equal(t, ActionIdle, s.State(), "resolve always ends idle")
			_, ok := s.Armed()
			assert.False(t, ok)
		})
	}
}

func TestSelection_ResolveSelfIsNoop(t *testing.T) {
	board := testBoard()
	engine := NewEngine(DefaultCatalog(), board)
	s := armed(t, board, "P3", false)

	next, mv, err := s.Resolve(engine, board, Target{Kind: TargetPlayer, PlayerID: "P3"})
	require.NoError(t, err)
	assert.Equal(t, Move{}, mv)
	assert.Equal(t, board, next)
	assert.Equal(t, ActionIdle, s.State())
}

func TestSelection_ResolveWhileIdle(t *testing.T) {
	board := testBoard()
	var s Selection

	_, _, err := s.Resolve(NewEngine(DefaultCatalog(), board), board, Target{Kind: TargetPosition, PositionID: "RW"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
