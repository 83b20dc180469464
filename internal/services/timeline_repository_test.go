package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/lineup-editor/internal/models"
	"github.com/jstittsworth/lineup-editor/internal/pitch"
)

func TestTimelineRepository_CreateAndLoadMatch(t *testing.T) {
	repo := NewTimelineRepository(setupTestDB(t))
	ctx := context.Background()

	match := seedMatch(t, repo)
	require.NotEmpty(t, match.ID)
	assert.Equal(t, "4-4-2", match.FormationA)
	assert.Len(t, match.Players, 8)

	loaded, err := repo.LoadMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, "Derby", loaded.Name)

	board, err := loaded.Board()
	require.NoError(t, err)
	want := fixtureBoard()
	assert.Equal(t, want.Formations, board.Formations)
	assert.Equal(t, want.Lineups, board.Lineups)
	assert.Equal(t, want.Substitutes, board.Substitutes)
}

func TestTimelineRepository_LoadMatchNotFound(t *testing.T) {
	repo := NewTimelineRepository(setupTestDB(t))
	_, err := repo.LoadMatch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestTimelineRepository_SnapshotsUpsertByMinute(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimelineRepository(db)
	ctx := context.Background()
	match := seedMatch(t, repo)

	first := fixtureBoard()
	require.NoError(t, repo.SaveSnapshots(ctx, match.ID, []pitch.Snapshot{
		{Time: 30, Board: first},
		{Time: 10, Board: first},
	}))

	changed := fixtureBoard()
	changed.Formations[pitch.TeamA] = "4-3-3"
	require.NoError(t, repo.SaveSnapshots(ctx, match.ID, []pitch.Snapshot{
		{Time: 10, Board: first},
		{Time: 30, Board: changed},
		{Time: 45, Board: changed},
	}))

	var rows int64
	require.NoError(t, db.Model(&models.MatchSnapshot{}).Where("match_id = ?", match.ID).Count(&rows).Error)
	assert.EqualValues(t, 3, rows)

	snaps, err := repo.LoadSnapshots(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, []int{10, 30, 45}, []int{snaps[0].Time, snaps[1].Time, snaps[2].Time})
	assert.Equal(t, "4-4-2", snaps[0].Formations[pitch.TeamA])
	assert.Equal(t, "4-3-3", snaps[1].Formations[pitch.TeamA])

	require.NoError(t, repo.SaveSnapshots(ctx, match.ID, nil))
}

func TestTimelineRepository_ListMatches(t *testing.T) {
	repo := NewTimelineRepository(setupTestDB(t))
	seedMatch(t, repo)
	seedMatch(t, repo)

	matches, err := repo.ListMatches(context.Background())
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}
