package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jstittsworth/lineup-editor/internal/models"
	"github.com/jstittsworth/lineup-editor/internal/pitch"
	"github.com/jstittsworth/lineup-editor/pkg/database"
	"github.com/jstittsworth/lineup-editor/pkg/logger"
)

func testLogger() *logrus.Logger {
	return logger.Discard().Logger
}

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	db := &database.DB{DB: gdb}
	require.NoError(t, AutoMigrate(db))
	return db
}

func setupTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheService(client), mr
}

func rosterPlayer(id string, number int, team pitch.Side, position string, prefs ...string) pitch.Player {
	return pitch.Player{
		ID:                 id,
		Name:               "Player " + id,
		Number:             number,
		Team:               team,
		Position:           position,
		PreferredPositions: prefs,
	}
}

// fixtureBoard is a 4-4-2 side with RW open and two substitutes, against a
// short 4-3-3 side
func fixtureBoard() pitch.Board {
	return pitch.Board{
		Formations: pitch.Formations{pitch.TeamA: "4-4-2", pitch.TeamB: "4-3-3"},
		Lineups: pitch.Squads{
			pitch.TeamA: {
				rosterPlayer("P1", 1, pitch.TeamA, "GK", "GK"),
				rosterPlayer("P3", 3, pitch.TeamA, "CB1", "CB1"),
				rosterPlayer("P5", 5, pitch.TeamA, "CB2", "CB2"),
				rosterPlayer("P9", 9, pitch.TeamA, "ST1", "ST1"),
			},
			pitch.TeamB: {
				rosterPlayer("B1", 1, pitch.TeamB, "GK", "GK"),
			},
		},
		Substitutes: pitch.Squads{
			pitch.TeamA: {
				rosterPlayer("P4", 4, pitch.TeamA, "", "CB1"),
				rosterPlayer("P7", 7, pitch.TeamA, ""),
			},
			pitch.TeamB: {
				rosterPlayer("B12", 12, pitch.TeamB, ""),
			},
		},
	}
}

func seedMatch(t *testing.T, repo *TimelineRepository) *models.Match {
	t.Helper()
	match := &models.Match{Name: "Derby", TeamAName: "City", TeamBName: "United"}
	require.NoError(t, repo.CreateMatch(context.Background(), match, fixtureBoard()))
	return match
}
