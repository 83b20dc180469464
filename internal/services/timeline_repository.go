package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jstittsworth/lineup-editor/internal/models"
	"github.com/jstittsworth/lineup-editor/internal/pitch"
	"github.com/jstittsworth/lineup-editor/pkg/database"
)

var ErrMatchNotFound = errors.New("match not found")

// TimelineRepository persists matches, their match-load rosters and the
// snapshot timeline recorded by the editor
type TimelineRepository struct {
	db *database.DB
}

func NewTimelineRepository(db *database.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// CreateMatch stores match together with the roster described by board
func (r *TimelineRepository) CreateMatch(ctx context.Context, match *models.Match, board pitch.Board) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match.FormationA = board.Formations[pitch.TeamA]
		match.FormationB = board.Formations[pitch.TeamB]
		match.Players = nil
		if err := tx.Create(match).Error; err != nil {
			return fmt.Errorf("failed to create match: %w", err)
		}

		rows := models.RosterFromBoard(match.ID, board)
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to create roster: %w", err)
			}
		}
		match.Players = rows
		return nil
	})
}

// LoadMatch returns the match with its roster in insertion order
func (r *TimelineRepository) LoadMatch(ctx context.Context, matchID string) (*models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).
		Preload("Players", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		First(&match, "id = ?", matchID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	return &match, nil
}

func (r *TimelineRepository) ListMatches(ctx context.Context) ([]models.Match, error) {
	var matches []models.Match
	if err := r.db.WithContext(ctx).Order("kickoff_at DESC").Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// SaveSnapshots upserts every snapshot of the timeline, one row per minute
func (r *TimelineRepository) SaveSnapshots(ctx context.Context, matchID string, snapshots []pitch.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	rows := make([]models.MatchSnapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		rows = append(rows, models.NewMatchSnapshot(matchID, snap))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}, {Name: "minute"}},
			DoUpdates: clause.AssignmentColumns([]string{"formations", "lineups", "substitutes", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to save snapshots: %w", err)
		}
		return nil
	})
}

// LoadSnapshots returns the persisted timeline of a match ordered by minute
func (r *TimelineRepository) LoadSnapshots(ctx context.Context, matchID string) ([]pitch.Snapshot, error) {
	var rows []models.MatchSnapshot
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("minute").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	snapshots := make([]pitch.Snapshot, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, row.ToSnapshot())
	}
	return snapshots, nil
}

// AutoMigrate creates or updates the editor tables
func AutoMigrate(db *database.DB) error {
	return db.AutoMigrate(&models.Match{}, &models.RosterPlayer{}, &models.MatchSnapshot{})
}
