package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/jstittsworth/lineup-editor/internal/pitch"
)

// MatchSnapshot is the persisted form of one timeline snapshot
type MatchSnapshot struct {
	ID          uint                                 `gorm:"primaryKey" json:"id"`
	MatchID     string                               `gorm:"type:uuid;not null;uniqueIndex:idx_match_minute" json:"match_id"`
	Minute      int                                  `gorm:"not null;uniqueIndex:idx_match_minute" json:"minute"`
	Formations  datatypes.JSONType[pitch.Formations] `json:"formations"`
	Lineups     datatypes.JSONType[pitch.Squads]     `json:"lineups"`
	Substitutes datatypes.JSONType[pitch.Squads]     `json:"substitutes"`
	CreatedAt   time.Time                            `json:"created_at"`
	UpdatedAt   time.Time                            `json:"updated_at"`
}

func (MatchSnapshot) TableName() string {
	return "match_snapshots"
}

func NewMatchSnapshot(matchID string, s pitch.Snapshot) MatchSnapshot {
	c := s.Clone()
	return MatchSnapshot{
		MatchID:     matchID,
		Minute:      c.Time,
		Formations:  datatypes.NewJSONType(c.Formations),
		Lineups:     datatypes.NewJSONType(c.Lineups),
		Substitutes: datatypes.NewJSONType(c.Substitutes),
	}
}

func (ms MatchSnapshot) ToSnapshot() pitch.Snapshot {
	return pitch.Snapshot{
		Time: ms.Minute,
		Board: pitch.Board{
			Formations:  ms.Formations.Data(),
			Lineups:     ms.Lineups.Data(),
			Substitutes: ms.Substitutes.Data(),
		},
	}.Clone()
}
