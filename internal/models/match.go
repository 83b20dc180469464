package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/jstittsworth/lineup-editor/internal/pitch"
)

type Match struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	TeamAName  string    `gorm:"not null" json:"team_a_name"`
	TeamBName  string    `gorm:"not null" json:"team_b_name"`
	FormationA string    `gorm:"not null;default:'4-4-2'" json:"formation_a"`
	FormationB string    `gorm:"not null;default:'4-4-2'" json:"formation_b"`
	KickoffAt  time.Time `json:"kickoff_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Players []RosterPlayer `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE" json:"players,omitempty"`
}

// TableName specifies the table name for GORM
func (Match) TableName() string {
	return "matches"
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// RosterPlayer is one player of the match-load roster. An empty Position
// means the player starts on the bench, ordered by BenchOrder.
type RosterPlayer struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	MatchID            string         `gorm:"type:uuid;not null;index;uniqueIndex:idx_match_player" json:"match_id"`
	PlayerKey          string         `gorm:"not null;uniqueIndex:idx_match_player" json:"player_key"`
	Name               string         `gorm:"not null" json:"name"`
	Number             int            `json:"number"`
	Team               string         `gorm:"not null" json:"team"`
	Position           string         `json:"position,omitempty"`
	PreferredPositions pq.StringArray `gorm:"type:text" json:"preferred_positions"`
	IsCaptain          bool           `gorm:"default:false" json:"is_captain"`
	BenchOrder         int            `json:"bench_order"`
	Goals              int            `json:"goals"`
	Assists            int            `json:"assists"`
	Minutes            int            `json:"minutes"`
}

func (RosterPlayer) TableName() string {
	return "roster_players"
}

func (rp RosterPlayer) ToPlayer() pitch.Player {
	return pitch.Player{
		ID:                 rp.PlayerKey,
		Name:               rp.Name,
		Number:             rp.Number,
		Team:               pitch.Side(rp.Team),
		Position:           rp.Position,
		PreferredPositions: append([]string(nil), rp.PreferredPositions...),
		IsCaptain:          rp.IsCaptain,
		Stats: pitch.Stats{
			Goals:   rp.Goals,
			Assists: rp.Assists,
			Minutes: rp.Minutes,
		},
	}
}

// NewRosterPlayer maps an editor player onto a roster row of matchID
func NewRosterPlayer(matchID string, p pitch.Player, benchOrder int) RosterPlayer {
	return RosterPlayer{
		MatchID:            matchID,
		PlayerKey:          p.ID,
		Name:               p.Name,
		Number:             p.Number,
		Team:               string(p.Team),
		Position:           p.Position,
		PreferredPositions: pq.StringArray(p.PreferredPositions),
		IsCaptain:          p.IsCaptain,
		BenchOrder:         benchOrder,
		Goals:              p.Stats.Goals,
		Assists:            p.Stats.Assists,
		Minutes:            p.Stats.Minutes,
	}
}

// Board builds the match-load board from the match and its roster
func (m *Match) Board() (pitch.Board, error) {
	b := pitch.Board{
		Formations:  pitch.Formations{pitch.TeamA: m.FormationA, pitch.TeamB: m.FormationB},
		Lineups:     pitch.Squads{pitch.TeamA: {}, pitch.TeamB: {}},
		Substitutes: pitch.Squads{pitch.TeamA: {}, pitch.TeamB: {}},
	}

	bench := make([]RosterPlayer, 0, len(m.Players))
	for _, rp := range m.Players {
		side := pitch.Side(rp.Team)
		if !side.Valid() {
			return pitch.Board{}, fmt.Errorf("roster player %s has invalid team %q", rp.PlayerKey, rp.Team)
		}
		if rp.Position == "" {
			bench = append(bench, rp)
			continue
		}
		b.Lineups[side] = append(b.Lineups[side], rp.ToPlayer())
	}

	sort.SliceStable(bench, func(i, j int) bool { return bench[i].BenchOrder < bench[j].BenchOrder })
	for _, rp := range bench {
		side := pitch.Side(rp.Team)
		b.Substitutes[side] = append(b.Substitutes[side], rp.ToPlayer())
	}

	return b, nil
}

// RosterFromBoard flattens a board into roster rows for matchID
func RosterFromBoard(matchID string, b pitch.Board) []RosterPlayer {
	var rows []RosterPlayer
	for _, side := range pitch.Sides {
		for _, p := range b.Lineups[side] {
			p.Team = side
			rows = append(rows, NewRosterPlayer(matchID, p, 0))
		}
		for i, p := range b.Substitutes[side] {
			p.Team = side
			p.Position = ""
			rows = append(rows, NewRosterPlayer(matchID, p, i+1))
		}
	}
	return rows
}
