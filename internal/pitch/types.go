package pitch

import "slices"

// Side identifies one of the two teams on the pitch
type Side string

const (
	TeamA Side = "team_a"
	TeamB Side = "team_b"
)

// Sides lists both teams in display order
var Sides = []Side{TeamA, TeamB}

// Valid reports whether s is one of the two known sides
func (s Side) Valid() bool {
	return s == TeamA || s == TeamB
}

// Role is the broad line a position belongs to
type Role string

const (
	RoleGoalkeeper Role = "GK"
	RoleDefender   Role = "DEF"
	RoleMidfielder Role = "MID"
	RoleForward    Role = "FWD"
)

// Position is a named slot on the pitch. X and Y are percentages of the
// pitch width and length, measured from the team's own goal line.
type Position struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Role  Role    `json:"role"`
}

// Stats holds the per-match counters shown on a player card
type Stats struct {
	Goals   int `json:"goals"`
	Assists int `json:"assists"`
	Minutes int `json:"minutes"`
}

// Player is a roster entry. Position is the slot id while on the pitch and
// empty while on the bench.
type Player struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Number             int      `json:"number"`
	Team               Side     `json:"team"`
	Position           string   `json:"position,omitempty"`
	PreferredPositions []string `json:"preferred_positions"`
	IsCaptain          bool     `json:"is_captain"`
	FromBench          bool     `json:"from_bench"`
	Stats              Stats    `json:"stats"`
}

// Clone returns a copy that shares no mutable state with p
func (p Player) Clone() Player {
	p.PreferredPositions = slices.Clone(p.PreferredPositions)
	return p
}

// OnPitch reports whether the player currently holds a pitch position
func (p Player) OnPitch() bool {
	return p.Position != ""
}

// Formations maps each side to its selected formation name
type Formations map[Side]string

// Clone copies the formation selection
func (f Formations) Clone() Formations {
	out := make(Formations, len(f))
	for side, name := range f {
		out[side] = name
	}
	return out
}

// Squads groups players by side. It is used for both lineups and benches.
type Squads map[Side][]Player

// Clone deep-copies every player of every side
func (s Squads) Clone() Squads {
	out := make(Squads, len(s))
	for side, players := range s {
		cp := make([]Player, len(players))
		for i, p := range players {
			cp[i] = p.Clone()
		}
		out[side] = cp
	}
	return out
}

// Board is the working lineup state of both teams
type Board struct {
	Formations  Formations `json:"formations"`
	Lineups     Squads     `json:"lineups"`
	Substitutes Squads     `json:"substitutes"`
}

// Clone returns a deep copy of the board
func (b Board) Clone() Board {
	return Board{
		Formations:  b.Formations.Clone(),
		Lineups:     b.Lineups.Clone(),
		Substitutes: b.Substitutes.Clone(),
	}
}

// Location describes where a player was found on the board
type Location int

const (
	Nowhere Location = iota
	OnPitch
	OnBench
)

// Find looks a player up across both teams. It returns the player, the side
// whose containers hold it, where it sits and its index in that container.
func (b Board) Find(playerID string) (Player, Side, Location, int) {
	for _, side := range Sides {
		if i := indexOf(b.Lineups[side], playerID); i >= 0 {
			return b.Lineups[side][i], side, OnPitch, i
		}
		if i := indexOf(b.Substitutes[side], playerID); i >= 0 {
			return b.Substitutes[side][i], side, OnBench, i
		}
	}
	return Player{}, "", Nowhere, -1
}

// Occupant returns the on-pitch player of team holding positionID
func (b Board) Occupant(team Side, positionID string) (Player, bool) {
	for _, p := range b.Lineups[team] {
		if p.Position == positionID {
			return p, true
		}
	}
	return Player{}, false
}

// Roster returns the ids of every player of team, pitch first then bench
func (b Board) Roster(team Side) []string {
	ids := make([]string, 0, len(b.Lineups[team])+len(b.Substitutes[team]))
	for _, p := range b.Lineups[team] {
		ids = append(ids, p.ID)
	}
	for _, p := range b.Substitutes[team] {
		ids = append(ids, p.ID)
	}
	return ids
}

func indexOf(players []Player, playerID string) int {
	return slices.IndexFunc(players, func(p Player) bool { return p.ID == playerID })
}

func without(players []Player, playerID string) []Player {
	return slices.DeleteFunc(slices.Clone(players), func(p Player) bool { return p.ID == playerID })
}
