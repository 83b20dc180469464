package pitch

import "sort"

// Formation is a named layout of eleven pitch positions
type Formation struct {
	Name      string     `json:"name"`
	Positions []Position `json:"positions"`
}

// Position returns the slot with the given id
func (f Formation) Position(id string) (Position, bool) {
	for _, p := range f.Positions {
		if p.ID == id {
			return p, true
		}
	}
	return Position{}, false
}

// Catalog maps formation names to their templates
type Catalog map[string]Formation

// Lookup returns the formation registered under name
func (c Catalog) Lookup(name string) (Formation, bool) {
	f, ok := c[name]
	return f, ok
}

// Names returns the registered formation names in sorted order
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultFormation is used when a match does not name one
const DefaultFormation = "4-4-2"

var goalkeeper = Position{ID: "GK", Label: "Goalkeeper", X: 50, Y: 5, Role: RoleGoalkeeper}

// DefaultCatalog returns the built-in formation templates
func DefaultCatalog() Catalog {
	formations := []Formation{
		{
			Name: "4-4-2",
			Positions: []Position{
				goalkeeper,
				{ID: "LB", Label: "Left Back", X: 15, Y: 25, Role: RoleDefender},
				{ID: "CB1", Label: "Centre Back", X: 38, Y: 22, Role: RoleDefender},
				{ID: "CB2", Label: "Centre Back", X: 62, Y: 22, Role: RoleDefender},
				{ID: "RB", Label: "Right Back", X: 85, Y: 25, Role: RoleDefender},
				{ID: "LW", Label: "Left Wing", X: 15, Y: 55, Role: RoleMidfielder},
				{ID: "CM1", Label: "Central Midfield", X: 38, Y: 50, Role: RoleMidfielder},
				{ID: "CM2", Label: "Central Midfield", X: 62, Y: 50, Role: RoleMidfielder},
				{ID: "RW", Label: "Right Wing", X: 85, Y: 55, Role: RoleMidfielder},
				{ID: "ST1", Label: "Striker", X: 40, Y: 80, Role: RoleForward},
				{ID: "ST2", Label: "Striker", X: 60, Y: 80, Role: RoleForward},
			},
		},
		{
			Name: "4-3-3",
			Positions: []Position{
				goalkeeper,
				{ID: "LB", Label: "Left Back", X: 15, Y: 25, Role: RoleDefender},
				{ID: "CB1", Label: "Centre Back", X: 38, Y: 22, Role: RoleDefender},
				{ID: "CB2", Label: "Centre Back", X: 62, Y: 22, Role: RoleDefender},
				{ID: "RB", Label: "Right Back", X: 85, Y: 25, Role: RoleDefender},
				{ID: "CM1", Label: "Central Midfield", X: 30, Y: 50, Role: RoleMidfielder},
				{ID: "CDM", Label: "Defensive Midfield", X: 50, Y: 42, Role: RoleMidfielder},
				{ID: "CM2", Label: "Central Midfield", X: 70, Y: 50, Role: RoleMidfielder},
				{ID: "LW", Label: "Left Wing", X: 18, Y: 75, Role: RoleForward},
				{ID: "ST", Label: "Striker", X: 50, Y: 82, Role: RoleForward},
				{ID: "RW", Label: "Right Wing", X: 82, Y: 75, Role: RoleForward},
			},
		},
		{
			Name: "3-5-2",
			Positions: []Position{
				goalkeeper,
				{ID: "CB1", Label: "Centre Back", X: 28, Y: 22, Role: RoleDefender},
				{ID: "CB2", Label: "Centre Back", X: 50, Y: 20, Role: RoleDefender},
				{ID: "CB3", Label: "Centre Back", X: 72, Y: 22, Role: RoleDefender},
				{ID: "LWB", Label: "Left Wing Back", X: 10, Y: 50, Role: RoleMidfielder},
				{ID: "CM1", Label: "Central Midfield", X: 32, Y: 50, Role: RoleMidfielder},
				{ID: "CDM", Label: "Defensive Midfield", X: 50, Y: 42, Role: RoleMidfielder},
				{ID: "CM2", Label: "Central Midfield", X: 68, Y: 50, Role: RoleMidfielder},
				{ID: "RWB", Label: "Right Wing Back", X: 90, Y: 50, Role: RoleMidfielder},
				{ID: "ST1", Label: "Striker", X: 40, Y: 80, Role: RoleForward},
				{ID: "ST2", Label: "Striker", X: 60, Y: 80, Role: RoleForward},
			},
		},
		{
			Name: "4-2-3-1",
			Positions: []Position{
				goalkeeper,
				{ID: "LB", Label: "Left Back", X: 15, Y: 25, Role: RoleDefender},
				{ID: "CB1", Label: "Centre Back", X: 38, Y: 22, Role: RoleDefender},
				{ID: "CB2", Label: "Centre Back", X: 62, Y: 22, Role: RoleDefender},
				{ID: "RB", Label: "Right Back", X: 85, Y: 25, Role: RoleDefender},
				{ID: "CDM1", Label: "Defensive Midfield", X: 40, Y: 42, Role: RoleMidfielder},
				{ID: "CDM2", Label: "Defensive Midfield", X: 60, Y: 42, Role: RoleMidfielder},
				{ID: "LW", Label: "Left Wing", X: 18, Y: 65, Role: RoleMidfielder},
				{ID: "CAM", Label: "Attacking Midfield", X: 50, Y: 65, Role: RoleMidfielder},
				{ID: "RW", Label: "Right Wing", X: 82, Y: 65, Role: RoleMidfielder},
				{ID: "ST", Label: "Striker", X: 50, Y: 84, Role: RoleForward},
			},
		},
		{
			Name: "5-3-2",
			Positions: []Position{
				goalkeeper,
				{ID: "LWB", Label: "Left Wing Back", X: 10, Y: 32, Role: RoleDefender},
				{ID: "CB1", Label: "Centre Back", X: 30, Y: 22, Role: RoleDefender},
				{ID: "CB2", Label: "Centre Back", X: 50, Y: 20, Role: RoleDefender},
				{ID: "CB3", Label: "Centre Back", X: 70, Y: 22, Role: RoleDefender},
				{ID: "RWB", Label: "Right Wing Back", X: 90, Y: 32, Role: RoleDefender},
				{ID: "CM1", Label: "Central Midfield", X: 30, Y: 52, Role: RoleMidfielder},
				{ID: "CM2", Label: "Central Midfield", X: 50, Y: 48, Role: RoleMidfielder},
				{ID: "CM3", Label: "Central Midfield", X: 70, Y: 52, Role: RoleMidfielder},
				{ID: "ST1", Label: "Striker", X: 40, Y: 80, Role: RoleForward},
				{ID: "ST2", Label: "Striker", X: 60, Y: 80, Role: RoleForward},
			},
		},
	}

	catalog := make(Catalog, len(formations))
	for _, f := range formations {
		catalog[f.Name] = f
	}
	return catalog
}
