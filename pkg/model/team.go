package model

import "strings"

const (
	MaxDriversPerTeam = 2
	aiTeamPrefix      = "ai"
)

type Team struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Car     *Car      `json:"car,omitempty"`
	Drivers []*Driver `json:"drivers"`
}

// IsAI reports whether the team is computer controlled (id starts with "ai")
func (t *Team) IsAI() bool {
	return strings.HasPrefix(t.ID, aiTeamPrefix)
}
