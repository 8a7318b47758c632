package model

const (
	MinRating = 1
	MaxRating = 100
)

type Driver struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Skill  int    `json:"skill"`
	TeamID string `json:"teamId,omitempty"`
}

// ClampRating limits v to the valid rating range 1..100
func ClampRating(v int) int {
	return max(MinRating, min(MaxRating, v))
}
