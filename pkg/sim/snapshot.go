package sim

import (
	"maps"
	"slices"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
)

// Snapshot is a consistent copy of the race state.
// Consumers may keep it, the engine never modifies a published snapshot.
type Snapshot struct {
	State           State                     `json:"state"`
	TrackName       string                    `json:"trackName"`
	CurrentLap      int                       `json:"currentLap"`
	TotalLaps       int                       `json:"totalLaps"`
	Standings       []model.RaceStanding      `json:"standings"`
	EventLog        []model.RaceEventLogEntry `json:"eventLog"`
	Weather         model.WeatherState        `json:"weather"`
	SafetyCar       model.SafetyCarState      `json:"safetyCar"`
	CumulativeTimes map[string]float64        `json:"cumulativeTimes"`
	Penalties       map[string]float64        `json:"penalties"`
}

func (s *Snapshot) IsRacing() bool   { return s.State == Running }
func (s *Snapshot) IsFinished() bool { return s.State == Finished }

// Leader returns the name of the driver in first position
func (s *Snapshot) Leader() string {
	if len(s.Standings) == 0 {
		return ""
	}
	return s.Standings[0].DriverName
}

// snapshot copies the current state. The caller must hold the lock.
func (e *Engine) snapshot() *Snapshot {
	return &Snapshot{
		State:           e.state,
		TrackName:       e.track.Name,
		CurrentLap:      e.currentLap,
		TotalLaps:       e.track.Laps,
		Standings:       slices.Clone(e.standings),
		EventLog:        e.events.list(),
		Weather:         e.weather,
		SafetyCar:       e.safetyCar,
		CumulativeTimes: maps.Clone(e.cumulative),
		Penalties:       maps.Clone(e.penalties),
	}
}
