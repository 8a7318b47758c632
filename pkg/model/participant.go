package model

// Participant is a fully resolved race entry.
// The car may be nil, all car related values fall back to NeutralPerformance.
type Participant struct {
	DriverName  string `json:"driverName"`
	TeamName    string `json:"teamName"`
	DriverSkill int    `json:"driverSkill"`
	Car         *Car   `json:"car,omitempty"`
}

func (p *Participant) Skill() float64 {
	return float64(ClampRating(p.DriverSkill))
}

func (p *Participant) CarPerformance() float64 {
	if p.Car == nil {
		return NeutralPerformance
	}
	return p.Car.OverallPerformance()
}

func (p *Participant) EnginePerformance() float64 {
	return p.Car.PartPerformance(PartEngine)
}

func (p *Participant) AeroPerformance() float64 {
	return p.Car.PartPerformance(PartAerodynamics)
}

// ParticipantsOf lists every driver of the given team as participant
func ParticipantsOf(t *Team) []Participant {
	ret := make([]Participant, 0, len(t.Drivers))
	for _, d := range t.Drivers {
		ret = append(ret, Participant{
			DriverName:  d.Name,
			TeamName:    t.Name,
			DriverSkill: d.Skill,
			Car:         t.Car,
		})
	}
	return ret
}
