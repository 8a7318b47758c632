package sim

import "github.com/mpapenbr/racesim-manager-go/pkg/model"

const (
	BaseLapTime              = 90.0
	MaxDriverBonus           = 0.10
	MaxCarBonus              = 0.05
	MaxTrackBonusSpecialized = 0.05
	MaxTrackBonusBalanced    = 0.03
	SafetyCarSlowdown        = 1.5

	CrashPenalty    = 20.0
	PitStopPenalty  = 3.0
	SafetyCarMinLap = 3
	SafetyCarMaxLap = 5
)

// LapTime computes the time in seconds the participant needs for one lap
// under the given conditions.
//
//	lapTime = 90 * (1 - (driver+car+track bonus)) * (1 + (1-grip)) * safetyCar
//
// Driver bonus is up to 10%, car bonus up to 5%. The track bonus rewards the
// engine (SPEED) or the aero package (TECHNICAL) with up to 5%, on BALANCED
// tracks the whole car counts but only up to 3%.
func LapTime(
	p *model.Participant,
	track model.TrackCharacteristic,
	weather model.WeatherState,
	safetyCar model.SafetyCarState,
) float64 {
	driverBonus := p.Skill() / 100 * MaxDriverBonus
	carBonus := p.CarPerformance() / 100 * MaxCarBonus
	trackBonus := TrackBonus(p, track)
	weatherPenalty := 1 - weather.GripMultiplier
	safetyMultiplier := 1.0
	if safetyCar.IsActive {
		safetyMultiplier = SafetyCarSlowdown
	}
	return BaseLapTime *
		(1 - (driverBonus + carBonus + trackBonus)) *
		(1 + weatherPenalty) *
		safetyMultiplier
}

func TrackBonus(p *model.Participant, track model.TrackCharacteristic) float64 {
	switch track {
	case model.TrackSpeed:
		return p.EnginePerformance() / 100 * MaxTrackBonusSpecialized
	case model.TrackTechnical:
		return p.AeroPerformance() / 100 * MaxTrackBonusSpecialized
	case model.TrackBalanced:
		return p.CarPerformance() / 100 * MaxTrackBonusBalanced
	default:
		return 0
	}
}
