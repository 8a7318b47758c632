//nolint:funlen // ok for tests
package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
)

func TestLapTime(t *testing.T) {
	dry := model.NewWeatherState(model.WeatherDry)
	noSC := model.SafetyCarState{}
	tests := []struct {
		name      string
		p         model.Participant
		track     model.TrackCharacteristic
		weather   model.WeatherState
		safetyCar model.SafetyCarState
		want      float64
	}{
		{
			name:  "fast driver speed track",
			p:     model.Participant{DriverSkill: 95, Car: carWithParts(93)},
			track: model.TrackSpeed, weather: dry, safetyCar: noSC,
			want: 90 * (1 - (0.095 + 0.0465 + 0.0465)),
		},
		{
			name:  "slower driver speed track",
			p:     model.Participant{DriverSkill: 80, Car: carWithParts(70)},
			track: model.TrackSpeed, weather: dry, safetyCar: noSC,
			want: 76.5,
		},
		{
			name:  "balanced track uses 3 percent of overall performance",
			p:     model.Participant{DriverSkill: 100, Car: carWithParts(100)},
			track: model.TrackBalanced, weather: dry, safetyCar: noSC,
			want: 90 * (1 - (0.10 + 0.05 + 0.03)),
		},
		{
			name:  "light rain",
			p:     model.Participant{DriverSkill: 100, Car: carWithParts(100)},
			track: model.TrackSpeed, weather: model.NewWeatherState(model.WeatherLightRain),
			safetyCar: noSC,
			want:      90 * (1 - 0.2) * 1.1,
		},
		{
			name:  "heavy rain under safety car",
			p:     model.Participant{DriverSkill: 100, Car: carWithParts(100)},
			track: model.TrackSpeed, weather: model.NewWeatherState(model.WeatherHeavyRain),
			safetyCar: model.SafetyCarState{IsActive: true, LapsRemaining: 2},
			want:      90 * (1 - 0.2) * 1.2 * 1.5,
		},
		{
			name:  "missing car counts as neutral",
			p:     model.Participant{DriverSkill: 50},
			track: model.TrackTechnical, weather: dry, safetyCar: noSC,
			want: 90 * (1 - (0.05 + 0.025 + 0.025)),
		},
		{
			name:  "unknown characteristic has no track bonus",
			p:     model.Participant{DriverSkill: 50, Car: carWithParts(50)},
			track: model.TrackCharacteristic("OVAL"), weather: dry, safetyCar: noSC,
			want: 90 * (1 - (0.05 + 0.025)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LapTime(&tt.p, tt.track, tt.weather, tt.safetyCar)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestTrackBonus(t *testing.T) {
	car := &model.Car{Parts: map[model.PartKind]*model.CarPart{
		model.PartEngine:       {Kind: model.PartEngine, Performance: 80},
		model.PartAerodynamics: {Kind: model.PartAerodynamics, Performance: 40},
	}}
	p := &model.Participant{DriverSkill: 50, Car: car}
	overall := 80*0.35 + 40*0.25

	assert.InDelta(t, 0.8*0.05, TrackBonus(p, model.TrackSpeed), 1e-9)
	assert.InDelta(t, 0.4*0.05, TrackBonus(p, model.TrackTechnical), 1e-9)
	assert.InDelta(t, overall/100*0.03, TrackBonus(p, model.TrackBalanced), 1e-9)
	assert.InDelta(t, 0.0, TrackBonus(p, ""), 1e-9)

	noEngine := &model.Participant{Car: &model.Car{}}
	assert.InDelta(t, 0.5*0.05, TrackBonus(noEngine, model.TrackSpeed), 1e-9,
		"missing engine counts as neutral")
}
