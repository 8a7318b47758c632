//nolint:thelper // ok for tests
package sim

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
)

// carWithParts creates a car with every part at the given performance
func carWithParts(perf int) *model.Car {
	parts := make(map[model.PartKind]*model.CarPart)
	for _, kind := range model.PartKinds {
		parts[kind] = &model.CarPart{ID: string(kind), Kind: kind, Performance: perf}
	}
	return &model.Car{ID: "car", Name: "car", Parts: parts}
}

func sampleParticipants() []model.Participant {
	return []model.Participant{
		{DriverName: "A", TeamName: "Team A", DriverSkill: 95, Car: carWithParts(93)},
		{DriverName: "B", TeamName: "Team B", DriverSkill: 80, Car: carWithParts(70)},
		{DriverName: "C", TeamName: "Team C", DriverSkill: 60, Car: carWithParts(50)},
	}
}

func sampleTrack(laps int) model.Track {
	return model.Track{ID: "monza", Name: "Monza", Laps: laps, Characteristic: model.TrackSpeed}
}

//nolint:whitespace // can't make both editor and linter happy
func newTestEngine(
	t *testing.T,
	participants []model.Participant,
	track model.Track,
	opts ...Option,
) *Engine {
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	e, err := NewEngine(participants, track, model.WeatherDry, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

// beginManual switches the engine to running without starting the lap loop.
// Laps are driven by the test via runLap.
func beginManual(t *testing.T, e *Engine) {
	e.mu.Lock()
	defer e.mu.Unlock()
	require.True(t, e.begin())
}

func runLap(t *testing.T, e *Engine, lap int) {
	require.True(t, e.completeLap(context.Background(), lap))
}
