package render

import (
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/sim"
)

func sampleSnapshot() *sim.Snapshot {
	return &sim.Snapshot{
		State:      sim.Running,
		TrackName:  "Monza",
		CurrentLap: 3,
		TotalLaps:  12,
		Standings: []model.RaceStanding{
			{Position: 1, DriverName: "Alice", TeamName: "Player Racing", TotalTime: 250.5, Gap: "Leader"},
			{Position: 2, DriverName: "Carla", TeamName: "Rivals", TotalTime: 253.9, Gap: "+3.4s"},
		},
		EventLog: []model.RaceEventLogEntry{
			{Lap: 0, Category: model.EventGreenFlag, Message: "Race started at Monza!"},
			{Lap: 2, Category: model.EventCrash, Message: "Carla crashed! +20s penalty"},
			{Lap: 3, Category: model.EventSafetyCar, Message: "Safety car deployed for 4 laps"},
		},
		Weather:   model.NewWeatherState(model.WeatherLightRain),
		SafetyCar: model.SafetyCarState{IsActive: true, LapsRemaining: 4},
	}
}

func TestRace(t *testing.T) {
	out := New(WithPlain(true)).Race(sampleSnapshot())
	for _, want := range []string{
		"Monza  Lap 3/12",
		"RUNNING",
		"LIGHT RAIN (grip 90%)",
		"SAFETY CAR (4 laps)",
		"Alice", "Player Racing", "+3.4s", "4:13.900",
		"💥 L2   Carla crashed! +20s penalty",
		"Race started at Monza!",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Alice"), strings.Index(out, "Carla"))
}

func TestRaceEvents(t *testing.T) {
	s := sampleSnapshot()
	s.SafetyCar = model.SafetyCarState{}

	out := New(WithPlain(true), WithEvents(true, 1)).Race(s)
	assert.Contains(t, out, "Green flag")
	assert.Contains(t, out, "Safety car deployed")
	assert.NotContains(t, out, "Race started")

	out = New(WithPlain(true), WithEvents(false, 0)).Race(s)
	assert.NotContains(t, out, "Safety car deployed")

	s.EventLog = nil
	assert.Contains(t, New(WithPlain(true)).Race(s), "no events yet")
}

func TestRaceColored(t *testing.T) {
	out := New(WithPlayerTeams("Player Racing")).Race(sampleSnapshot())
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Carla crashed!")
}

func TestResult(t *testing.T) {
	res := &model.RaceResult{
		ID:        uuid.Must(uuid.NewV4()),
		TrackName: "Monza",
		RaceDate:  time.Date(2026, 5, 1, 14, 30, 0, 0, time.UTC),
		Results: []model.ParticipantResult{
			{Position: 1, DriverName: "Alice", TeamName: "Player Racing", TotalTime: 1000},
			{Position: 2, DriverName: "Carla", TeamName: "Rivals", TotalTime: 1012.3},
		},
	}
	r := New(WithPlain(true))

	out := r.Result(res)
	assert.Contains(t, out, "Result Monza (2026-05-01 14:30)")
	assert.Contains(t, out, "Winner")
	assert.Contains(t, out, "+12.3s")
	assert.Contains(t, out, "16:52.300")

	out = r.History([]*model.RaceResult{res, {TrackName: "Spa"}})
	assert.Contains(t, out, res.ID.String())
	assert.Contains(t, out, "Spa")
	assert.Contains(t, out, "-")
}

func TestRoster(t *testing.T) {
	r := New(WithPlain(true))
	car := &model.Car{Name: "PR-01", Parts: map[model.PartKind]*model.CarPart{
		model.PartEngine: {ID: "e1", Kind: model.PartEngine, Name: "V6", Performance: 80},
		model.PartTires:  {ID: "t1", Kind: model.PartTires, Name: "Slick", Performance: 60, Compound: model.CompoundSoft},
	}}
	teams := r.Teams([]*model.Team{
		{ID: "player", Name: "Player Racing", Car: car, Drivers: []*model.Driver{{Name: "Alice"}, {Name: "Bob"}}},
		{ID: "ai-rivals", Name: "Rivals"},
	})
	assert.Contains(t, teams, "Alice, Bob")
	assert.Contains(t, teams, "40.0")
	assert.Contains(t, teams, "ai")

	drivers := r.Drivers([]*model.Driver{{ID: "d1", Name: "Alice", Skill: 90, TeamID: "player"}})
	assert.Contains(t, drivers, "90")
	assert.Contains(t, drivers, "player")

	tracks := r.Tracks([]*model.Track{{ID: "monza", Name: "Monza", Laps: 53, Characteristic: model.TrackSpeed}})
	assert.Contains(t, tracks, "SPEED")

	parts := r.Parts([]*model.CarPart{car.Parts[model.PartEngine], car.Parts[model.PartTires]})
	assert.Contains(t, parts, "SOFT")
	assert.Contains(t, parts, "V6")
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "0:00.000", FormatTime(0))
	assert.Equal(t, "1:30.000", FormatTime(90))
	assert.Equal(t, "1:13.080", FormatTime(73.08))
	assert.Equal(t, "61:01.500", FormatTime(3661.5))
}
