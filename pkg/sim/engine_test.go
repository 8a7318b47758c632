//nolint:funlen,thelper // ok for tests
package sim

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
)

func messages(s *Snapshot) []string {
	return lo.Map(s.EventLog, func(e model.RaceEventLogEntry, _ int) string {
		return e.Message
	})
}

func assertValidStandings(t *testing.T, s *Snapshot) {
	require.NotEmpty(t, s.Standings)
	assert.True(t, slices.IsSortedFunc(s.Standings, func(a, b model.RaceStanding) int {
		return cmp.Compare(a.TotalTime, b.TotalTime)
	}), "standings must be sorted by total time")
	for i, st := range s.Standings {
		assert.Equal(t, i+1, st.Position)
		assert.InDelta(t, s.CumulativeTimes[st.DriverName]+s.Penalties[st.DriverName],
			st.TotalTime, 1e-9)
		if i == 0 {
			assert.Equal(t, "Leader", st.Gap)
		} else {
			assert.Equal(t, formatGap(st.TotalTime-s.Standings[0].TotalTime), st.Gap)
		}
	}
}

func TestNewEngineErrors(t *testing.T) {
	_, err := NewEngine(nil, sampleTrack(3), model.WeatherDry)
	assert.ErrorIs(t, err, ErrNoParticipants)

	_, err = NewEngine(sampleParticipants(), sampleTrack(0), model.WeatherDry)
	assert.ErrorIs(t, err, ErrInvalidLapCount)

	dup := append(sampleParticipants(), model.Participant{DriverName: "A"})
	_, err = NewEngine(dup, sampleTrack(3), model.WeatherDry)
	assert.ErrorIs(t, err, ErrDuplicateDriver)
}

func TestEngineInitialState(t *testing.T) {
	e := newTestEngine(t, sampleParticipants(), sampleTrack(5))
	s := e.Snapshot()

	assert.Equal(t, NotStarted, s.State)
	assert.False(t, s.IsRacing())
	assert.False(t, s.IsFinished())
	assert.Equal(t, 0, s.CurrentLap)
	assert.Equal(t, 5, s.TotalLaps)
	assert.Empty(t, s.EventLog)
	assert.Equal(t, model.NewWeatherState(model.WeatherDry), s.Weather)
	assert.Equal(t, model.SafetyCarState{}, s.SafetyCar)
	assert.Equal(t, map[string]float64{"A": 0, "B": 0, "C": 0}, s.CumulativeTimes)
	assert.Equal(t, []string{"A", "B", "C"},
		lo.Map(s.Standings, func(st model.RaceStanding, _ int) string { return st.DriverName }))
	assertValidStandings(t, s)
}

func TestEngineInvalidInitialWeatherFallsBackToDry(t *testing.T) {
	e, err := NewEngine(sampleParticipants(), sampleTrack(3), "SNOW")
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, model.WeatherDry, e.Snapshot().Weather.Condition)
}

func TestEngineStartRaceIsIdempotent(t *testing.T) {
	e := newTestEngine(t, sampleParticipants(), sampleTrack(2))
	beginManual(t, e)
	running := e.Snapshot()
	assert.Equal(t, []string{"Race started at Monza!"}, messages(running))

	e.StartRace()
	if diff := gocmp.Diff(running, e.Snapshot()); diff != "" {
		t.Errorf("StartRace while running changed state (-want +got):\n%s", diff)
	}
	assert.False(t, e.looping, "no lap loop must be started")

	runLap(t, e, 1)
	runLap(t, e, 2)
	require.NotNil(t, e.finish())
	finished := e.Snapshot()
	assert.True(t, finished.IsFinished())

	e.StartRace()
	if diff := gocmp.Diff(finished, e.Snapshot()); diff != "" {
		t.Errorf("StartRace after finish changed state (-want +got):\n%s", diff)
	}
}

func TestEngineSingleLapExample(t *testing.T) {
	participants := []model.Participant{
		{DriverName: "A", TeamName: "Team A", DriverSkill: 95, Car: carWithParts(93)},
		{DriverName: "B", TeamName: "Team B", DriverSkill: 80, Car: carWithParts(70)},
	}
	e := newTestEngine(t, participants, sampleTrack(1))
	beginManual(t, e)
	runLap(t, e, 1)
	require.NotNil(t, e.finish())

	s := e.Snapshot()
	assert.InDelta(t, 90*(1-0.188), s.CumulativeTimes["A"], 1e-9)
	assert.InDelta(t, 90*(1-0.15), s.CumulativeTimes["B"], 1e-9)
	require.Len(t, s.Standings, 2)
	assert.Equal(t, "A", s.Standings[0].DriverName)
	assert.Equal(t, "Leader", s.Standings[0].Gap)
	assert.Equal(t, "+3.4s", s.Standings[1].Gap)
	assert.Equal(t, "Race finished! Winner: A", messages(s)[len(s.EventLog)-1])
}

func TestEngineRunsLapsOnTicker(t *testing.T) {
	raceDate := time.Date(2024, 4, 28, 11, 10, 12, 0, time.UTC)
	results := make(chan *model.RaceResult, 1)
	e := newTestEngine(t, sampleParticipants(), sampleTrack(3),
		WithTickInterval(time.Millisecond),
		WithClock(func() time.Time { return raceDate }),
		WithResultHandler(func(res *model.RaceResult) { results <- res }),
	)
	e.StartRace()
	select {
	case <-e.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("race did not finish in time")
	}

	s := e.Snapshot()
	assert.True(t, s.IsFinished())
	assert.Equal(t, 3, s.CurrentLap)
	assertValidStandings(t, s)
	msgs := messages(s)
	assert.Equal(t, "Race started at Monza!", msgs[0])
	assert.Equal(t, "Lap 3/3 completed", msgs[len(msgs)-2])
	assert.Equal(t, "Race finished! Winner: A", msgs[len(msgs)-1])

	var res *model.RaceResult
	select {
	case res = <-results:
	case <-time.After(time.Second):
		t.Fatal("no result received")
	}
	assert.Equal(t, res, e.Result())
	assert.Equal(t, "Monza", res.TrackName)
	assert.Equal(t, raceDate, res.RaceDate)
	assert.False(t, res.ID.IsNil())
	require.Len(t, res.Results, 3)
	for i, r := range res.Results {
		assert.Equal(t, i+1, r.Position)
		assert.Equal(t, s.Standings[i].DriverName, r.DriverName)
		assert.Equal(t, s.Standings[i].TeamName, r.TeamName)
		assert.InDelta(t, s.Standings[i].TotalTime, r.TotalTime, 1e-9)
	}
}

func TestEngineCloseStopsLapLoop(t *testing.T) {
	e := newTestEngine(t, sampleParticipants(), sampleTrack(3),
		WithTickInterval(time.Hour))
	e.StartRace()
	e.Close()

	select {
	case <-e.Done():
	default:
		t.Fatal("lap loop still running after Close")
	}
	before := e.Snapshot()
	assert.Equal(t, 0, before.CurrentLap)

	e.TriggerCrash("A")
	e.TriggerSafetyCar()
	e.TriggerWeatherChange(model.WeatherHeavyRain)
	assert.False(t, e.completeLap(context.Background(), 1))
	if diff := gocmp.Diff(before, e.Snapshot()); diff != "" {
		t.Errorf("state changed after Close (-want +got):\n%s", diff)
	}
	e.Close() // second close is fine
}

func TestEngineCloseFromResultHandler(t *testing.T) {
	var e *Engine
	closed := make(chan struct{})
	e = newTestEngine(t, sampleParticipants(), sampleTrack(2),
		WithTickInterval(time.Millisecond),
		WithResultHandler(func(*model.RaceResult) {
			e.Close()
			close(closed)
		}),
	)
	e.StartRace()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked inside result handler")
	}
	select {
	case <-e.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("lap loop did not terminate")
	}
	assert.True(t, e.Snapshot().IsFinished())
	require.NotNil(t, e.Result())
}

func TestEngineCloseBeforeStart(t *testing.T) {
	e := newTestEngine(t, sampleParticipants(), sampleTrack(3))
	e.Close()
	e.StartRace()
	assert.Equal(t, NotStarted, e.Snapshot().State)
	<-e.Done()
}

func TestEnginePenaltiesStack(t *testing.T) {
	e := newTestEngine(t, sampleParticipants(), sampleTrack(10))
	beginManual(t, e)

	e.TriggerCrash("B")
	e.TriggerCrash("B")
	e.TriggerPitStop("C")

	s := e.Snapshot()
	assert.InDelta(t, 40.0, s.Penalties["B"], 1e-9)
	assert.InDelta(t, 3.0, s.Penalties["C"], 1e-9)
	assert.Equal(t, []string{
		"Race started at Monza!",
		"B crashed! +20s penalty",
		"B crashed! +20s penalty",
		"C pits (+3s)",
	}, messages(s))
	// recomputed without waiting for the next lap
	assert.Equal(t, []string{"A", "C", "B"},
		lo.Map(s.Standings, func(st model.RaceStanding, _ int) string { return st.DriverName }))
	assert.Equal(t, "+40.0s", s.Standings[2].Gap)
	assertValidStandings(t, s)
}

func TestEngineIgnoresInvalidTriggers(t *testing.T) {
	e := newTestEngine(t, sampleParticipants(), sampleTrack(10))

	// not running yet
	e.TriggerCrash("A")
	e.TriggerPitStop("A")
	e.TriggerSafetyCar()
	e.TriggerWeatherChange(model.WeatherHeavyRain)
	s := e.Snapshot()
	assert.Empty(t, s.Penalties)
	assert.Empty(t, s.EventLog)
	assert.False(t, s.SafetyCar.IsActive)
	assert.Equal(t, model.WeatherDry, s.Weather.Condition)

	beginManual(t, e)
	e.TriggerCrash()
	e.TriggerPitStop("nobody")
	e.TriggerWeatherChange("FOG")
	s = e.Snapshot()
	assert.Empty(t, s.Penalties)
	assert.Len(t, s.EventLog, 1)

	e.TriggerCrash("A", "A", "nobody")
	s = e.Snapshot()
	assert.Equal(t, map[string]float64{"A": 20.0}, s.Penalties)
	assert.Equal(t, []string{"Race started at Monza!", "A crashed! +20s penalty"}, messages(s))
}

func TestEngineWeatherChangeIsNotRetroactive(t *testing.T) {
	participants := sampleParticipants()
	e := newTestEngine(t, participants, sampleTrack(10))
	beginManual(t, e)
	runLap(t, e, 1)
	runLap(t, e, 2)

	before := e.Snapshot().CumulativeTimes
	e.TriggerWeatherChange(model.WeatherLightRain)
	s := e.Snapshot()
	assert.Equal(t, before, s.CumulativeTimes)
	assert.Equal(t, model.WeatherState{Condition: model.WeatherLightRain, GripMultiplier: 0.9},
		s.Weather)
	last := s.EventLog[len(s.EventLog)-1]
	assert.Equal(t, "Weather: LIGHT RAIN! Grip: 90%", last.Message)
	assert.Equal(t, model.EventWeatherLightRain, last.Category)
	assert.Equal(t, 2, last.Lap)

	runLap(t, e, 3)
	after := e.Snapshot().CumulativeTimes
	dry := model.NewWeatherState(model.WeatherDry)
	rain := model.NewWeatherState(model.WeatherLightRain)
	for i := range participants {
		p := &participants[i]
		dryLap := LapTime(p, model.TrackSpeed, dry, model.SafetyCarState{})
		rainLap := LapTime(p, model.TrackSpeed, rain, model.SafetyCarState{})
		assert.InDelta(t, 2*dryLap, before[p.DriverName], 1e-9)
		assert.InDelta(t, rainLap, after[p.DriverName]-before[p.DriverName], 1e-9)
	}
}

func TestEngineSafetyCarLifecycle(t *testing.T) {
	participants := sampleParticipants()
	e := newTestEngine(t, participants, sampleTrack(20))
	beginManual(t, e)

	e.TriggerSafetyCar()
	s := e.Snapshot()
	require.True(t, s.SafetyCar.IsActive)
	duration := s.SafetyCar.LapsRemaining
	assert.GreaterOrEqual(t, duration, SafetyCarMinLap)
	assert.LessOrEqual(t, duration, SafetyCarMaxLap)
	assert.Contains(t, messages(s), fmt.Sprintf("SAFETY CAR deployed for %d laps!", duration))

	e.TriggerSafetyCar()
	assert.Equal(t, s.SafetyCar, e.Snapshot().SafetyCar, "second deployment is ignored")
	assert.Len(t, e.Snapshot().EventLog, 2)

	p := &participants[0]
	scLap := LapTime(p, model.TrackSpeed, model.NewWeatherState(model.WeatherDry),
		model.SafetyCarState{IsActive: true})
	for lap := 1; lap <= duration; lap++ {
		prev := e.Snapshot().CumulativeTimes[p.DriverName]
		runLap(t, e, lap)
		s = e.Snapshot()
		assert.InDelta(t, scLap, s.CumulativeTimes[p.DriverName]-prev, 1e-9)
		assert.GreaterOrEqual(t, s.SafetyCar.LapsRemaining, 0)
		if lap < duration {
			assert.True(t, s.SafetyCar.IsActive)
			assert.Equal(t, duration-lap, s.SafetyCar.LapsRemaining)
		}
	}
	assert.Equal(t, model.SafetyCarState{}, s.SafetyCar)
	assert.Equal(t, "Safety car returns to pits", messages(s)[len(s.EventLog)-1])

	// next lap runs at normal pace again
	prev := s.CumulativeTimes[p.DriverName]
	runLap(t, e, duration+1)
	assert.InDelta(t, scLap/SafetyCarSlowdown,
		e.Snapshot().CumulativeTimes[p.DriverName]-prev, 1e-9)
}

func TestEngineSafetyCarDuration(t *testing.T) {
	e := newTestEngine(t, sampleParticipants(), sampleTrack(500))
	beginManual(t, e)
	seen := map[int]int{}
	lap := 0
	for range 40 {
		e.TriggerSafetyCar()
		n := e.Snapshot().SafetyCar.LapsRemaining
		require.GreaterOrEqual(t, n, SafetyCarMinLap)
		require.LessOrEqual(t, n, SafetyCarMaxLap)
		seen[n]++
		for e.Snapshot().SafetyCar.IsActive {
			lap++
			runLap(t, e, lap)
		}
	}
	assert.Len(t, seen, 3, "every duration from 3 to 5 should be drawn")
}

func TestEngineEventLogIsBounded(t *testing.T) {
	e := newTestEngine(t, sampleParticipants(), sampleTrack(10))
	beginManual(t, e)
	for range 12 {
		e.TriggerPitStop("C")
	}
	s := e.Snapshot()
	require.Len(t, s.EventLog, MaxEventLogEntries)
	for _, entry := range s.EventLog {
		assert.Equal(t, model.EventPitStop, entry.Category)
	}
	assert.InDelta(t, 36.0, s.Penalties["C"], 1e-9)
}

func TestEngineLapCompleteEvents(t *testing.T) {
	e := newTestEngine(t, sampleParticipants(), sampleTrack(12))
	beginManual(t, e)
	for lap := 1; lap <= 12; lap++ {
		runLap(t, e, lap)
	}
	lapEvents := lo.Filter(e.Snapshot().EventLog, func(entry model.RaceEventLogEntry, _ int) bool {
		return entry.Category == model.EventLapComplete
	})
	assert.Equal(t, []model.RaceEventLogEntry{
		{Lap: 10, Category: model.EventLapComplete, Message: "Lap 10/12 completed"},
		{Lap: 12, Category: model.EventLapComplete, Message: "Lap 12/12 completed"},
	}, lapEvents)
}

func TestEngineDetectsOvertakeAfterCrash(t *testing.T) {
	participants := []model.Participant{
		{DriverName: "A", TeamName: "Team A", DriverSkill: 95, Car: carWithParts(93)},
		{DriverName: "B", TeamName: "Team B", DriverSkill: 80, Car: carWithParts(70)},
	}
	e := newTestEngine(t, participants, sampleTrack(8))
	beginManual(t, e)
	e.TriggerCrash("A")
	assert.Equal(t, "B", e.Snapshot().Leader())

	// A is 3.42s per lap faster and passes B on lap 6
	for lap := 1; lap <= 6; lap++ {
		runLap(t, e, lap)
		if lap < 6 {
			assert.Equal(t, "B", e.Snapshot().Leader(), "lap %d", lap)
		}
	}
	s := e.Snapshot()
	assert.Equal(t, "A", s.Leader())
	last := s.EventLog[len(s.EventLog)-1]
	assert.Equal(t, model.RaceEventLogEntry{
		Lap: 6, Category: model.EventOvertake, Message: "A overtakes B!",
	}, last)
}

func TestEngineStandingsStayConsistent(t *testing.T) {
	participants := make([]model.Participant, 0, 6)
	for i, name := range []string{"P1", "P2", "P3", "P4", "P5", "P6"} {
		participants = append(participants, model.Participant{
			DriverName: name, TeamName: "T" + name, DriverSkill: 50 + i*9,
			Car: carWithParts(95 - i*8),
		})
	}
	e := newTestEngine(t, participants, sampleTrack(30))
	beginManual(t, e)
	r := rand.New(rand.NewPCG(7, 11))
	weathers := []model.WeatherCondition{
		model.WeatherDry, model.WeatherLightRain, model.WeatherHeavyRain,
	}
	for lap := 1; lap <= 30; lap++ {
		name := participants[r.IntN(len(participants))].DriverName
		switch r.IntN(5) {
		case 0:
			e.TriggerCrash(name)
		case 1:
			e.TriggerPitStop(name)
		case 2:
			e.TriggerSafetyCar()
		case 3:
			e.TriggerWeatherChange(weathers[r.IntN(len(weathers))])
		}
		assertValidStandings(t, e.Snapshot())
		runLap(t, e, lap)
		s := e.Snapshot()
		assertValidStandings(t, s)
		assert.LessOrEqual(t, len(s.EventLog), MaxEventLogEntries)
		assert.GreaterOrEqual(t, s.SafetyCar.LapsRemaining, 0)
		for _, p := range s.Penalties {
			assert.GreaterOrEqual(t, p, 0.0)
		}
	}
}

func TestEngineSnapshotIsCopy(t *testing.T) {
	e := newTestEngine(t, sampleParticipants(), sampleTrack(3))
	beginManual(t, e)
	s := e.Snapshot()
	s.Standings[0].DriverName = "changed"
	s.CumulativeTimes["A"] = 999
	s.EventLog[0].Message = "changed"

	fresh := e.Snapshot()
	assert.Equal(t, "A", fresh.Standings[0].DriverName)
	assert.InDelta(t, 0.0, fresh.CumulativeTimes["A"], 1e-9)
	assert.Equal(t, "Race started at Monza!", fresh.EventLog[0].Message)
}

func TestEngineSubscribe(t *testing.T) {
	e, err := NewEngine(sampleParticipants(), sampleTrack(3), model.WeatherDry)
	require.NoError(t, err)
	ch := e.Subscribe()

	waitFor := func(cond func(s *Snapshot) bool) {
		timeout := time.After(2 * time.Second)
		for {
			select {
			case s, ok := <-ch:
				require.True(t, ok, "channel closed unexpectedly")
				if cond(s) {
					return
				}
			case <-timeout:
				t.Fatal("expected snapshot not received")
			}
		}
	}
	waitFor(func(s *Snapshot) bool { return s.State == NotStarted })
	beginManual(t, e)
	waitFor(func(s *Snapshot) bool { return s.IsRacing() })
	runLap(t, e, 1)
	waitFor(func(s *Snapshot) bool { return s.CurrentLap == 1 })

	e.Close()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("subscription not closed")
		}
	}
}
