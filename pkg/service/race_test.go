package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository"
	"github.com/mpapenbr/racesim-manager-go/pkg/sim"
	"github.com/mpapenbr/racesim-manager-go/pkg/store/memory"
	"github.com/mpapenbr/racesim-manager-go/testsupport/basedata"
)

type fakeRoster struct {
	teams  map[string]*model.Team
	tracks map[string]*model.Track
}

func newFakeRoster() *fakeRoster {
	r := &fakeRoster{
		teams:  map[string]*model.Team{},
		tracks: map[string]*model.Track{"monza": basedata.SampleTrack()},
	}
	for _, t := range basedata.SampleTeams() {
		r.teams[t.ID] = t
	}
	return r
}

func (r *fakeRoster) Team(_ context.Context, id string) (*model.Team, error) {
	if t, ok := r.teams[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("team %s: %w", id, repository.ErrNotFound)
}

func (r *fakeRoster) AITeams(_ context.Context) ([]*model.Team, error) {
	ret := []*model.Team{}
	for _, t := range r.teams {
		if t.IsAI() {
			ret = append(ret, t)
		}
	}
	return ret, nil
}

func (r *fakeRoster) Track(_ context.Context, id string) (*model.Track, error) {
	if t, ok := r.tracks[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("track %s: %w", id, repository.ErrNotFound)
}

func TestSetup(t *testing.T) {
	ctx := context.Background()
	s := NewRaceService(WithRoster(newFakeRoster()))

	setup, err := s.Setup(ctx, "monza", basedata.PlayerTeamID, nil, model.WeatherDry)
	require.NoError(t, err)
	assert.Equal(t, "Monza", setup.Track.Name)
	require.Len(t, setup.AITeams, 1)
	assert.Equal(t, basedata.AITeamID, setup.AITeams[0].ID)

	_, err = s.Setup(ctx, "spa", basedata.PlayerTeamID, nil, model.WeatherDry)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = s.Setup(ctx, "monza", basedata.PlayerTeamID, []string{"ai-unknown"},
		model.WeatherDry)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = NewRaceService().Setup(ctx, "monza", basedata.PlayerTeamID, nil, model.WeatherDry)
	assert.ErrorIs(t, err, ErrInvalidSetup)
}

func TestRaceIsRecorded(t *testing.T) {
	ctx := context.Background()
	history := memory.New()
	s := NewRaceService(
		WithRoster(newFakeRoster()),
		WithHistory(history),
		WithEngineOptions(sim.WithTickInterval(time.Millisecond)),
	)
	setup, err := s.Setup(ctx, "monza", basedata.PlayerTeamID, nil, model.WeatherLightRain)
	require.NoError(t, err)
	e, err := s.NewRace(setup)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, model.WeatherLightRain, e.Snapshot().Weather.Condition)
	e.StartRace()
	select {
	case <-e.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("race did not finish")
	}

	all, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, e.Result().ID, all[0].ID)
	assert.Equal(t, "Monza", all[0].TrackName)
	require.Len(t, all[0].Results, 4)
	assert.Equal(t, "Alice", all[0].Results[0].DriverName)
}

func TestNewRaceRejectsInvalidSetup(t *testing.T) {
	s := NewRaceService()
	setup := validSetup()
	setup.AITeams[0].Drivers[0].Name = "Alice" // same name as the player's driver
	_, err := s.NewRace(setup)
	require.ErrorIs(t, err, ErrInvalidSetup)
	assert.True(t, errors.Is(err, sim.ErrDuplicateDriver))

	setup = validSetup()
	setup.AITeams = nil
	_, err = s.NewRace(setup)
	assert.ErrorIs(t, err, ErrInvalidSetup)

	all, err := s.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
