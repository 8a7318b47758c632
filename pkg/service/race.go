package service

import (
	"context"
	"fmt"

	"github.com/mpapenbr/racesim-manager-go/log"
	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/sim"
	"github.com/mpapenbr/racesim-manager-go/pkg/store"
)

// Roster provides the data a race is set up from
type Roster interface {
	Team(ctx context.Context, id string) (*model.Team, error)
	AITeams(ctx context.Context) ([]*model.Team, error)
	Track(ctx context.Context, id string) (*model.Track, error)
}

var _ Roster = (*RosterService)(nil)

type (
	RaceOption  func(*RaceService)
	RaceService struct {
		roster     Roster
		history    store.HistoryStore
		engineOpts []sim.Option
		log        *log.Logger
	}
)

func WithRoster(r Roster) RaceOption {
	return func(s *RaceService) {
		s.roster = r
	}
}

// WithHistory sets the store finished races are appended to
func WithHistory(h store.HistoryStore) RaceOption {
	return func(s *RaceService) {
		s.history = h
	}
}

// WithEngineOptions are passed to every engine created by the service
func WithEngineOptions(opts ...sim.Option) RaceOption {
	return func(s *RaceService) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

func WithLogger(l *log.Logger) RaceOption {
	return func(s *RaceService) {
		s.log = l
	}
}

func NewRaceService(opts ...RaceOption) *RaceService {
	s := &RaceService{log: log.Default().Named("service.race")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Setup resolves the ids against the roster. Without AI team ids all AI
// teams of the roster take part.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *RaceService) Setup(
	ctx context.Context,
	trackID, playerTeamID string,
	aiTeamIDs []string,
	weather model.WeatherCondition,
) (*RaceSetup, error) {
	if s.roster == nil {
		return nil, fmt.Errorf("%w: no roster configured", ErrInvalidSetup)
	}
	setup := &RaceSetup{Weather: weather}
	var err error
	if setup.Track, err = s.roster.Track(ctx, trackID); err != nil {
		return nil, err
	}
	if setup.PlayerTeam, err = s.roster.Team(ctx, playerTeamID); err != nil {
		return nil, err
	}
	if len(aiTeamIDs) == 0 {
		if setup.AITeams, err = s.roster.AITeams(ctx); err != nil {
			return nil, err
		}
	}
	for _, id := range aiTeamIDs {
		t, err := s.roster.Team(ctx, id)
		if err != nil {
			return nil, err
		}
		setup.AITeams = append(setup.AITeams, t)
	}
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	return setup, nil
}

// NewRace creates an engine for the setup. The race is not started yet.
// The result is appended to the history once the race is finished.
func (s *RaceService) NewRace(setup *RaceSetup, opts ...sim.Option) (*sim.Engine, error) {
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	engineOpts := append([]sim.Option{}, s.engineOpts...)
	engineOpts = append(engineOpts, opts...)
	if s.history != nil {
		engineOpts = append(engineOpts, sim.WithResultHandler(s.record))
	}
	e, err := sim.NewEngine(setup.Participants(), *setup.Track, setup.Weather, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
	}
	s.log.Info("race created",
		log.String("track", setup.Track.Name),
		log.String("player", setup.PlayerTeam.Name),
		log.Int("aiTeams", len(setup.AITeams)))
	return e, nil
}

// History returns all finished races, oldest first
func (s *RaceService) History(ctx context.Context) ([]*model.RaceResult, error) {
	if s.history == nil {
		return []*model.RaceResult{}, nil
	}
	return s.history.LoadAll(ctx)
}

func (s *RaceService) record(res *model.RaceResult) {
	if err := s.history.Append(context.Background(), res); err != nil {
		s.log.Error("could not store race result",
			log.String("id", res.ID.String()),
			log.ErrorField(err))
		return
	}
	s.log.Info("race result stored",
		log.String("id", res.ID.String()),
		log.String("track", res.TrackName))
}
