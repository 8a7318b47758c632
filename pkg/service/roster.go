//nolint:whitespace // can't make both editor and linter happy
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/mpapenbr/racesim-manager-go/log"
	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository"
	carrepos "github.com/mpapenbr/racesim-manager-go/pkg/repository/car"
	driverrepos "github.com/mpapenbr/racesim-manager-go/pkg/repository/driver"
	partrepos "github.com/mpapenbr/racesim-manager-go/pkg/repository/part"
	teamrepos "github.com/mpapenbr/racesim-manager-go/pkg/repository/team"
	trackrepos "github.com/mpapenbr/racesim-manager-go/pkg/repository/track"
	"github.com/mpapenbr/racesim-manager-go/pkg/utils/cache"
	"github.com/mpapenbr/racesim-manager-go/pkg/utils/cache/loadercache"
)

// RosterService manages drivers, teams, cars and tracks.
// Teams are cached, every change of a team's drivers or car invalidates it.
type RosterService struct {
	pool  *pgxpool.Pool
	teams cache.Cache[string, model.Team]
	log   *log.Logger
}

func NewRosterService(pool *pgxpool.Pool) *RosterService {
	s := &RosterService{
		pool: pool,
		log:  log.Default().Named("service.roster"),
	}
	s.teams = loadercache.New(
		loadercache.WithLoader[string, model.Team](func(ctx context.Context, id string) (*model.Team, error) {
			return teamrepos.LoadByID(ctx, s.pool, id)
		}),
		loadercache.WithExpiration[string, model.Team](time.Minute),
		loadercache.WithLogger[string, model.Team](s.log),
	)
	return s
}

func (s *RosterService) Team(ctx context.Context, id string) (*model.Team, error) {
	return s.teams.Get(ctx, id)
}

func (s *RosterService) Teams(ctx context.Context) ([]*model.Team, error) {
	return teamrepos.LoadAll(ctx, s.pool)
}

// AITeams returns the computer controlled teams
func (s *RosterService) AITeams(ctx context.Context) ([]*model.Team, error) {
	all, err := s.Teams(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(t *model.Team, _ int) bool { return t.IsAI() }), nil
}

func (s *RosterService) Track(ctx context.Context, id string) (*model.Track, error) {
	return trackrepos.LoadByID(ctx, s.pool, id)
}

func (s *RosterService) Tracks(ctx context.Context) ([]*model.Track, error) {
	return trackrepos.LoadAll(ctx, s.pool)
}

func (s *RosterService) Drivers(ctx context.Context) ([]*model.Driver, error) {
	return driverrepos.LoadAll(ctx, s.pool)
}

func (s *RosterService) CreateDriver(ctx context.Context, name string, skill int) (
	*model.Driver, error,
) {
	d := &model.Driver{Name: name, Skill: skill}
	if err := driverrepos.Create(ctx, s.pool, d); err != nil {
		return nil, err
	}
	s.log.Info("driver created", log.String("id", d.ID), log.Int("skill", d.Skill))
	return d, nil
}

func (s *RosterService) UpdateDriver(ctx context.Context, d *model.Driver) error {
	if err := driverrepos.Update(ctx, s.pool, d); err != nil {
		return err
	}
	s.teams.InvalidateAll(ctx)
	return nil
}

// DeleteDriver fails with repository.ErrDriverAssigned while the driver is in a team
func (s *RosterService) DeleteDriver(ctx context.Context, id string) error {
	return driverrepos.DeleteByID(ctx, s.pool, id)
}

func (s *RosterService) AssignDriver(ctx context.Context, driverID, teamID string) error {
	return s.changeTeams(ctx, func(tx pgx.Tx) ([]string, error) {
		d, err := driverrepos.LoadByID(ctx, tx, driverID)
		if err != nil {
			return nil, err
		}
		return []string{d.TeamID, teamID},
			driverrepos.AssignToTeam(ctx, tx, driverID, teamID)
	})
}

func (s *RosterService) ReleaseDriver(ctx context.Context, driverID string) error {
	return s.changeTeams(ctx, func(tx pgx.Tx) ([]string, error) {
		d, err := driverrepos.LoadByID(ctx, tx, driverID)
		if err != nil {
			return nil, err
		}
		return []string{d.TeamID}, driverrepos.RemoveFromTeam(ctx, tx, driverID)
	})
}

// MountPart puts a part into the car of the team, an empty partID removes it.
func (s *RosterService) MountPart(
	ctx context.Context,
	teamID string,
	kind model.PartKind,
	partID string,
) error {
	t, err := s.Team(ctx, teamID)
	if err != nil {
		return err
	}
	if t.Car == nil {
		return fmt.Errorf("team %s has no car: %w", teamID, repository.ErrNotFound)
	}
	if err := carrepos.MountPart(ctx, s.pool, t.Car.ID, kind, partID); err != nil {
		return err
	}
	// cars may be shared between teams
	s.teams.InvalidateAll(ctx)
	return nil
}

func (s *RosterService) Parts(ctx context.Context, kind model.PartKind) (
	[]*model.CarPart, error,
) {
	return partrepos.LoadByKind(ctx, s.pool, kind)
}

// changeTeams runs fn in a transaction and invalidates the returned team ids
func (s *RosterService) changeTeams(
	ctx context.Context,
	fn func(tx pgx.Tx) ([]string, error),
) error {
	var teamIDs []string
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		teamIDs, err = fn(tx)
		return err
	})
	if err != nil {
		return err
	}
	for _, id := range lo.Compact(teamIDs) {
		s.teams.Invalidate(ctx, id)
	}
	return nil
}
