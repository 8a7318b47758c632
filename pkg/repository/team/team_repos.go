//nolint:whitespace // can't make both editor and linter happy
package team

import (
	"context"
	"fmt"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository/car"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository/driver"
)

// Create stores the team row. Car and drivers are linked separately
// (car.Create, driver.AssignToTeam).
func Create(ctx context.Context, conn repository.Querier, t *model.Team) error {
	var carID *string
	if t.Car != nil {
		carID = &t.Car.ID
	}
	_, err := conn.Exec(ctx,
		"insert into team (id, name, car_id) values ($1,$2,$3)",
		t.ID, t.Name, carID)
	return err
}

func SetCar(ctx context.Context, conn repository.Querier, teamID, carID string) error {
	var value *string
	if carID != "" {
		value = &carID
	}
	cmdTag, err := conn.Exec(ctx, "update team set car_id=$1 where id=$2", value, teamID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("team %s: %w", teamID, repository.ErrNotFound)
	}
	return nil
}

// LoadByID loads the team with its car (parts included) and drivers
func LoadByID(ctx context.Context, conn repository.Querier, id string) (*model.Team, error) {
	var t model.Team
	var carID *string
	if err := conn.QueryRow(ctx,
		"select id, name, car_id from team where id=$1", id).
		Scan(&t.ID, &t.Name, &carID); err != nil {
		return nil, fmt.Errorf("team %s: %w", id, repository.NotFound(err))
	}
	if err := complete(ctx, conn, &t, carID); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadAll loads all teams ordered by id
func LoadAll(ctx context.Context, conn repository.Querier) ([]*model.Team, error) {
	rows, err := conn.Query(ctx, "select id, name, car_id from team order by id")
	if err != nil {
		return nil, err
	}
	type entry struct {
		team  *model.Team
		carID *string
	}
	entries := make([]entry, 0)
	for rows.Next() {
		e := entry{team: &model.Team{}}
		if err := rows.Scan(&e.team.ID, &e.team.Name, &e.carID); err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// rows must be closed before issuing further queries on the same connection
	ret := make([]*model.Team, 0, len(entries))
	for _, e := range entries {
		if err := complete(ctx, conn, e.team, e.carID); err != nil {
			return nil, err
		}
		ret = append(ret, e.team)
	}
	return ret, nil
}

func DeleteByID(ctx context.Context, conn repository.Querier, id string) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from team where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func complete(ctx context.Context, conn repository.Querier, t *model.Team, carID *string) error {
	if carID != nil {
		c, err := car.LoadByID(ctx, conn, *carID)
		if err != nil {
			return err
		}
		t.Car = c
	}
	drivers, err := driver.LoadByTeam(ctx, conn, t.ID)
	if err != nil {
		return err
	}
	t.Drivers = drivers
	return nil
}
