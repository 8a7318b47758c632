//nolint:whitespace // can't make both editor and linter happy
package driver

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository"
)

const selector = "select id, name, skill, coalesce(team_id, '') from driver"

// Create stores a new driver. An empty id is replaced by a generated one.
// The skill is clamped to the valid rating range.
func Create(ctx context.Context, conn repository.Querier, d *model.Driver) error {
	if d.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		d.ID = "driver_" + id.String()
	}
	d.Skill = model.ClampRating(d.Skill)
	_, err := conn.Exec(ctx,
		"insert into driver (id, name, skill) values ($1,$2,$3)",
		d.ID, d.Name, d.Skill)
	return err
}

func Update(ctx context.Context, conn repository.Querier, d *model.Driver) error {
	d.Skill = model.ClampRating(d.Skill)
	cmdTag, err := conn.Exec(ctx,
		"update driver set name=$1, skill=$2 where id=$3",
		d.Name, d.Skill, d.ID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("driver %s: %w", d.ID, repository.ErrNotFound)
	}
	return nil
}

func LoadByID(ctx context.Context, conn repository.Querier, id string) (
	*model.Driver, error,
) {
	row := conn.QueryRow(ctx, selector+" where id=$1", id)
	d, err := scan(row)
	if err != nil {
		return nil, fmt.Errorf("driver %s: %w", id, repository.NotFound(err))
	}
	return d, nil
}

func LoadAll(ctx context.Context, conn repository.Querier) ([]*model.Driver, error) {
	return query(ctx, conn, selector+" order by name")
}

// LoadByTeam returns the drivers of a team ordered by id
func LoadByTeam(ctx context.Context, conn repository.Querier, teamID string) (
	[]*model.Driver, error,
) {
	return query(ctx, conn, selector+" where team_id=$1 order by id", teamID)
}

// DeleteByID removes a driver. Drivers assigned to a team cannot be deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id string) error {
	d, err := LoadByID(ctx, conn, id)
	if err != nil {
		return err
	}
	if d.TeamID != "" {
		return fmt.Errorf("driver %s (team %s): %w",
			id, d.TeamID, repository.ErrDriverAssigned)
	}
	_, err = conn.Exec(ctx, "delete from driver where id=$1 and team_id is null", id)
	return err
}

// AssignToTeam puts a driver into a team. A team holds at most
// model.MaxDriversPerTeam drivers.
func AssignToTeam(
	ctx context.Context,
	conn repository.Querier,
	driverID, teamID string,
) error {
	d, err := LoadByID(ctx, conn, driverID)
	if err != nil {
		return err
	}
	if d.TeamID == teamID {
		return nil
	}
	var count int
	if err := conn.QueryRow(ctx,
		"select count(*) from driver where team_id=$1", teamID).Scan(&count); err != nil {
		return err
	}
	if count >= model.MaxDriversPerTeam {
		return fmt.Errorf("team %s: %w", teamID, repository.ErrTeamFull)
	}
	_, err = conn.Exec(ctx, "update driver set team_id=$1 where id=$2", teamID, driverID)
	return err
}

func RemoveFromTeam(ctx context.Context, conn repository.Querier, driverID string) error {
	cmdTag, err := conn.Exec(ctx, "update driver set team_id=null where id=$1", driverID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("driver %s: %w", driverID, repository.ErrNotFound)
	}
	return nil
}

func query(ctx context.Context, conn repository.Querier, sql string, args ...any) (
	[]*model.Driver, error,
) {
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.Driver, 0)
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, d)
	}
	return ret, rows.Err()
}

func scan(row pgx.Row) (*model.Driver, error) {
	var d model.Driver
	if err := row.Scan(&d.ID, &d.Name, &d.Skill, &d.TeamID); err != nil {
		return nil, err
	}
	return &d, nil
}
