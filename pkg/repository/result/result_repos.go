//nolint:whitespace // can't make both editor and linter happy
package result

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository"
)

// Create stores the result with all entries. Callers should pass a transaction.
func Create(ctx context.Context, conn repository.Querier, res *model.RaceResult) error {
	if _, err := conn.Exec(ctx,
		"insert into race_result (id, track_name, race_date) values ($1,$2,$3)",
		res.ID, res.TrackName, res.RaceDate); err != nil {
		return err
	}
	for _, r := range res.Results {
		if _, err := conn.Exec(ctx, `
		insert into race_result_entry (
			result_id, position, driver_name, team_name, total_time
		) values ($1,$2,$3,$4,$5)`,
			res.ID, r.Position, r.DriverName, r.TeamName, r.TotalTime); err != nil {
			return err
		}
	}
	return nil
}

func LoadByID(ctx context.Context, conn repository.Querier, id uuid.UUID) (
	*model.RaceResult, error,
) {
	res := model.RaceResult{}
	if err := conn.QueryRow(ctx,
		"select id, track_name, race_date from race_result where id=$1", id).
		Scan(&res.ID, &res.TrackName, &res.RaceDate); err != nil {
		return nil, fmt.Errorf("result %s: %w", id, repository.NotFound(err))
	}
	entries, err := loadEntries(ctx, conn, &id)
	if err != nil {
		return nil, err
	}
	res.Results = entries[id]
	return &res, nil
}

// LoadAll returns all results, oldest race first
func LoadAll(ctx context.Context, conn repository.Querier) ([]*model.RaceResult, error) {
	rows, err := conn.Query(ctx,
		"select id, track_name, race_date from race_result order by race_date, id")
	if err != nil {
		return nil, err
	}
	ret := make([]*model.RaceResult, 0)
	for rows.Next() {
		res := &model.RaceResult{}
		if err := rows.Scan(&res.ID, &res.TrackName, &res.RaceDate); err != nil {
			rows.Close()
			return nil, err
		}
		ret = append(ret, res)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	entries, err := loadEntries(ctx, conn, nil)
	if err != nil {
		return nil, err
	}
	for _, res := range ret {
		res.Results = entries[res.ID]
	}
	return ret, nil
}

// loadEntries loads the entries of the given result, all entries if id is nil
func loadEntries(ctx context.Context, conn repository.Querier, id *uuid.UUID) (
	map[uuid.UUID][]model.ParticipantResult, error,
) {
	sql := `select result_id, position, driver_name, team_name, total_time
	from race_result_entry`
	args := []any{}
	if id != nil {
		sql += " where result_id=$1"
		args = append(args, *id)
	}
	rows, err := conn.Query(ctx, sql+" order by result_id, position", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make(map[uuid.UUID][]model.ParticipantResult)
	for rows.Next() {
		var resultID uuid.UUID
		var r model.ParticipantResult
		if err := rows.Scan(&resultID, &r.Position, &r.DriverName, &r.TeamName,
			&r.TotalTime); err != nil {
			return nil, err
		}
		ret[resultID] = append(ret[resultID], r)
	}
	return ret, rows.Err()
}
