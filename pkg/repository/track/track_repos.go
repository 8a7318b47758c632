//nolint:whitespace //can't make both the linter and editor happy :(
package track

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository"
)

const selector = "select id, name, laps, characteristic from track"

func Create(ctx context.Context, conn repository.Querier, track *model.Track) error {
	_, err := conn.Exec(ctx,
		"insert into track (id, name, laps, characteristic) values ($1,$2,$3,$4)",
		track.ID, track.Name, track.Laps, track.Characteristic)
	return err
}

// deletes an entry from the database, returns number of rows deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id string) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from track where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func LoadByID(
	ctx context.Context,
	conn repository.Querier,
	id string,
) (*model.Track, error) {
	t, err := scan(conn.QueryRow(ctx, selector+" where id=$1", id))
	if err != nil {
		return nil, fmt.Errorf("track %s: %w", id, repository.NotFound(err))
	}
	return t, nil
}

func LoadAll(ctx context.Context, conn repository.Querier) ([]*model.Track, error) {
	rows, err := conn.Query(ctx, selector+" order by name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.Track, 0)
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, t)
	}
	return ret, rows.Err()
}

// unknown characteristics are read as BALANCED
func scan(row pgx.Row) (*model.Track, error) {
	var t model.Track
	var characteristic string
	if err := row.Scan(&t.ID, &t.Name, &t.Laps, &characteristic); err != nil {
		return nil, err
	}
	t.Characteristic = model.ParseTrackCharacteristic(characteristic)
	return &t, nil
}
