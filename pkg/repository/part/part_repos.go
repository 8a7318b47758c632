//nolint:whitespace // can't make both editor and linter happy
package part

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository"
)

const selector = "select id, kind, name, performance, coalesce(compound, '') from car_part"

func Create(ctx context.Context, conn repository.Querier, p *model.CarPart) error {
	p.Performance = model.ClampRating(p.Performance)
	var compound *string
	if p.Kind == model.PartTires {
		c := string(model.ParseTireCompound(string(p.Compound)))
		p.Compound = model.TireCompound(c)
		compound = &c
	}
	_, err := conn.Exec(ctx, `
	insert into car_part (id, kind, name, performance, compound)
	values ($1,$2,$3,$4,$5)`,
		p.ID, p.Kind, p.Name, p.Performance, compound)
	return err
}

func LoadByID(ctx context.Context, conn repository.Querier, id string) (
	*model.CarPart, error,
) {
	p, err := scan(conn.QueryRow(ctx, selector+" where id=$1", id))
	if err != nil {
		return nil, fmt.Errorf("part %s: %w", id, repository.NotFound(err))
	}
	return p, nil
}

// LoadByKind lists the parts of a kind, best first
func LoadByKind(ctx context.Context, conn repository.Querier, kind model.PartKind) (
	[]*model.CarPart, error,
) {
	rows, err := conn.Query(ctx,
		selector+" where kind=$1 order by performance desc, id", kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.CarPart, 0)
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, p)
	}
	return ret, rows.Err()
}

func scan(row pgx.Row) (*model.CarPart, error) {
	var p model.CarPart
	var compound string
	if err := row.Scan(&p.ID, &p.Kind, &p.Name, &p.Performance, &compound); err != nil {
		return nil, err
	}
	p.Compound = model.TireCompound(compound)
	return &p, nil
}
