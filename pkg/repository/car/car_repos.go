//nolint:whitespace // can't make both editor and linter happy
package car

import (
	"context"
	"fmt"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository/part"
)

// column holding the part id per slot
var slotColumns = map[model.PartKind]string{
	model.PartEngine:       "engine_id",
	model.PartAerodynamics: "aerodynamics_id",
	model.PartTires:        "tires_id",
	model.PartSuspension:   "suspension_id",
	model.PartGearbox:      "gearbox_id",
}

// Create stores the car with the ids of its mounted parts.
// The parts must already exist.
func Create(ctx context.Context, conn repository.Querier, c *model.Car) error {
	partID := func(kind model.PartKind) *string {
		if p := c.Part(kind); p != nil {
			return &p.ID
		}
		return nil
	}
	_, err := conn.Exec(ctx, `
	insert into car (
		id, name, engine_id, aerodynamics_id, tires_id, suspension_id, gearbox_id
	) values ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.Name,
		partID(model.PartEngine), partID(model.PartAerodynamics), partID(model.PartTires),
		partID(model.PartSuspension), partID(model.PartGearbox))
	return err
}

// LoadByID loads the car including its mounted parts
func LoadByID(ctx context.Context, conn repository.Querier, id string) (*model.Car, error) {
	row := conn.QueryRow(ctx, `
	select id, name, engine_id, aerodynamics_id, tires_id, suspension_id, gearbox_id
	from car where id=$1`, id)
	c := model.Car{Parts: make(map[model.PartKind]*model.CarPart)}
	slots := make(map[model.PartKind]*string, len(model.PartKinds))
	var engine, aero, tires, suspension, gearbox *string
	if err := row.Scan(&c.ID, &c.Name,
		&engine, &aero, &tires, &suspension, &gearbox); err != nil {
		return nil, fmt.Errorf("car %s: %w", id, repository.NotFound(err))
	}
	slots[model.PartEngine] = engine
	slots[model.PartAerodynamics] = aero
	slots[model.PartTires] = tires
	slots[model.PartSuspension] = suspension
	slots[model.PartGearbox] = gearbox
	for _, kind := range model.PartKinds {
		if slots[kind] == nil {
			continue
		}
		p, err := part.LoadByID(ctx, conn, *slots[kind])
		if err != nil {
			return nil, err
		}
		c.Parts[kind] = p
	}
	return &c, nil
}

// MountPart puts the part into its slot of the car. An empty partID clears
// the slot of the given kind.
func MountPart(
	ctx context.Context,
	conn repository.Querier,
	carID string,
	kind model.PartKind,
	partID string,
) error {
	column, ok := slotColumns[kind]
	if !ok {
		return fmt.Errorf("unknown part kind %q: %w", kind, repository.ErrPartKindMismatch)
	}
	var value *string
	if partID != "" {
		p, err := part.LoadByID(ctx, conn, partID)
		if err != nil {
			return err
		}
		if p.Kind != kind {
			return fmt.Errorf("%s is a %s part, not %s: %w",
				partID, p.Kind, kind, repository.ErrPartKindMismatch)
		}
		value = &partID
	}
	cmdTag, err := conn.Exec(ctx,
		fmt.Sprintf("update car set %s=$1 where id=$2", column), value, carID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("car %s: %w", carID, repository.ErrNotFound)
	}
	return nil
}
