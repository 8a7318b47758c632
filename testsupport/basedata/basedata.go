package basedata

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
)

const (
	PlayerTeamID = "player"
	AITeamID     = "ai-rivals"
)

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2024-04-28T11:10:12Z")
	return t
}

func SampleTrack() *model.Track {
	return &model.Track{ID: "monza", Name: "Monza", Laps: 5, Characteristic: model.TrackSpeed}
}

// SampleCar creates a car with all parts at the given performance
func SampleCar(id string, perf int) *model.Car {
	parts := make(map[model.PartKind]*model.CarPart, len(model.PartKinds))
	for _, kind := range model.PartKinds {
		p := &model.CarPart{
			ID:          id + "-" + string(kind),
			Kind:        kind,
			Name:        string(kind) + " " + id,
			Performance: perf,
		}
		if kind == model.PartTires {
			p.Compound = model.CompoundSoft
		}
		parts[kind] = p
	}
	return &model.Car{ID: id, Name: "Car " + id, Parts: parts}
}

// SampleTeams returns a player team and an AI team with two drivers each
func SampleTeams() []*model.Team {
	return []*model.Team{
		{
			ID:   PlayerTeamID,
			Name: "Player Racing",
			Car:  SampleCar("car-player", 80),
			Drivers: []*model.Driver{
				{ID: "d1", Name: "Alice", Skill: 90, TeamID: PlayerTeamID},
				{ID: "d2", Name: "Bob", Skill: 75, TeamID: PlayerTeamID},
			},
		},
		{
			ID:   AITeamID,
			Name: "Rivals",
			Car:  SampleCar("car-ai", 70),
			Drivers: []*model.Driver{
				{ID: "d3", Name: "Carla", Skill: 85, TeamID: AITeamID},
				{ID: "d4", Name: "Dave", Skill: 60, TeamID: AITeamID},
			},
		},
	}
}

// Seed stores the sample track and teams.
// Rows are written with plain SQL so that the repository packages can use
// this package in their own tests.
func Seed(pool *pgxpool.Pool) {
	ctx := context.Background()
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		track := SampleTrack()
		if _, err := tx.Exec(ctx,
			"insert into track (id, name, laps, characteristic) values ($1,$2,$3,$4)",
			track.ID, track.Name, track.Laps, string(track.Characteristic)); err != nil {
			return err
		}
		for _, t := range SampleTeams() {
			if err := seedTeam(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seed: %v\n", err)
	}
}

func seedTeam(ctx context.Context, tx pgx.Tx, t *model.Team) error {
	for _, kind := range model.PartKinds {
		p := t.Car.Part(kind)
		var compound *string
		if p.Compound != "" {
			c := string(p.Compound)
			compound = &c
		}
		if _, err := tx.Exec(ctx,
			"insert into car_part (id, kind, name, performance, compound) "+
				"values ($1,$2,$3,$4,$5)",
			p.ID, string(p.Kind), p.Name, p.Performance, compound); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx,
		"insert into car (id, name, engine_id, aerodynamics_id, tires_id, "+
			"suspension_id, gearbox_id) values ($1,$2,$3,$4,$5,$6,$7)",
		t.Car.ID, t.Car.Name,
		t.Car.Part(model.PartEngine).ID,
		t.Car.Part(model.PartAerodynamics).ID,
		t.Car.Part(model.PartTires).ID,
		t.Car.Part(model.PartSuspension).ID,
		t.Car.Part(model.PartGearbox).ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		"insert into team (id, name, car_id) values ($1,$2,$3)",
		t.ID, t.Name, t.Car.ID); err != nil {
		return err
	}
	for _, d := range t.Drivers {
		if _, err := tx.Exec(ctx,
			"insert into driver (id, name, skill, team_id) values ($1,$2,$3,$4)",
			d.ID, d.Name, d.Skill, t.ID); err != nil {
			return err
		}
	}
	return nil
}
