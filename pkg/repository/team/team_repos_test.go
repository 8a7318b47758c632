package team

import (
	"context"
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository"
	"github.com/mpapenbr/racesim-manager-go/testsupport/basedata"
	"github.com/mpapenbr/racesim-manager-go/testsupport/testdb"
)

func TestLoadByID(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.Seed(pool)

	got, err := LoadByID(context.Background(), pool, basedata.PlayerTeamID)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, basedata.SampleTeams()[0])
	assert.Assert(t, !got.IsAI())

	_, err = LoadByID(context.Background(), pool, "unknown")
	assert.Assert(t, errors.Is(err, repository.ErrNotFound))
}

func TestLoadAll(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.Seed(pool)
	ctx := context.Background()
	assert.NilError(t, Create(ctx, pool, &model.Team{ID: "ai-empty", Name: "Empty"}))

	all, err := LoadAll(ctx, pool)
	assert.NilError(t, err)
	assert.Equal(t, len(all), 3)
	assert.Equal(t, all[0].ID, "ai-empty")
	assert.Assert(t, all[0].Car == nil)
	assert.Equal(t, len(all[0].Drivers), 0)
	assert.DeepEqual(t, all[1], basedata.SampleTeams()[1])
}

func TestSetCar(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.Seed(pool)
	ctx := context.Background()

	assert.NilError(t, SetCar(ctx, pool, basedata.PlayerTeamID, "car-ai"))
	got, err := LoadByID(ctx, pool, basedata.PlayerTeamID)
	assert.NilError(t, err)
	assert.Equal(t, got.Car.ID, "car-ai")

	assert.NilError(t, SetCar(ctx, pool, basedata.PlayerTeamID, ""))
	got, err = LoadByID(ctx, pool, basedata.PlayerTeamID)
	assert.NilError(t, err)
	assert.Assert(t, got.Car == nil)

	err = SetCar(ctx, pool, "unknown", "car-ai")
	assert.Assert(t, errors.Is(err, repository.ErrNotFound))
}

func TestDeleteReleasesDrivers(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.Seed(pool)
	ctx := context.Background()

	n, err := DeleteByID(ctx, pool, basedata.AITeamID)
	assert.NilError(t, err)
	assert.Equal(t, n, 1)
	var unassigned int
	assert.NilError(t, pool.QueryRow(ctx,
		"select count(*) from driver where team_id is null").Scan(&unassigned))
	assert.Equal(t, unassigned, 2)
}
