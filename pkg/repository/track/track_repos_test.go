//nolint:funlen // ok for this test code
package track

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

func TestCreate(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.Seed(pool)
	tests := []struct {
		name    string
		track   *model.Track
		wantErr bool
	}{
		{
			name:  "new entry",
			track: &model.Track{ID: "spa", Name: "Spa", Laps: 44, Characteristic: model.TrackBalanced},
		},
		{
			name:    "duplicate",
			track:   basedata.SampleTrack(),
			wantErr: true,
		},
		{
			name:    "no laps",
			track:   &model.Track{ID: "short", Name: "Short", Laps: 0},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Create(context.Background(), pool, tt.track)
			if (err != nil) != tt.wantErr {
				t.Errorf("Create error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadByID(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.Seed(pool)
	ctx := context.Background()

	got, err := LoadByID(ctx, pool, "monza")
	assert.NilError(t, err)
	assert.DeepEqual(t, got, basedata.SampleTrack())

	_, err = LoadByID(ctx, pool, "unknown")
	assert.Assert(t, errors.Is(err, repository.ErrNotFound))
}

func TestUnknownCharacteristicIsBalanced(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	_, err := pool.Exec(ctx,
		"insert into track (id, name, laps, characteristic) values ('x','X',3,'STREET')")
	assert.NilError(t, err)

	got, err := LoadByID(ctx, pool, "x")
	assert.NilError(t, err)
	assert.Equal(t, got.Characteristic, model.TrackBalanced)
}

func TestLoadAllAndDelete(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.Seed(pool)
	ctx := context.Background()
	assert.NilError(t, Create(ctx, pool,
		&model.Track{ID: "imola", Name: "Imola", Laps: 63, Characteristic: model.TrackTechnical}))

	all, err := LoadAll(ctx, pool)
	assert.NilError(t, err)
	assert.Equal(t, len(all), 2)
	assert.Equal(t, all[0].Name, "Imola")

	n, err := DeleteByID(ctx, pool, "imola")
	assert.NilError(t, err)
	assert.Equal(t, n, 1)
	n, err = DeleteByID(ctx, pool, "imola")
	assert.NilError(t, err)
	assert.Equal(t, n, 0)
}
