// Package storetest holds the behavior every HistoryStore has to show.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/store"
)

func SampleResult(raceDate time.Time, winner string) *model.RaceResult {
	return &model.RaceResult{
		ID:        uuid.Must(uuid.NewV4()),
		TrackName: "Monza",
		RaceDate:  raceDate,
		Results: []model.ParticipantResult{
			{DriverName: winner, TeamName: "Team " + winner, Position: 1, TotalTime: 365.4},
			{DriverName: "Other", TeamName: "Team Other", Position: 2, TotalTime: 370.15},
		},
	}
}

// Run checks the store returned by newStore. Each call must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.HistoryStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 4, 28, 11, 10, 12, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		s := newStore(t)
		all, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		_, err = s.Load(ctx, uuid.Must(uuid.NewV4()))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("append and load", func(t *testing.T) {
		s := newStore(t)
		later := SampleResult(base.Add(time.Hour), "B")
		earlier := SampleResult(base, "A")
		require.NoError(t, s.Append(ctx, later))
		require.NoError(t, s.Append(ctx, earlier))

		got, err := s.Load(ctx, earlier.ID)
		require.NoError(t, err)
		assertSame(t, earlier, got)

		all, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assertSame(t, earlier, all[0])
		assertSame(t, later, all[1])
	})

	t.Run("stored copy is independent", func(t *testing.T) {
		s := newStore(t)
		res := SampleResult(base, "A")
		require.NoError(t, s.Append(ctx, res))
		res.Results[0].DriverName = "changed"

		got, err := s.Load(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", got.Results[0].DriverName)
	})
}

func assertSame(t *testing.T, want, got *model.RaceResult) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.TrackName, got.TrackName)
	assert.True(t, want.RaceDate.Equal(got.RaceDate), "race date %v != %v",
		want.RaceDate, got.RaceDate)
	assert.Equal(t, want.Results, got.Results)
}
