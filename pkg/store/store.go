package store

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
)

var ErrNotFound = errors.New("race result not found")

// HistoryStore keeps the results of finished races
type HistoryStore interface {
	Append(ctx context.Context, res *model.RaceResult) error
	Load(ctx context.Context, id uuid.UUID) (*model.RaceResult, error)
	// LoadAll returns all results, oldest race first
	LoadAll(ctx context.Context) ([]*model.RaceResult, error)
}
