package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/repository"
	resultrepos "github.com/mpapenbr/racesim-manager-go/pkg/repository/result"
	"github.com/mpapenbr/racesim-manager-go/pkg/store"
)

// Store keeps the history in the race_result tables
type Store struct {
	pool *pgxpool.Pool
}

var _ store.HistoryStore = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Append(ctx context.Context, res *model.RaceResult) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return resultrepos.Create(ctx, tx, res)
	})
}

func (s *Store) Load(ctx context.Context, id uuid.UUID) (*model.RaceResult, error) {
	res, err := resultrepos.LoadByID(ctx, s.pool, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	return res, err
}

func (s *Store) LoadAll(ctx context.Context) ([]*model.RaceResult, error) {
	return resultrepos.LoadAll(ctx, s.pool)
}
