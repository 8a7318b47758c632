package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/store"
)

// Store keeps the history in memory, it is lost on exit
type Store struct {
	mu      sync.RWMutex
	results []*model.RaceResult
}

var _ store.HistoryStore = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, res *model.RaceResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, clone(res))
	return nil
}

func (s *Store) Load(_ context.Context, id uuid.UUID) (*model.RaceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		if r.ID == id {
			return clone(r), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", id, store.ErrNotFound)
}

func (s *Store) LoadAll(_ context.Context) ([]*model.RaceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]*model.RaceResult, 0, len(s.results))
	for _, r := range s.results {
		ret = append(ret, clone(r))
	}
	slices.SortStableFunc(ret, func(a, b *model.RaceResult) int {
		return a.RaceDate.Compare(b.RaceDate)
	})
	return ret, nil
}

func clone(r *model.RaceResult) *model.RaceResult {
	c := *r
	c.Results = slices.Clone(r.Results)
	return &c
}
