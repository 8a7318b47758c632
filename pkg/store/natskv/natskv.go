package natskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/gofrs/uuid/v5"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mpapenbr/racesim-manager-go/log"
	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/store"
)

const DefaultBucket = "race_history"

type (
	Option func(*Store)
	// Store keeps every result as JSON value in a JetStream key-value bucket.
	// The key is the result id.
	Store struct {
		bucket string
		kv     jetstream.KeyValue
		log    *log.Logger
	}
)

var _ store.HistoryStore = (*Store)(nil)

func WithBucket(bucket string) Option {
	return func(s *Store) {
		s.bucket = bucket
	}
}

// New creates the bucket if it does not exist yet
func New(ctx context.Context, nc *nats.Conn, opts ...Option) (*Store, error) {
	s := &Store{
		bucket: DefaultBucket,
		log:    log.Default().Named("store.nats"),
	}
	for _, opt := range opts {
		opt(s)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}
	s.kv, err = js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      s.bucket,
		Description: "results of finished races",
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("using bucket", log.String("bucket", s.bucket))
	return s, nil
}

func (s *Store) Append(ctx context.Context, res *model.RaceResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = s.kv.Create(ctx, res.ID.String(), data)
	return err
}

func (s *Store) Load(ctx context.Context, id uuid.UUID) (*model.RaceResult, error) {
	kve, err := s.kv.Get(ctx, id.String())
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fmt.Errorf("%s: %w", id, store.ErrNotFound)
		}
		return nil, err
	}
	return decode(kve.Value())
}

func (s *Store) LoadAll(ctx context.Context) ([]*model.RaceResult, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []*model.RaceResult{}, nil
		}
		return nil, err
	}
	ret := make([]*model.RaceResult, 0)
	for key := range lister.Keys() {
		kve, err := s.kv.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		res, err := decode(kve.Value())
		if err != nil {
			s.log.Warn("skipping invalid entry", log.String("key", key), log.ErrorField(err))
			continue
		}
		ret = append(ret, res)
	}
	slices.SortStableFunc(ret, func(a, b *model.RaceResult) int {
		if c := a.RaceDate.Compare(b.RaceDate); c != 0 {
			return c
		}
		return slices.Compare(a.ID.Bytes(), b.ID.Bytes())
	})
	return ret, nil
}

func decode(data []byte) (*model.RaceResult, error) {
	var res model.RaceResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
