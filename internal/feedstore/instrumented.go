package feedstore

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/internal/metrics"
	"github.com/huangsam/cryptofeed/schema"
)

// InstrumentedFeedStore records Prometheus metrics around another FeedStore.
// It forwards every call unchanged.
type InstrumentedFeedStore struct {
	next    contract.FeedStore
	backend string
}

var _ contract.FeedStore = &InstrumentedFeedStore{} // Compile-time check

// NewInstrumentedFeedStore wraps next, labelling metrics with backend.
func NewInstrumentedFeedStore(next contract.FeedStore, backend schema.DatabaseBackend) *InstrumentedFeedStore {
	return &InstrumentedFeedStore{next: next, backend: string(backend)}
}

func (s *InstrumentedFeedStore) observe(op schema.StoreOperation, start time.Time, err error) {
	metrics.RecordStoreOperation(s.backend, string(op), time.Since(start), err)
}

// DeleteCache implements the FeedStore interface.
func (s *InstrumentedFeedStore) DeleteCache(ctx context.Context) error {
	start := time.Now()
	err := s.next.DeleteCache(ctx)
	s.observe(schema.DeleteCacheOp, start, err)
	return err
}

// Insert implements the FeedStore interface.
func (s *InstrumentedFeedStore) Insert(ctx context.Context, feeds []schema.CryptoFeed, timestamp time.Time) error {
	start := time.Now()
	err := s.next.Insert(ctx, feeds, timestamp)
	s.observe(schema.InsertOp, start, err)
	return err
}

// Retrieve implements the FeedStore interface.
func (s *InstrumentedFeedStore) Retrieve(ctx context.Context) (schema.CachedFeed, error) {
	start := time.Now()
	cached, err := s.next.Retrieve(ctx)
	// An empty cache is an expected answer, not a failure
	if errors.Is(err, contract.ErrEmptyCache) {
		s.observe(schema.RetrieveOp, start, nil)
	} else {
		s.observe(schema.RetrieveOp, start, err)
	}
	return cached, err
}

// GetStatus implements the FeedStore interface.
func (s *InstrumentedFeedStore) GetStatus() (schema.StoreStatus, error) {
	return s.next.GetStatus()
}

// Close implements the FeedStore interface.
func (s *InstrumentedFeedStore) Close() error {
	return s.next.Close()
}
