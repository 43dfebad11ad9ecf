package feedstore

import (
	"context"
	"time"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetFeedStore implements the StoreManager interface.
func (m *MockStoreManager) GetFeedStore() contract.FeedStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.FeedStore)
	return store
}

// MockFeedStore is a mock implementation of FeedStore for testing.
type MockFeedStore struct {
	mock.Mock
}

var _ contract.FeedStore = &MockFeedStore{} // Compile-time check

// DeleteCache implements the FeedStore interface.
func (m *MockFeedStore) DeleteCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Insert implements the FeedStore interface.
func (m *MockFeedStore) Insert(ctx context.Context, feeds []schema.CryptoFeed, timestamp time.Time) error {
	args := m.Called(ctx, feeds, timestamp)
	return args.Error(0)
}

// Retrieve implements the FeedStore interface.
func (m *MockFeedStore) Retrieve(ctx context.Context) (schema.CachedFeed, error) {
	args := m.Called(ctx)
	cached, _ := args.Get(0).(schema.CachedFeed)
	return cached, args.Error(1)
}

// GetStatus implements the FeedStore interface.
func (m *MockFeedStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	status, _ := args.Get(0).(schema.StoreStatus)
	return status, args.Error(1)
}

// Close implements the FeedStore interface.
func (m *MockFeedStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
