package remote

import (
	"context"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
	"github.com/stretchr/testify/mock"
)

// MockFeedLoader is a mock implementation of FeedLoader for testing.
type MockFeedLoader struct {
	mock.Mock
}

var _ contract.FeedLoader = &MockFeedLoader{} // Compile-time check

// Load implements the FeedLoader interface.
func (m *MockFeedLoader) Load(ctx context.Context) ([]schema.CryptoFeed, error) {
	ret := m.Called(ctx)
	feeds, _ := ret.Get(0).([]schema.CryptoFeed)
	return feeds, ret.Error(1)
}
