package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/cryptofeed/internal/feedstore"
	"github.com/huangsam/cryptofeed/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRefreshFeed_Success(t *testing.T) {
	ctx := context.Background()
	loader := &remote.MockFeedLoader{}
	store := &feedstore.MockFeedStore{}
	feeds := makeFeeds(4)

	loader.On("Load", ctx).Return(feeds, nil).Once()
	store.On("DeleteCache", ctx).Return(nil).Once()
	store.On("Insert", ctx, feeds, fixedNow).Return(nil).Once()

	cached, err := RefreshFeed(ctx, loader, NewCryptoFeedCacheUseCase(store), func() time.Time { return fixedNow })

	require.NoError(t, err)
	assert.Equal(t, feeds, cached.Feeds)
	assert.Equal(t, fixedNow, cached.Timestamp)
	loader.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestRefreshFeed_LoaderErrorLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	loader := &remote.MockFeedLoader{}
	store := &feedstore.MockFeedStore{}
	loadErr := errors.New("upstream unavailable")

	loader.On("Load", ctx).Return(nil, loadErr).Once()

	_, err := RefreshFeed(ctx, loader, NewCryptoFeedCacheUseCase(store), time.Now)

	assert.ErrorIs(t, err, loadErr)
	assert.Empty(t, store.Calls)
	loader.AssertExpectations(t)
}

func TestRefreshFeed_SaveErrorPropagates(t *testing.T) {
	ctx := context.Background()
	loader := &remote.MockFeedLoader{}
	store := &feedstore.MockFeedStore{}
	deleteErr := errors.New("connection reset")

	loader.On("Load", ctx).Return(makeFeeds(1), nil).Once()
	store.On("DeleteCache", ctx).Return(deleteErr).Once()

	_, err := RefreshFeed(ctx, loader, NewCryptoFeedCacheUseCase(store), func() time.Time { return fixedNow })

	assert.ErrorIs(t, err, deleteErr)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshFeed_TimestampTakenAfterLoad(t *testing.T) {
	ctx := context.Background()
	loader := &remote.MockFeedLoader{}
	store := &feedstore.MockFeedStore{}
	feeds := makeFeeds(1)

	calls := 0
	now := func() time.Time {
		calls++
		return fixedNow
	}

	loader.On("Load", ctx).Return(feeds, nil).Run(func(mock.Arguments) {
		assert.Zero(t, calls, "clock should not be read before the feed loads")
	}).Once()
	store.On("DeleteCache", ctx).Return(nil).Once()
	store.On("Insert", ctx, feeds, fixedNow).Return(nil).Once()

	_, err := RefreshFeed(ctx, loader, NewCryptoFeedCacheUseCase(store), now)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
