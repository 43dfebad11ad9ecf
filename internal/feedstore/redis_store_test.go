package feedstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotEncoding(t *testing.T) {
	feeds := makeFeeds(3)

	data, err := encodeSnapshot(feeds, testTimestamp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":`)

	cached, err := decodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, testTimestamp, cached.Timestamp)
	assert.Equal(t, feeds, cached.Feeds)
}

func TestSnapshotEncodingNilFeeds(t *testing.T) {
	data, err := encodeSnapshot(nil, testTimestamp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"feeds":[]`)

	cached, err := decodeSnapshot(data)
	require.NoError(t, err)
	assert.NotNil(t, cached.Feeds)
	assert.Empty(t, cached.Feeds)
}

func TestDecodeSnapshotInvalid(t *testing.T) {
	_, err := decodeSnapshot([]byte("not json"))
	assert.Error(t, err)
}

func TestNewRedisFeedStoreErrors(t *testing.T) {
	_, err := NewRedisFeedStore(context.Background(), "localhost:6379")
	assert.Error(t, err, "bare host is not a redis URL")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRedisFeedStore(ctx, "redis://127.0.0.1:1/0")
	assert.Error(t, err)
}
