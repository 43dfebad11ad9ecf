package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected string
	}{
		{name: "gain", input: 2.5, expected: UpValue},
		{name: "tiny gain", input: 0.0001, expected: UpValue},
		{name: "loss", input: -3.1, expected: DownValue},
		{name: "unchanged", input: 0, expected: FlatValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.input))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	// Colored output keeps the plain label text regardless of terminal support
	assert.Contains(t, GetColorLabel(1), UpValue)
	assert.Contains(t, GetColorLabel(-1), DownValue)
	assert.Contains(t, GetColorLabel(0), FlatValue)
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("stdout when empty", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, f)
	})

	t.Run("creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})
}

func TestGetCacheDBFilePath(t *testing.T) {
	path := GetCacheDBFilePath()
	assert.True(t, strings.HasSuffix(path, ".cryptofeed_cache.db"))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "Bitcoin", TruncateText("Bitcoin", 10))
	assert.Equal(t, "Wrapped...", TruncateText("Wrapped Bitcoin", 10))
	assert.Equal(t, "Wrapped Bitcoin", TruncateText("Wrapped Bitcoin", 3), "too-small widths leave text untouched")
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("perhaps")
	assert.Error(t, err)
}
