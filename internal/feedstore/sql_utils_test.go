package feedstore

import (
	"testing"

	"github.com/huangsam/cryptofeed/schema"
	"github.com/stretchr/testify/assert"
)

// TestValidateTableName tests the validateTableName function with various inputs.
func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{name: "valid simple name", tableName: "crypto_feed_cache"},
		{name: "valid name with numbers", tableName: "feed_2024"},
		{name: "valid leading underscore", tableName: "_feeds"},
		{name: "empty", tableName: "", wantErr: true},
		{name: "leading digit", tableName: "1feeds", wantErr: true},
		{name: "dash", tableName: "crypto-feed", wantErr: true},
		{name: "injection attempt", tableName: "feeds; DROP TABLE users", wantErr: true},
		{name: "quote", tableName: `feeds"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`feeds`", quoteTableName("feeds", schema.MySQLBackend))
	assert.Equal(t, `"feeds"`, quoteTableName("feeds", schema.PostgreSQLBackend))
	assert.Equal(t, `"feeds"`, quoteTableName("feeds", schema.SQLiteBackend))
}

func TestDriverName(t *testing.T) {
	tests := map[schema.DatabaseBackend]string{
		schema.SQLiteBackend:     "sqlite",
		schema.MySQLBackend:      "mysql",
		schema.PostgreSQLBackend: "pgx",
	}
	for backend, want := range tests {
		got, err := driverName(backend)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := driverName(schema.RedisBackend)
	assert.Error(t, err)
}

func TestResolveDSN(t *testing.T) {
	assert.Equal(t, GetDBFilePath(), resolveDSN(schema.SQLiteBackend, ""))
	assert.Equal(t, "/tmp/x.db", resolveDSN(schema.SQLiteBackend, "/tmp/x.db"))
	assert.Equal(t, "", resolveDSN(schema.MySQLBackend, ""))
}
