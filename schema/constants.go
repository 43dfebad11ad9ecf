package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the backend used by the feed store.
	DatabaseBackend string

	// StoreOperation names a single feed store call.
	StoreOperation string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
	YAMLOut OutputMode = "yaml"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis"
	MemoryBackend     DatabaseBackend = "memory"
	NoneBackend       DatabaseBackend = "none"
)

// All store operations.
const (
	DeleteCacheOp StoreOperation = "delete_cache"
	InsertOp      StoreOperation = "insert"
	RetrieveOp    StoreOperation = "retrieve"
)

// ValidOutputModes lists all valid output modes for feed rendering.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
	YAMLOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	MemoryBackend:     {},
	NoneBackend:       {},
}

// IsSQL reports whether the backend is served by the SQL store.
func (b DatabaseBackend) IsSQL() bool {
	switch b {
	case SQLiteBackend, MySQLBackend, PostgreSQLBackend:
		return true
	default:
		return false
	}
}
