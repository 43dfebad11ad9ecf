package schema

import "time"

// StoreStatus represents the status of the feed store.
type StoreStatus struct {
	Backend        string    `json:"backend"`
	Connected      bool      `json:"connected"`
	TotalItems     int       `json:"total_items"`
	LastCachedTime time.Time `json:"last_cached_time"`
	TableSizeBytes int64     `json:"table_size_bytes"`
}
