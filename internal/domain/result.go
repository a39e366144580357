package domain

// Source tags where a dataset result came from.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
)

// DatasetResult is the outcome of one per-dataset sync attempt. Exactly one
// of Data or Err is meaningful: a failed result carries no payload.
type DatasetResult[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
	Source  Source `json:"source,omitempty"`
	// Degraded marks a cached value served because the live fetch failed.
	Degraded bool `json:"degraded,omitempty"`
	// CacheWriteFailed marks a live value that could not be written through:
	// authoritative for this response, but not cached for next time.
	CacheWriteFailed bool `json:"cacheWriteFailed,omitempty"`

	Err error `json:"-"`
}

// OK builds a successful result.
func OK[T any](data T, source Source) DatasetResult[T] {
	return DatasetResult[T]{Success: true, Data: data, Source: source}
}

// Failed builds a failed result carrying a typed error.
func Failed[T any](err error) DatasetResult[T] {
	return DatasetResult[T]{Success: false, Error: err.Error(), Err: err}
}

// SyncResult is the envelope returned by one full sync. Its own Success flag
// reflects only credential loading: individual datasets carry their own
// success flags and must be inspected independently.
type SyncResult struct {
	Success      bool                                 `json:"success"`
	Profile      DatasetResult[*ProfileSnapshot]      `json:"profile"`
	Metrics      DatasetResult[*MetricsSnapshot]      `json:"metrics"`
	Demographics DatasetResult[*DemographicsSnapshot] `json:"demographics"`
	Performance  DatasetResult[PerformanceSeries]     `json:"performance"`
}
