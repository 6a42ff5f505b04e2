package dedupe

// Option applies a configuration option to the deduper.
type Option func(*attemptDeduper)

// WithMaxSize bounds the number of IDs kept in memory. With maxSize > 0 the
// oldest IDs are evicted once the bound is hit; with maxSize <= 0 the deduper
// is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *attemptDeduper) {
		d.maxSize = maxSize
	}
}
