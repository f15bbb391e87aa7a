package splitzip

import "log/slog"

// DefaultLevel is the DEFLATE compression level used when WithLevel is not
// given.
const DefaultLevel = 6

type config struct {
	method   Method
	level    int
	logger   *slog.Logger
	progress ProgressFunc
	onVolume VolumeFunc
	skip     []SkipCompressionFunc
}

func defaultConfig() config {
	return config{
		method: Deflate,
		level:  DefaultLevel,
	}
}

// Option configures a Writer.
type Option func(*config)

// WithMethod sets the compression method for entries (default Deflate).
// Per-entry overrides are available via AddWithMethod.
func WithMethod(m Method) Option {
	return func(c *config) {
		c.method = m
	}
}

// WithLevel sets the DEFLATE compression level, 1 (fastest) through
// 9 (best). Ignored for Store.
func WithLevel(level int) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithLogger sets the logger for warnings (skipped symlinks, volume count
// past two-digit suffixes) and debug output. When unset, logs are
// discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProgress sets a callback receiving progress updates during entry
// writes.
func WithProgress(fn ProgressFunc) Option {
	return func(c *config) {
		c.progress = fn
	}
}

// WithVolumeNotify sets a callback invoked each time a new volume file is
// created.
func WithVolumeNotify(fn VolumeFunc) Option {
	return func(c *config) {
		c.onVolume = fn
	}
}

// WithSkipCompression adds predicates that force Store for matching files
// added from the filesystem. If any predicate returns true for a file, its
// data is not deflated. The checks run once per file and should be cheap.
func WithSkipCompression(fns ...SkipCompressionFunc) Option {
	return func(c *config) {
		c.skip = append(c.skip, fns...)
	}
}
