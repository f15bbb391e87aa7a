package splitzip

import (
	"fmt"
	"io/fs"
	"time"
)

type addConfig struct {
	name    string
	method  Method
	level   int
	mode    fs.FileMode
	modTime time.Time
	size    int64
	recurse bool
}

// AddOption configures a single Add, AddBytes, or AddReader call.
type AddOption func(*addConfig)

// AddWithName overrides the archive name. For Add it replaces the source's
// base name (directory children keep their names under it); for AddBytes
// and AddReader the name argument already serves this purpose and the
// option is ignored.
func AddWithName(name string) AddOption {
	return func(c *addConfig) {
		c.name = name
	}
}

// AddWithMethod overrides the writer's compression method for this entry.
func AddWithMethod(m Method) AddOption {
	return func(c *addConfig) {
		c.method = m
	}
}

// AddWithLevel overrides the writer's DEFLATE level for this entry.
func AddWithLevel(level int) AddOption {
	return func(c *addConfig) {
		c.level = level
	}
}

// AddWithSize declares the expected byte count of an AddReader source so
// progress events can carry a total. The entry still streams to EOF; the
// declared size does not bound it.
func AddWithSize(size int64) AddOption {
	return func(c *addConfig) {
		c.size = size
	}
}

// AddWithMode sets the permission bits recorded for AddBytes and AddReader
// entries (default 0o644). Entries added from the filesystem keep their
// own mode.
func AddWithMode(mode fs.FileMode) AddOption {
	return func(c *addConfig) {
		c.mode = mode
	}
}

// AddWithModTime sets the modification time recorded for AddBytes and
// AddReader entries (default: current time). Entries added from the
// filesystem keep their own mtime. ZIP timestamps have two-second
// resolution.
func AddWithModTime(t time.Time) AddOption {
	return func(c *addConfig) {
		c.modTime = t
	}
}

// AddWithoutRecursion makes Add record a directory entry without
// descending into it. Ignored for non-directory sources.
func AddWithoutRecursion() AddOption {
	return func(c *addConfig) {
		c.recurse = false
	}
}

// newAddConfig seeds per-entry settings from the writer configuration and
// applies overrides.
func (w *Writer) newAddConfig(opts []AddOption) (addConfig, error) {
	c := addConfig{
		method:  w.cfg.method,
		level:   w.cfg.level,
		mode:    0o644,
		modTime: time.Now(),
		size:    -1,
		recurse: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	if !c.method.Valid() {
		return c, fmt.Errorf("splitzip: unsupported compression method %s", c.method)
	}
	if c.level < 1 || c.level > 9 {
		return c, fmt.Errorf("splitzip: compression level %d outside 1..9", c.level)
	}
	return c, nil
}
