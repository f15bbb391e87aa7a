package splitzip

import "github.com/meigma/splitzip/internal/zipfmt"

// Method identifies the compression method stored in an entry.
type Method = zipfmt.Method

// Compression methods. The values are the on-disk ZIP method IDs.
const (
	Store   = zipfmt.Store
	Deflate = zipfmt.Deflate
)

// Format ceilings. Entries whose sizes exceed MaxEntrySize, or archives
// with more than MaxEntries entries, fail with ErrSizeOverflow or
// ErrTooManyEntries; ZIP64 is never produced.
const (
	MaxEntrySize = zipfmt.MaxSize
	MaxEntries   = zipfmt.MaxEntries
)
