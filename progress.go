package splitzip

// ProgressEvent reports forward movement while an entry's data is being
// streamed into the archive.
type ProgressEvent struct {
	// Name is the archive-relative name of the entry being written.
	Name string

	// BytesDone is the count of uncompressed bytes consumed so far.
	BytesDone int64

	// BytesTotal is the expected uncompressed size, or -1 when the source
	// does not declare one (readers without AddWithSize).
	BytesTotal int64
}

// ProgressFunc receives progress updates during entry writes. It is called
// synchronously on the calling goroutine after each chunk, so it must be
// cheap.
type ProgressFunc func(ProgressEvent)

// VolumeFunc is called synchronously each time a new volume file is
// created. Index is the 0-based volume ordinal. When the whole archive
// fits in one volume, the file reported as index 0 is later renamed to the
// canonical output path; VolumePaths and Close return current paths.
type VolumeFunc func(index int, path string)
