package splitzip

import (
	"errors"

	"github.com/meigma/splitzip/internal/arcpath"
)

var (
	// ErrVolumeSizeTooSmall is returned when the requested volume capacity
	// is below MinVolumeSize. The error message names both values.
	ErrVolumeSizeTooSmall = errors.New("splitzip: volume capacity below minimum")

	// ErrSizeOverflow is returned when an entry's compressed or uncompressed
	// size, a header offset, or the central directory size exceeds the
	// 32-bit fields of the ZIP format. ZIP64 is not produced.
	ErrSizeOverflow = errors.New("splitzip: size exceeds format limit")

	// ErrTooManyEntries is returned when adding an entry would exceed the
	// format's 16-bit entry count.
	ErrTooManyEntries = errors.New("splitzip: entry count exceeds format limit")

	// ErrWriterClosed is returned when writing to a closed or aborted writer.
	ErrWriterClosed = errors.New("splitzip: writer is closed")

	// ErrVolumeNotCreated is returned when patching a volume that does not
	// exist yet.
	ErrVolumeNotCreated = errors.New("splitzip: volume not yet created")
)

// ErrUnsafePath is returned when an archive name is empty, contains a null
// byte, is absolute, carries a drive letter, traverses outside the archive
// root, or exceeds the format's name length limit.
var ErrUnsafePath = arcpath.ErrUnsafe
