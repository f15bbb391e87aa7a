package splitzip

import (
	"io/fs"
	"time"

	"github.com/meigma/splitzip/internal/zipfmt"
)

// Entry describes one archive member. The writer appends an Entry to its
// table once the member is fully written and patched; Entries returns the
// accumulated table.
type Entry struct {
	// Name is the archive-relative name, forward-slash separated.
	// Directory entries end in "/".
	Name string

	// Method is the compression method the data was written with.
	Method Method

	// Modified is the recorded modification time. On disk it is stored
	// with two-second resolution.
	Modified time.Time

	// Mode carries the permission bits recorded in the entry's external
	// attributes, with fs.ModeDir set for directory entries.
	Mode fs.FileMode

	// CRC32, CompressedSize, and UncompressedSize hold the values patched
	// into the local header after the data was streamed. Zero for
	// directory entries.
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32

	// Volume and Offset locate the entry's local file header: the 0-based
	// volume ordinal and the byte offset inside that volume.
	Volume int
	Offset int64
}

// externalAttrs builds the central directory external attribute word: the
// full Unix mode, type bits included, in the high 16 bits, plus the MS-DOS
// directory bit for directories. Readers only honor the Unix half when the
// version-made-by field declares a Unix origin.
func externalAttrs(mode fs.FileMode) uint32 {
	if mode.IsDir() {
		return (0o40000|uint32(mode.Perm()))<<16 | zipfmt.DOSDirAttr
	}
	return (0o100000 | uint32(mode.Perm())) << 16
}
