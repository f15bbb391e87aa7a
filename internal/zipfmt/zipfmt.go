// Package zipfmt encodes and decodes the structural records of the ZIP
// container format: local file headers, central directory headers, and the
// end of central directory record. All fields are little-endian per the
// PKWARE appnote. The package is wire-layout only; it knows nothing about
// volumes or entry lifecycle.
package zipfmt

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Record signatures.
const (
	LocalHeaderSig   = 0x04034b50
	CentralHeaderSig = 0x02014b50
	EOCDSig          = 0x06054b50
)

// Fixed record lengths in bytes, excluding variable-length trailers
// (name, extra, comment).
const (
	LocalHeaderLen   = 30
	CentralHeaderLen = 46
	EOCDLen          = 22
)

// LocalSizesOffset is the byte offset of the CRC-32 field inside a local
// file header. The CRC-32, compressed size, and uncompressed size form one
// contiguous 12-byte run starting here; EncodeSizes produces the patch
// record written over it.
const (
	LocalSizesOffset = 14
	LocalSizesLen    = 12
)

// Version is the ZIP version (2.0) written as version-needed and as the
// low byte of version-made-by. Split archives with DEFLATE need nothing
// newer, and never emitting ZIP64 keeps readers from expecting 64-bit
// fields.
const Version = 20

// CreatorUnix is the version-made-by high byte marking a Unix origin.
// Readers only trust the Unix mode in external attributes when it is set.
const CreatorUnix = 3

// FlagUTF8 is general-purpose bit 11, marking the entry name as UTF-8.
const FlagUTF8 = 0x0800

// Format ceilings. Sizes and offsets are 32-bit fields and entry counts
// 16-bit; exceeding them requires ZIP64, which is not emitted.
const (
	MaxSize    = 0xFFFFFFFF
	MaxEntries = 0xFFFF
	MaxNameLen = 0xFFFF
)

// DOSDirAttr is the MS-DOS directory bit in external attributes.
const DOSDirAttr = 0x10

// Method identifies the compression method stored in an entry.
type Method uint16

// Supported methods. The values are the on-disk method IDs.
const (
	Store   Method = 0
	Deflate Method = 8
)

// Valid reports whether m is a method this writer can produce.
func (m Method) Valid() bool {
	return m == Store || m == Deflate
}

func (m Method) String() string {
	switch m {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	default:
		return fmt.Sprintf("method(%d)", uint16(m))
	}
}

// LocalHeader is the record immediately preceding each entry's data.
type LocalHeader struct {
	VersionNeeded    uint16
	Flags            uint16
	Method           Method
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	Name             string
}

// Encode serializes the header. The variable part carries the name only;
// no extra field is ever emitted.
func (h *LocalHeader) Encode() ([]byte, error) {
	if len(h.Name) > MaxNameLen {
		return nil, fmt.Errorf("zipfmt: name length %d exceeds %d", len(h.Name), MaxNameLen)
	}
	b := make([]byte, LocalHeaderLen+len(h.Name))
	le := binary.LittleEndian
	le.PutUint32(b[0:], LocalHeaderSig)
	le.PutUint16(b[4:], h.VersionNeeded)
	le.PutUint16(b[6:], h.Flags)
	le.PutUint16(b[8:], uint16(h.Method))
	le.PutUint16(b[10:], h.ModTime)
	le.PutUint16(b[12:], h.ModDate)
	le.PutUint32(b[14:], h.CRC32)
	le.PutUint32(b[18:], h.CompressedSize)
	le.PutUint32(b[22:], h.UncompressedSize)
	le.PutUint16(b[26:], uint16(len(h.Name)))
	le.PutUint16(b[28:], 0)
	copy(b[LocalHeaderLen:], h.Name)
	return b, nil
}

// ParseLocalHeader decodes a local file header from the start of b.
// It returns the header and the total number of bytes it occupies,
// including the name and any extra field.
func ParseLocalHeader(b []byte) (LocalHeader, int, error) {
	var h LocalHeader
	if len(b) < LocalHeaderLen {
		return h, 0, fmt.Errorf("zipfmt: local header truncated: %d bytes", len(b))
	}
	le := binary.LittleEndian
	if sig := le.Uint32(b[0:]); sig != LocalHeaderSig {
		return h, 0, fmt.Errorf("zipfmt: bad local header signature 0x%08x", sig)
	}
	h.VersionNeeded = le.Uint16(b[4:])
	h.Flags = le.Uint16(b[6:])
	h.Method = Method(le.Uint16(b[8:]))
	h.ModTime = le.Uint16(b[10:])
	h.ModDate = le.Uint16(b[12:])
	h.CRC32 = le.Uint32(b[14:])
	h.CompressedSize = le.Uint32(b[18:])
	h.UncompressedSize = le.Uint32(b[22:])
	nameLen := int(le.Uint16(b[26:]))
	extraLen := int(le.Uint16(b[28:]))
	n := LocalHeaderLen + nameLen + extraLen
	if len(b) < n {
		return h, 0, fmt.Errorf("zipfmt: local header truncated: need %d bytes, have %d", n, len(b))
	}
	h.Name = string(b[LocalHeaderLen : LocalHeaderLen+nameLen])
	return h, n, nil
}

// EncodeSizes produces the 12-byte patch record overwriting the CRC-32,
// compressed size, and uncompressed size fields at LocalSizesOffset.
func EncodeSizes(crc, compressed, uncompressed uint32) []byte {
	b := make([]byte, LocalSizesLen)
	le := binary.LittleEndian
	le.PutUint32(b[0:], crc)
	le.PutUint32(b[4:], compressed)
	le.PutUint32(b[8:], uncompressed)
	return b
}

// CentralHeader is the per-entry record in the central directory.
type CentralHeader struct {
	VersionMadeBy     uint16
	VersionNeeded     uint16
	Flags             uint16
	Method            Method
	ModTime           uint16
	ModDate           uint16
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	DiskStart         uint16
	InternalAttrs     uint16
	ExternalAttrs     uint32
	LocalHeaderOffset uint32
	Name              string
}

// Encode serializes the header. No extra field or comment is ever emitted.
func (h *CentralHeader) Encode() ([]byte, error) {
	if len(h.Name) > MaxNameLen {
		return nil, fmt.Errorf("zipfmt: name length %d exceeds %d", len(h.Name), MaxNameLen)
	}
	b := make([]byte, CentralHeaderLen+len(h.Name))
	le := binary.LittleEndian
	le.PutUint32(b[0:], CentralHeaderSig)
	le.PutUint16(b[4:], h.VersionMadeBy)
	le.PutUint16(b[6:], h.VersionNeeded)
	le.PutUint16(b[8:], h.Flags)
	le.PutUint16(b[10:], uint16(h.Method))
	le.PutUint16(b[12:], h.ModTime)
	le.PutUint16(b[14:], h.ModDate)
	le.PutUint32(b[16:], h.CRC32)
	le.PutUint32(b[20:], h.CompressedSize)
	le.PutUint32(b[24:], h.UncompressedSize)
	le.PutUint16(b[28:], uint16(len(h.Name)))
	le.PutUint16(b[30:], 0)
	le.PutUint16(b[32:], 0)
	le.PutUint16(b[34:], h.DiskStart)
	le.PutUint16(b[36:], h.InternalAttrs)
	le.PutUint32(b[38:], h.ExternalAttrs)
	le.PutUint32(b[42:], h.LocalHeaderOffset)
	copy(b[CentralHeaderLen:], h.Name)
	return b, nil
}

// ParseCentralHeader decodes a central directory header from the start of
// b, returning the header and the total bytes it occupies including the
// name, extra field, and comment.
func ParseCentralHeader(b []byte) (CentralHeader, int, error) {
	var h CentralHeader
	if len(b) < CentralHeaderLen {
		return h, 0, fmt.Errorf("zipfmt: central header truncated: %d bytes", len(b))
	}
	le := binary.LittleEndian
	if sig := le.Uint32(b[0:]); sig != CentralHeaderSig {
		return h, 0, fmt.Errorf("zipfmt: bad central header signature 0x%08x", sig)
	}
	h.VersionMadeBy = le.Uint16(b[4:])
	h.VersionNeeded = le.Uint16(b[6:])
	h.Flags = le.Uint16(b[8:])
	h.Method = Method(le.Uint16(b[10:]))
	h.ModTime = le.Uint16(b[12:])
	h.ModDate = le.Uint16(b[14:])
	h.CRC32 = le.Uint32(b[16:])
	h.CompressedSize = le.Uint32(b[20:])
	h.UncompressedSize = le.Uint32(b[24:])
	nameLen := int(le.Uint16(b[28:]))
	extraLen := int(le.Uint16(b[30:]))
	commentLen := int(le.Uint16(b[32:]))
	h.DiskStart = le.Uint16(b[34:])
	h.InternalAttrs = le.Uint16(b[36:])
	h.ExternalAttrs = le.Uint32(b[38:])
	h.LocalHeaderOffset = le.Uint32(b[42:])
	n := CentralHeaderLen + nameLen + extraLen + commentLen
	if len(b) < n {
		return h, 0, fmt.Errorf("zipfmt: central header truncated: need %d bytes, have %d", n, len(b))
	}
	h.Name = string(b[CentralHeaderLen : CentralHeaderLen+nameLen])
	return h, n, nil
}

// EOCD is the end of central directory record.
type EOCD struct {
	DiskNumber    uint16
	CDStartDisk   uint16
	EntriesOnDisk uint16
	TotalEntries  uint16
	CDSize        uint32
	CDOffset      uint32
	Comment       string
}

// Encode serializes the record.
func (e *EOCD) Encode() ([]byte, error) {
	if len(e.Comment) > MaxNameLen {
		return nil, fmt.Errorf("zipfmt: comment length %d exceeds %d", len(e.Comment), MaxNameLen)
	}
	b := make([]byte, EOCDLen+len(e.Comment))
	le := binary.LittleEndian
	le.PutUint32(b[0:], EOCDSig)
	le.PutUint16(b[4:], e.DiskNumber)
	le.PutUint16(b[6:], e.CDStartDisk)
	le.PutUint16(b[8:], e.EntriesOnDisk)
	le.PutUint16(b[10:], e.TotalEntries)
	le.PutUint32(b[12:], e.CDSize)
	le.PutUint32(b[16:], e.CDOffset)
	le.PutUint16(b[20:], uint16(len(e.Comment)))
	copy(b[EOCDLen:], e.Comment)
	return b, nil
}

// ParseEOCD decodes an end of central directory record from the start of b.
func ParseEOCD(b []byte) (EOCD, int, error) {
	var e EOCD
	if len(b) < EOCDLen {
		return e, 0, fmt.Errorf("zipfmt: end of central directory truncated: %d bytes", len(b))
	}
	le := binary.LittleEndian
	if sig := le.Uint32(b[0:]); sig != EOCDSig {
		return e, 0, fmt.Errorf("zipfmt: bad end of central directory signature 0x%08x", sig)
	}
	e.DiskNumber = le.Uint16(b[4:])
	e.CDStartDisk = le.Uint16(b[6:])
	e.EntriesOnDisk = le.Uint16(b[8:])
	e.TotalEntries = le.Uint16(b[10:])
	e.CDSize = le.Uint32(b[12:])
	e.CDOffset = le.Uint32(b[16:])
	commentLen := int(le.Uint16(b[20:]))
	n := EOCDLen + commentLen
	if len(b) < n {
		return e, 0, fmt.Errorf("zipfmt: end of central directory truncated: need %d bytes, have %d", n, len(b))
	}
	e.Comment = string(b[EOCDLen : EOCDLen+commentLen])
	return e, n, nil
}

// DOSDateTime converts the wall clock of t to MS-DOS date and time words.
// DOS time has two-second resolution and cannot represent years before
// 1980; earlier times collapse to 1980-01-01 00:00:00.
func DOSDateTime(t time.Time) (date, tim uint16) {
	if t.Year() < 1980 {
		return 0x21, 0
	}
	date = uint16((t.Year()-1980)<<9 | int(t.Month())<<5 | t.Day())
	tim = uint16(t.Hour()<<11 | t.Minute()<<5 | t.Second()/2)
	return date, tim
}
