package splitzip

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"log/slog"
	"slices"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/meigma/splitzip/internal/arcpath"
	"github.com/meigma/splitzip/internal/zipfmt"
)

// chunkSize is the buffer size entry data is streamed in. Each chunk
// updates the CRC and may fire a progress event.
const chunkSize = 64 << 10

// maxDiskIndex is the largest volume ordinal the 16-bit disk fields of the
// central directory can reference.
const maxDiskIndex = 0xFFFF

// Writer builds a split ZIP archive. Entries are written in call order:
// each one gets a local header with placeholder sizes, its data is
// streamed through the compressor into the volume sequence, and the
// header is patched once the real CRC and sizes are known. Close writes
// the central directory onto the final volume. A Writer is not safe for
// concurrent use.
type Writer struct {
	cfg     config
	vm      *volumeManager
	buf     []byte
	entries []Entry
	paths   []string
	closed  bool
	aborted bool
}

// entryMeta carries everything writeEntry needs to know about a pending
// entry before its data streams.
type entryMeta struct {
	name    string // sanitized; directories end in "/"
	method  Method
	level   int
	mode    fs.FileMode
	modTime time.Time
	size    int64 // expected bytes for progress totals, -1 unknown
	dir     bool
}

// NewWriter creates a split ZIP writer producing volumes of at most
// splitSize bytes. Non-final volumes are named by replacing path's
// extension with .z01, .z02, …; the final volume, which carries the
// central directory, uses path itself. splitSize below MinVolumeSize is
// rejected.
func NewWriter(path string, splitSize int64, opts ...Option) (*Writer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if !cfg.method.Valid() {
		return nil, fmt.Errorf("splitzip: unsupported compression method %s", cfg.method)
	}
	if cfg.level < 1 || cfg.level > 9 {
		return nil, fmt.Errorf("splitzip: compression level %d outside 1..9", cfg.level)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	vm, err := newVolumeManager(path, splitSize, cfg.onVolume, logger)
	if err != nil {
		return nil, err
	}
	return &Writer{
		cfg: cfg,
		vm:  vm,
		buf: make([]byte, chunkSize),
	}, nil
}

func (w *Writer) log() *slog.Logger {
	if w.cfg.logger != nil {
		return w.cfg.logger
	}
	return slog.New(slog.DiscardHandler)
}

func (w *Writer) reportProgress(name string, done, total int64) {
	if w.cfg.progress == nil {
		return
	}
	w.cfg.progress(ProgressEvent{Name: name, BytesDone: done, BytesTotal: total})
}

// AddBytes writes an entry named name holding data. The mode defaults to
// 0o644 and the timestamp to now; both can be overridden with AddWithMode
// and AddWithModTime.
func (w *Writer) AddBytes(name string, data []byte, opts ...AddOption) error {
	if w.closed || w.aborted {
		return ErrWriterClosed
	}
	ac, err := w.newAddConfig(opts)
	if err != nil {
		return err
	}
	cleaned, err := arcpath.Clean(name)
	if err != nil {
		return err
	}
	meta := entryMeta{
		name:    cleaned,
		method:  ac.method,
		level:   ac.level,
		mode:    ac.mode,
		modTime: ac.modTime,
		size:    int64(len(data)),
	}
	return w.writeEntry(meta, bytes.NewReader(data))
}

// AddReader writes an entry named name with the contents of r, streamed
// to EOF. Progress events report a total of -1 unless AddWithSize
// declares one.
func (w *Writer) AddReader(name string, r io.Reader, opts ...AddOption) error {
	if w.closed || w.aborted {
		return ErrWriterClosed
	}
	if r == nil {
		return errors.New("splitzip: nil reader")
	}
	ac, err := w.newAddConfig(opts)
	if err != nil {
		return err
	}
	cleaned, err := arcpath.Clean(name)
	if err != nil {
		return err
	}
	meta := entryMeta{
		name:    cleaned,
		method:  ac.method,
		level:   ac.level,
		mode:    ac.mode,
		modTime: ac.modTime,
		size:    ac.size,
	}
	return w.writeEntry(meta, r)
}

// writeEntry runs the per-entry protocol: local header with zeroed
// CRC/sizes at a boundary-safe position, streamed payload, then a 12-byte
// patch at the recorded site. Directory entries stop after the header;
// their zeros are already correct.
func (w *Writer) writeEntry(meta entryMeta, src io.Reader) error {
	if w.closed || w.aborted {
		return ErrWriterClosed
	}
	if len(w.entries) >= MaxEntries {
		return fmt.Errorf("%w: %d entries is the most the format holds", ErrTooManyEntries, MaxEntries)
	}

	date, tim := zipfmt.DOSDateTime(meta.modTime)
	hdr := zipfmt.LocalHeader{
		VersionNeeded: zipfmt.Version,
		Flags:         zipfmt.FlagUTF8,
		Method:        meta.method,
		ModTime:       tim,
		ModDate:       date,
		Name:          meta.name,
	}
	hb, err := hdr.Encode()
	if err != nil {
		return err
	}
	if err := w.vm.ensureSpace(int64(len(hb))); err != nil {
		return err
	}
	vol, off := w.vm.position()
	if err := w.vm.write(hb); err != nil {
		return err
	}

	e := Entry{
		Name:     meta.name,
		Method:   meta.method,
		Modified: meta.modTime,
		Mode:     meta.mode,
		Volume:   vol,
		Offset:   off,
	}

	if meta.dir {
		w.entries = append(w.entries, e)
		return nil
	}

	crc, csize, usize, err := w.streamPayload(meta.name, src, meta.method, meta.level, meta.size)
	if err != nil {
		return fmt.Errorf("write %s: %w", meta.name, err)
	}

	patch := zipfmt.EncodeSizes(crc, uint32(csize), uint32(usize))
	if err := w.vm.writeAt(patch, vol, off+zipfmt.LocalSizesOffset); err != nil {
		return fmt.Errorf("patch %s: %w", meta.name, err)
	}

	e.CRC32 = crc
	e.CompressedSize = uint32(csize)
	e.UncompressedSize = uint32(usize)
	w.entries = append(w.entries, e)
	w.log().Debug("entry written", "name", meta.name, "method", meta.method,
		"compressed", csize, "uncompressed", usize, "volume", vol)
	return nil
}

// streamPayload pumps src through the CRC accumulator and, for Deflate,
// the flate encoder, into the volume sequence. It returns the running
// CRC-32 and both byte counts, failing as soon as either count leaves
// 32-bit range.
func (w *Writer) streamPayload(name string, src io.Reader, method Method, level int, total int64) (uint32, int64, int64, error) {
	cw := &countingWriter{vm: w.vm}
	dst := io.Writer(cw)
	var fw *flate.Writer
	if method == Deflate {
		var err error
		fw, err = flate.NewWriter(cw, level)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("new flate writer: %w", err)
		}
		dst = fw
	}

	var crc uint32
	var usize int64
	for {
		n, rerr := src.Read(w.buf)
		if n > 0 {
			crc = crc32.Update(crc, crc32.IEEETable, w.buf[:n])
			usize += int64(n)
			if usize > zipfmt.MaxSize {
				return 0, 0, 0, fmt.Errorf("%w: uncompressed size %d exceeds %d",
					ErrSizeOverflow, usize, uint32(zipfmt.MaxSize))
			}
			if _, werr := dst.Write(w.buf[:n]); werr != nil {
				return 0, 0, 0, werr
			}
			if cw.n > zipfmt.MaxSize {
				return 0, 0, 0, fmt.Errorf("%w: compressed size %d exceeds %d",
					ErrSizeOverflow, cw.n, uint32(zipfmt.MaxSize))
			}
			w.reportProgress(name, usize, total)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return 0, 0, 0, rerr
		}
	}
	if fw != nil {
		if err := fw.Close(); err != nil {
			return 0, 0, 0, fmt.Errorf("close flate writer: %w", err)
		}
		if cw.n > zipfmt.MaxSize {
			return 0, 0, 0, fmt.Errorf("%w: compressed size %d exceeds %d",
				ErrSizeOverflow, cw.n, uint32(zipfmt.MaxSize))
		}
	}
	return crc, cw.n, usize, nil
}

// Close writes the central directory and end of central directory record
// onto the final volume, closes it, and returns the ordered volume paths.
// Closing twice returns the same list. Close after Abort reports
// ErrWriterClosed.
func (w *Writer) Close() ([]string, error) {
	if w.aborted {
		return nil, ErrWriterClosed
	}
	if w.closed {
		return w.paths, nil
	}
	if err := w.vm.startFinalVolume(); err != nil {
		return nil, err
	}
	cdVol, cdOff := w.vm.position()
	if cdVol > maxDiskIndex {
		return nil, fmt.Errorf("%w: volume index %d exceeds %d", ErrSizeOverflow, cdVol, maxDiskIndex)
	}
	if cdOff > zipfmt.MaxSize {
		return nil, fmt.Errorf("%w: central directory offset %d exceeds %d",
			ErrSizeOverflow, cdOff, uint32(zipfmt.MaxSize))
	}

	var cdSize int64
	for i := range w.entries {
		e := &w.entries[i]
		if e.Offset > zipfmt.MaxSize {
			return nil, fmt.Errorf("%w: %s: header offset %d exceeds %d",
				ErrSizeOverflow, e.Name, e.Offset, uint32(zipfmt.MaxSize))
		}
		date, tim := zipfmt.DOSDateTime(e.Modified)
		ch := zipfmt.CentralHeader{
			VersionMadeBy:     zipfmt.CreatorUnix<<8 | zipfmt.Version,
			VersionNeeded:     zipfmt.Version,
			Flags:             zipfmt.FlagUTF8,
			Method:            e.Method,
			ModTime:           tim,
			ModDate:           date,
			CRC32:             e.CRC32,
			CompressedSize:    e.CompressedSize,
			UncompressedSize:  e.UncompressedSize,
			DiskStart:         uint16(e.Volume),
			ExternalAttrs:     externalAttrs(e.Mode),
			LocalHeaderOffset: uint32(e.Offset),
			Name:              e.Name,
		}
		b, err := ch.Encode()
		if err != nil {
			return nil, err
		}
		if err := w.vm.write(b); err != nil {
			return nil, err
		}
		cdSize += int64(len(b))
	}
	if cdSize > zipfmt.MaxSize {
		return nil, fmt.Errorf("%w: central directory size %d exceeds %d",
			ErrSizeOverflow, cdSize, uint32(zipfmt.MaxSize))
	}

	eocd := zipfmt.EOCD{
		DiskNumber:    uint16(cdVol),
		CDStartDisk:   uint16(cdVol),
		EntriesOnDisk: uint16(len(w.entries)),
		TotalEntries:  uint16(len(w.entries)),
		CDSize:        uint32(cdSize),
		CDOffset:      uint32(cdOff),
	}
	eb, err := eocd.Encode()
	if err != nil {
		return nil, err
	}
	if err := w.vm.write(eb); err != nil {
		return nil, err
	}

	paths, err := w.vm.close()
	if err != nil {
		return nil, err
	}
	w.paths = paths
	w.closed = true
	w.log().Debug("archive closed", "entries", len(w.entries), "volumes", len(paths))
	return paths, nil
}

// Abort releases file handles without writing the central directory,
// leaving the volumes unreadable. It is a no-op after a successful
// Close, so `defer w.Abort()` pairs with an explicit Close.
func (w *Writer) Abort() error {
	if w.closed || w.aborted {
		return nil
	}
	w.aborted = true
	_, err := w.vm.close()
	return err
}

// Entries returns a copy of the finalized entry table in insertion order.
// An entry appears only after its data has been fully written and its
// header patched.
func (w *Writer) Entries() []Entry {
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// VolumePaths returns the paths of the volumes created so far, in
// creation order.
func (w *Writer) VolumePaths() []string {
	return slices.Clone(w.vm.paths)
}

// countingWriter forwards compressor output into the volume sequence and
// counts the bytes it passed on.
type countingWriter struct {
	vm *volumeManager
	n  int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	if err := cw.vm.write(p); err != nil {
		return 0, err
	}
	cw.n += int64(len(p))
	return len(p), nil
}
