package splitzip

import (
	"bufio"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// MinVolumeSize is the smallest accepted volume capacity. A volume must at
// least hold one maximal local header and a sliver of data.
const MinVolumeSize = 64 << 10

// Split suffixes are conventionally two digits; past this many volumes the
// manager keeps going but warns, since some tools stop at .z99.
const maxTwoDigitVolumes = 99

// volumeManager maps the logical archive byte stream onto a bounded
// sequence of volume files. Appends go through a buffered writer on the
// current volume; patches reach any existing volume through a separate
// random-access handle. Callers identify volumes by logical index; the
// manager resolves index to path at use time, because the path of a
// single-volume archive changes when it becomes final.
type volumeManager struct {
	outPath  string // canonical output path, used by the final volume
	capacity int64
	onVolume VolumeFunc
	logger   *slog.Logger

	f       *os.File      // current volume, nil until the first write
	w       *bufio.Writer // buffers appends to f
	index   int           // ordinal of the current volume
	written int64         // bytes appended to the current volume
	total   int64         // bytes appended across all volumes
	paths   []string      // volume paths in creation order
	final   bool          // the current volume is the unbounded final one
	closed  bool
}

func newVolumeManager(outPath string, capacity int64, onVolume VolumeFunc, logger *slog.Logger) (*volumeManager, error) {
	if capacity < MinVolumeSize {
		return nil, fmt.Errorf("%w: requested %d bytes, minimum is %d",
			ErrVolumeSizeTooSmall, capacity, int64(MinVolumeSize))
	}
	return &volumeManager{
		outPath:  outPath,
		capacity: capacity,
		onVolume: onVolume,
		logger:   logger,
	}, nil
}

// splitPath names the non-final volume with the given index: the output
// path's extension is replaced by a 1-based two-digit suffix (.z01, .z02,
// …), growing to three digits past .z99.
func (vm *volumeManager) splitPath(index int) string {
	ext := filepath.Ext(vm.outPath)
	stem := strings.TrimSuffix(vm.outPath, ext)
	return fmt.Sprintf("%s.z%02d", stem, index+1)
}

// openVolume creates the file for a new volume and makes it current.
func (vm *volumeManager) openVolume(index int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("splitzip: open volume %d: %w", index, err)
	}
	vm.f = f
	vm.w = bufio.NewWriter(f)
	vm.index = index
	vm.written = 0
	vm.paths = append(vm.paths, path)
	if index == maxTwoDigitVolumes {
		vm.logger.Warn("volume count passed two-digit suffixes; some tools stop at .z99",
			"volumes", index+1)
	}
	vm.logger.Debug("opened volume", "index", index, "path", path)
	if vm.onVolume != nil {
		vm.onVolume(index, path)
	}
	return nil
}

// closeCurrent flushes and closes the current volume handle, if any.
func (vm *volumeManager) closeCurrent() error {
	if vm.f == nil {
		return nil
	}
	if err := vm.w.Flush(); err != nil {
		return err
	}
	if err := vm.f.Close(); err != nil {
		return err
	}
	vm.f = nil
	vm.w = nil
	return nil
}

func (vm *volumeManager) nextVolume() error {
	if err := vm.closeCurrent(); err != nil {
		return err
	}
	return vm.openVolume(vm.index+1, vm.splitPath(vm.index+1))
}

// remaining reports the bytes still available in the current volume.
func (vm *volumeManager) remaining() int64 {
	if vm.final {
		return math.MaxInt64
	}
	return vm.capacity - vm.written
}

// position reports the logical append position as (volume index, offset
// within that volume). Valid once a volume is open.
func (vm *volumeManager) position() (volume int, offset int64) {
	return vm.index, vm.written
}

// ensureSpace advances to the next volume when fewer than n bytes remain
// in the current one, so a record of n bytes cannot straddle a boundary.
// It lazily opens volume 0 and is a no-op on the final volume.
func (vm *volumeManager) ensureSpace(n int64) error {
	if vm.closed {
		return ErrWriterClosed
	}
	if vm.f == nil {
		if err := vm.openVolume(0, vm.splitPath(0)); err != nil {
			return err
		}
	}
	if vm.final {
		return nil
	}
	if n > vm.capacity {
		return fmt.Errorf("%w: record of %d bytes cannot fit volume capacity %d",
			ErrVolumeSizeTooSmall, n, vm.capacity)
	}
	if vm.remaining() < n {
		return vm.nextVolume()
	}
	return nil
}

// write appends p to the current volume, spanning into as many subsequent
// volumes as the data needs. Headers must not take this path when they
// could straddle a boundary; callers reserve room with ensureSpace first.
func (vm *volumeManager) write(p []byte) error {
	if vm.closed {
		return ErrWriterClosed
	}
	if vm.f == nil {
		if err := vm.openVolume(0, vm.splitPath(0)); err != nil {
			return err
		}
	}
	for len(p) > 0 {
		n := int64(len(p))
		if !vm.final {
			rem := vm.capacity - vm.written
			if rem == 0 {
				if err := vm.nextVolume(); err != nil {
					return err
				}
				continue
			}
			if rem < n {
				n = rem
			}
		}
		if _, err := vm.w.Write(p[:n]); err != nil {
			return err
		}
		vm.written += n
		vm.total += n
		p = p[n:]
	}
	return nil
}

// writeAt patches already-written bytes in an existing volume through a
// separate handle. The current volume's buffered appends are flushed
// first, so a patch landing in the currently open volume cannot interleave
// with unflushed data.
func (vm *volumeManager) writeAt(p []byte, volume int, offset int64) error {
	if vm.closed {
		return ErrWriterClosed
	}
	if volume < 0 || volume >= len(vm.paths) {
		return fmt.Errorf("%w: volume %d", ErrVolumeNotCreated, volume)
	}
	if vm.w != nil {
		if err := vm.w.Flush(); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(vm.paths[volume], os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(p, offset); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// startFinalVolume transitions to the terminal unbounded volume that will
// carry the central directory. With nothing written yet, the output path
// itself becomes the only volume. With exactly one non-full volume, that
// volume is renamed in place to the output path, so an archive that fits
// leaves no .z01 behind. Otherwise a fresh volume opens at the output
// path. Idempotent once final.
func (vm *volumeManager) startFinalVolume() error {
	if vm.closed {
		return ErrWriterClosed
	}
	if vm.final {
		return nil
	}
	if vm.f == nil {
		vm.final = true
		return vm.openVolume(0, vm.outPath)
	}
	if vm.index == 0 && vm.written < vm.capacity {
		if err := vm.w.Flush(); err != nil {
			return err
		}
		if err := vm.f.Close(); err != nil {
			return err
		}
		if err := os.Rename(vm.paths[0], vm.outPath); err != nil {
			return fmt.Errorf("splitzip: rename volume to %s: %w", vm.outPath, err)
		}
		f, err := os.OpenFile(vm.outPath, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			return fmt.Errorf("splitzip: reopen final volume: %w", err)
		}
		vm.f = f
		vm.w = bufio.NewWriter(f)
		vm.paths[0] = vm.outPath
		vm.final = true
		vm.logger.Debug("renamed single volume to final", "path", vm.outPath)
		return nil
	}
	if err := vm.closeCurrent(); err != nil {
		return err
	}
	vm.final = true
	return vm.openVolume(vm.index+1, vm.outPath)
}

// close flushes and closes the current handle and returns the ordered
// volume paths. Idempotent; repeated calls return the same list.
func (vm *volumeManager) close() ([]string, error) {
	if vm.closed {
		return vm.paths, nil
	}
	vm.closed = true
	if err := vm.closeCurrent(); err != nil {
		return vm.paths, err
	}
	vm.logger.Debug("volumes closed", "volumes", len(vm.paths), "bytes", vm.total)
	return vm.paths, nil
}
