package splitzip

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestVolumeManager builds a manager directly so boundary cases can use
// capacities far below the public minimum, keeping fixtures small.
func newTestVolumeManager(t *testing.T, out string, capacity int64) *volumeManager {
	t.Helper()
	return &volumeManager{
		outPath:  out,
		capacity: capacity,
		logger:   slog.New(slog.DiscardHandler),
	}
}

func readFileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}

func TestNewVolumeManagerSizingError(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "a.zip")
	_, err := newVolumeManager(out, MinVolumeSize-1, nil, slog.New(slog.DiscardHandler))
	require.ErrorIs(t, err, ErrVolumeSizeTooSmall)

	// The message names both the requested and the minimum size.
	assert.Contains(t, err.Error(), "65535")
	assert.Contains(t, err.Error(), "65536")

	_, err = newVolumeManager(out, MinVolumeSize, nil, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
}

func TestSplitPathNaming(t *testing.T) {
	t.Parallel()

	vm := newTestVolumeManager(t, filepath.Join("out", "archive.zip"), 100)
	assert.Equal(t, filepath.Join("out", "archive.z01"), vm.splitPath(0))
	assert.Equal(t, filepath.Join("out", "archive.z02"), vm.splitPath(1))
	assert.Equal(t, filepath.Join("out", "archive.z09"), vm.splitPath(8))
	assert.Equal(t, filepath.Join("out", "archive.z10"), vm.splitPath(9))
	assert.Equal(t, filepath.Join("out", "archive.z99"), vm.splitPath(98))
	assert.Equal(t, filepath.Join("out", "archive.z100"), vm.splitPath(99))

	// No extension to strip.
	vm = newTestVolumeManager(t, "bundle", 100)
	assert.Equal(t, "bundle.z01", vm.splitPath(0))
}

func TestVolumeManagerSpanningWrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "a.zip")
	vm := newTestVolumeManager(t, out, 100)

	data := make([]byte, 250)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, vm.write(data))

	vol, off := vm.position()
	assert.Equal(t, 2, vol)
	assert.Equal(t, int64(50), off)

	paths, err := vm.close()
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.z01"),
		filepath.Join(dir, "a.z02"),
		filepath.Join(dir, "a.z03"),
	}, paths)

	// The volume files carry the byte stream unchanged.
	var joined []byte
	for _, p := range paths {
		b, err := os.ReadFile(p)
		require.NoError(t, err)
		joined = append(joined, b...)
	}
	assert.Equal(t, data, joined)
	assert.Equal(t, int64(100), readFileSize(t, paths[0]))
	assert.Equal(t, int64(100), readFileSize(t, paths[1]))
	assert.Equal(t, int64(50), readFileSize(t, paths[2]))
}

func TestVolumeManagerEnsureSpace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	vm := newTestVolumeManager(t, filepath.Join(dir, "a.zip"), 100)

	// First call lazily opens volume 0.
	require.NoError(t, vm.ensureSpace(30))
	vol, off := vm.position()
	assert.Equal(t, 0, vol)
	assert.Equal(t, int64(0), off)

	require.NoError(t, vm.write(make([]byte, 90)))

	// Fits exactly: stays on the current volume.
	require.NoError(t, vm.ensureSpace(10))
	vol, off = vm.position()
	assert.Equal(t, 0, vol)
	assert.Equal(t, int64(90), off)

	// One byte over: advances, leaving the previous volume short.
	require.NoError(t, vm.ensureSpace(11))
	vol, off = vm.position()
	assert.Equal(t, 1, vol)
	assert.Equal(t, int64(0), off)

	// A record larger than any volume can hold is rejected outright.
	err := vm.ensureSpace(101)
	require.ErrorIs(t, err, ErrVolumeSizeTooSmall)

	require.NoError(t, vm.write(make([]byte, 20)))
	paths, err := vm.close()
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, int64(90), readFileSize(t, paths[0]))
	assert.Equal(t, int64(20), readFileSize(t, paths[1]))
}

func TestVolumeManagerWriteAt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	vm := newTestVolumeManager(t, filepath.Join(dir, "a.zip"), 100)

	require.NoError(t, vm.write(bytes.Repeat([]byte{'a'}, 150)))

	// Patch a closed volume and the currently open one.
	require.NoError(t, vm.writeAt([]byte("XYZ"), 0, 10))
	require.NoError(t, vm.writeAt([]byte("Q"), 1, 0))

	err := vm.writeAt([]byte("nope"), 5, 0)
	require.ErrorIs(t, err, ErrVolumeNotCreated)
	err = vm.writeAt([]byte("nope"), -1, 0)
	require.ErrorIs(t, err, ErrVolumeNotCreated)

	paths, err := vm.close()
	require.NoError(t, err)
	require.Len(t, paths, 2)

	first, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "XYZ", string(first[10:13]))

	second, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, byte('Q'), second[0])

	err = vm.writeAt([]byte("late"), 0, 0)
	require.ErrorIs(t, err, ErrWriterClosed)
}

func TestVolumeManagerFinalRenamesSingleVolume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "a.zip")
	vm := newTestVolumeManager(t, out, 100)

	require.NoError(t, vm.write(make([]byte, 40)))
	require.NoError(t, vm.startFinalVolume())

	// The lone volume was renamed in place; no .z01 remains.
	assert.Equal(t, []string{out}, vm.paths)
	_, err := os.Stat(filepath.Join(dir, "a.z01"))
	assert.True(t, os.IsNotExist(err))

	// The final volume is unbounded.
	require.NoError(t, vm.write(make([]byte, 500)))
	paths, err := vm.close()
	require.NoError(t, err)
	require.Equal(t, []string{out}, paths)
	assert.Equal(t, int64(540), readFileSize(t, out))
}

func TestVolumeManagerFinalAfterFullVolume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "a.zip")
	vm := newTestVolumeManager(t, out, 100)

	// Exactly full counts as full: a fresh final volume opens instead of a
	// rename.
	require.NoError(t, vm.write(make([]byte, 100)))
	require.NoError(t, vm.startFinalVolume())
	require.NoError(t, vm.write(make([]byte, 10)))

	paths, err := vm.close()
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.z01"), out}, paths)
	assert.Equal(t, int64(100), readFileSize(t, paths[0]))
	assert.Equal(t, int64(10), readFileSize(t, paths[1]))
}

func TestVolumeManagerFinalOnEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "a.zip")
	vm := newTestVolumeManager(t, out, 100)

	require.NoError(t, vm.startFinalVolume())
	require.NoError(t, vm.startFinalVolume())

	paths, err := vm.close()
	require.NoError(t, err)
	require.Equal(t, []string{out}, paths)
	assert.Equal(t, int64(0), readFileSize(t, out))
}

func TestVolumeManagerCloseIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	vm := newTestVolumeManager(t, filepath.Join(dir, "a.zip"), 100)
	require.NoError(t, vm.write([]byte("hello")))

	first, err := vm.close()
	require.NoError(t, err)
	second, err := vm.close()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.ErrorIs(t, vm.ensureSpace(1), ErrWriterClosed)
	require.ErrorIs(t, vm.write([]byte("x")), ErrWriterClosed)
	require.ErrorIs(t, vm.startFinalVolume(), ErrWriterClosed)
}

func TestVolumeManagerManyVolumes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var logBuf bytes.Buffer
	vm := &volumeManager{
		outPath:  filepath.Join(dir, "a.zip"),
		capacity: 64,
		logger:   slog.New(slog.NewTextHandler(&logBuf, nil)),
	}

	// 100 full volumes plus one byte: the suffix grows to three digits
	// rather than stopping at .z99.
	require.NoError(t, vm.write(make([]byte, 64*100+1)))
	paths, err := vm.close()
	require.NoError(t, err)
	require.Len(t, paths, 101)

	assert.Equal(t, filepath.Join(dir, "a.z99"), paths[98])
	assert.Equal(t, filepath.Join(dir, "a.z100"), paths[99])
	assert.Equal(t, filepath.Join(dir, "a.z101"), paths[100])
	assert.Contains(t, logBuf.String(), ".z99")
}

func TestVolumeManagerOpenFailure(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "missing", "a.zip")
	vm := newTestVolumeManager(t, out, 100)
	err := vm.write([]byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open volume 0")
}
