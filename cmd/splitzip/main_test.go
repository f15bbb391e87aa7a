package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/splitzip"
)

func TestRunCreateValidation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	out := filepath.Join(dir, "a.zip")

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing output", []string{"-s", "1MB", src}, "--output is required"},
		{"missing size", []string{"-o", out, src}, "--split-size is required"},
		{"no paths", []string{"-o", out, "-s", "1MB"}, "at least one PATH"},
		{"store and level", []string{"-o", out, "-s", "1MB", "-0", "-l", "9", src}, "mutually exclusive"},
		{"unknown flag", []string{"--frobnicate"}, "unknown flag"},
		{"bad size", []string{"-o", out, "-s", "banana", src}, "parse size"},
		{"missing source", []string{"-o", out, "-s", "1MB", filepath.Join(dir, "nope")}, "no such file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := runCreate(tc.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRunCreateArchives(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "f.txt"), []byte("hello"), 0o644))

	out := filepath.Join(dir, "a.zip")
	err := run([]string{"create", "-o", out, "-s", "1MB", "-q", src})
	require.NoError(t, err)

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 2)
	assert.Equal(t, "src/", zr.File[0].Name)
	assert.Equal(t, "src/f.txt", zr.File[1].Name)
}

func TestRunDispatch(t *testing.T) {
	t.Parallel()

	require.NoError(t, run([]string{"--version"}))
	require.NoError(t, run([]string{"help"}))

	err := run([]string{"bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")

	err = run(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command required")
}

func TestVersionString(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(versionString(), "splitzip "))
}

func TestCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1 entry", count(1, "entry", "entries"))
	assert.Equal(t, "3 entries", count(3, "entry", "entries"))
	assert.Equal(t, "0 volumes", count(0, "volume", "volumes"))
}

func TestBar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[░░░░░░░░░░]", bar(0, 100))
	assert.Equal(t, "[█████░░░░░]", bar(50, 100))
	assert.Equal(t, "[██████████]", bar(100, 100))
	assert.Equal(t, "[██████████]", bar(200, 100))
	assert.Equal(t, "[░░░░░░░░░░]", bar(10, 0))
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.z01")
	p2 := filepath.Join(dir, "a.zip")
	require.NoError(t, os.WriteFile(p1, make([]byte, 1000), 0o644))
	require.NoError(t, os.WriteFile(p2, make([]byte, 500), 0o644))

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, []string{p1, p2}, 3))

	out := buf.String()
	assert.Contains(t, out, "a.z01")
	assert.Contains(t, out, "1.0 kB")
	assert.Contains(t, out, "500 B")
	assert.Contains(t, out, "3 entries, 2 volumes, 1.5 kB total")
}

func TestStatusLineDisabledOffTerminal(t *testing.T) {
	t.Parallel()

	f, err := os.CreateTemp(t.TempDir(), "tty")
	require.NoError(t, err)
	defer f.Close()

	status := newStatusLine(f, true)
	assert.False(t, status.enabled)

	// All rendering is a no-op when disabled.
	status.progress(splitzip.ProgressEvent{Name: "x", BytesDone: 1, BytesTotal: 2})
	status.clear()
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestStatusLineDraw(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	status := &statusLine{w: &buf, enabled: true}

	status.progress(splitzip.ProgressEvent{Name: "big.bin", BytesDone: 10, BytesTotal: 100})
	status.progress(splitzip.ProgressEvent{Name: "big.bin", BytesDone: 100, BytesTotal: 100})
	status.clear()

	out := buf.String()
	assert.Contains(t, out, "big.bin")
	assert.Contains(t, out, "100 B")
	assert.True(t, strings.HasPrefix(out, "\r"))
}
