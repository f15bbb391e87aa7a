package splitzip

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/splitzip/internal/arcpath"
	"github.com/meigma/splitzip/internal/platform"
	"github.com/meigma/splitzip/internal/zipfmt"
)

// Add writes the file or directory at path into the archive. Directories
// recurse in sorted order, recording an entry for each directory itself,
// unless AddWithoutRecursion is given. The archive name defaults to the
// path's base name; AddWithName replaces it (children keep their names
// under the replacement). Symlinks and irregular files are skipped with a
// warning, never followed.
func (w *Writer) Add(path string, opts ...AddOption) error {
	if w.closed || w.aborted {
		return ErrWriterClosed
	}
	ac, err := w.newAddConfig(opts)
	if err != nil {
		return err
	}
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	name := ac.name
	if name == "" {
		name = filepath.Base(path)
	}
	cleaned, err := arcpath.Clean(name)
	if err != nil {
		return err
	}
	mode := info.Mode()
	switch {
	case mode&fs.ModeSymlink != 0:
		w.log().Warn("skipping symlink", "path", path)
		return nil
	case mode.IsDir():
		return w.addDir(path, cleaned, info, ac)
	case mode.IsRegular():
		return w.addFile(path, cleaned, info, ac)
	default:
		w.log().Warn("skipping irregular file", "path", path, "mode", mode.String())
		return nil
	}
}

// addFile streams one regular file as an entry named name. The open
// refuses symlinks, so a path swapped underneath the earlier stat is
// skipped rather than followed.
func (w *Writer) addFile(path, name string, info fs.FileInfo, ac addConfig) error {
	if info.Size() > zipfmt.MaxSize {
		return fmt.Errorf("%w: %s: file size %d exceeds %d",
			ErrSizeOverflow, path, info.Size(), uint32(zipfmt.MaxSize))
	}
	f, err := platform.OpenNoFollow(path)
	if err != nil {
		if errors.Is(err, platform.ErrSymlink) {
			w.log().Warn("skipping symlink", "path", path)
			return nil
		}
		return err
	}
	defer f.Close()

	method := ac.method
	if method == Deflate && w.shouldSkipCompression(name, info) {
		method = Store
	}
	meta := entryMeta{
		name:    name,
		method:  method,
		level:   ac.level,
		mode:    info.Mode().Perm(),
		modTime: info.ModTime(),
		size:    info.Size(),
	}
	return w.writeEntry(meta, f)
}

// addDir records a directory entry for dir and, when recursing, walks its
// children in the sorted order os.ReadDir yields.
func (w *Writer) addDir(dir, name string, info fs.FileInfo, ac addConfig) error {
	meta := entryMeta{
		name:    name + "/",
		method:  Store,
		mode:    fs.ModeDir | info.Mode().Perm(),
		modTime: info.ModTime(),
		dir:     true,
	}
	if err := w.writeEntry(meta, nil); err != nil {
		return err
	}
	if !ac.recurse {
		return nil
	}

	children, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, de := range children {
		child := filepath.Join(dir, de.Name())
		cinfo, err := de.Info()
		if err != nil {
			return err
		}
		childName, err := arcpath.Clean(name + "/" + de.Name())
		if err != nil {
			return err
		}
		mode := cinfo.Mode()
		switch {
		case mode&fs.ModeSymlink != 0:
			w.log().Warn("skipping symlink", "path", child)
		case mode.IsDir():
			if err := w.addDir(child, childName, cinfo, ac); err != nil {
				return err
			}
		case mode.IsRegular():
			if err := w.addFile(child, childName, cinfo, ac); err != nil {
				return err
			}
		default:
			w.log().Warn("skipping irregular file", "path", child, "mode", mode.String())
		}
	}
	return nil
}
