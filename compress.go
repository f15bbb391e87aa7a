package splitzip

import (
	"io/fs"
	"path"
	"strings"
)

// SkipCompressionFunc returns true when a file added from the filesystem
// should be stored uncompressed. It is called once per file and should be
// inexpensive. It is not consulted for AddBytes or AddReader entries.
type SkipCompressionFunc func(name string, info fs.FileInfo) bool

// DefaultSkipCompression returns a SkipCompressionFunc that skips files
// smaller than minSize and files with known already-compressed extensions.
func DefaultSkipCompression(minSize int64) SkipCompressionFunc {
	return func(name string, info fs.FileInfo) bool {
		if info != nil && minSize > 0 && info.Size() < minSize {
			return true
		}
		ext := strings.ToLower(path.Ext(name))
		_, ok := defaultSkipCompressionExts[ext]
		return ok
	}
}

func (w *Writer) shouldSkipCompression(name string, info fs.FileInfo) bool {
	for _, fn := range w.cfg.skip {
		if fn == nil {
			continue
		}
		if fn(name, info) {
			return true
		}
	}
	return false
}

var defaultSkipCompressionExts = map[string]struct{}{
	".7z":    {},
	".aac":   {},
	".avif":  {},
	".br":    {},
	".bz2":   {},
	".flac":  {},
	".gif":   {},
	".gz":    {},
	".heic":  {},
	".ico":   {},
	".jpeg":  {},
	".jpg":   {},
	".m4v":   {},
	".mkv":   {},
	".mov":   {},
	".mp3":   {},
	".mp4":   {},
	".ogg":   {},
	".opus":  {},
	".pdf":   {},
	".png":   {},
	".rar":   {},
	".tgz":   {},
	".wav":   {},
	".webm":  {},
	".webp":  {},
	".woff":  {},
	".woff2": {},
	".xz":    {},
	".zip":   {},
	".zst":   {},
}
