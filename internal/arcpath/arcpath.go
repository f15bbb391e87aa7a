// Package arcpath validates and normalizes archive member names. Archive
// names are slash-separated, relative, and UTF-8; anything that could
// escape an extraction root is rejected rather than repaired.
package arcpath

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// MaxLen is the longest encoded name the ZIP name-length field can carry.
const MaxLen = 0xFFFF

// ErrUnsafe is returned for names that are empty, contain null bytes,
// are absolute, carry a drive letter, traverse outside the archive root,
// or exceed MaxLen.
var ErrUnsafe = errors.New("splitzip: unsafe archive path")

// Clean normalizes name to archive form: backslashes become forward
// slashes, redundant separators and interior "." and ".." elements are
// collapsed. Names that remain unsafe after normalization are rejected.
func Clean(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnsafe)
	}
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q: contains null byte", ErrUnsafe, name)
	}

	cleaned := strings.ReplaceAll(name, `\`, "/")
	if len(cleaned) >= 2 && cleaned[1] == ':' && isDriveLetter(cleaned[0]) {
		return "", fmt.Errorf("%w: %q: drive letter", ErrUnsafe, name)
	}
	if strings.HasPrefix(cleaned, "/") {
		return "", fmt.Errorf("%w: %q: absolute path", ErrUnsafe, name)
	}

	cleaned = path.Clean(cleaned)
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("%w: %q: resolves to nothing", ErrUnsafe, name)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q: escapes archive root", ErrUnsafe, name)
	}
	if len(cleaned) > MaxLen {
		return "", fmt.Errorf("%w: name length %d exceeds %d", ErrUnsafe, len(cleaned), MaxLen)
	}
	return cleaned, nil
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
