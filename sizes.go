package splitzip

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseSize converts a human-readable size such as "100MB", "64KiB", or
// "1.5 GB" to a byte count. Decimal suffixes are powers of 1000, binary
// (IEC) suffixes powers of 1024; a bare number is bytes.
func ParseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("splitzip: parse size %q: %w", s, err)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("splitzip: parse size %q: %d exceeds %d", s, n, int64(math.MaxInt64))
	}
	return int64(n), nil
}

// FormatSize renders a byte count in human-readable decimal form
// ("1.5 MB").
func FormatSize(n int64) string {
	if n < 0 {
		return fmt.Sprintf("%d B", n)
	}
	return humanize.Bytes(uint64(n))
}
