package arcpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "file.txt", "file.txt"},
		{"nested", "a/b/c.txt", "a/b/c.txt"},
		{"backslashes", `dir\sub\file.txt`, "dir/sub/file.txt"},
		{"duplicate slashes", "a//b///c", "a/b/c"},
		{"leading dot", "./a/b", "a/b"},
		{"interior dotdot collapses", "a/../b", "b"},
		{"trailing slash", "dir/", "dir"},
		{"unicode", "docs/résumé.txt", "docs/résumé.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Clean(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanRejectsUnsafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"null byte", "a\x00b"},
		{"traversal", "../../evil"},
		{"traversal after collapse", "a/../../evil"},
		{"bare dotdot", ".."},
		{"absolute", "/etc/passwd"},
		{"drive letter", `C:\Windows\system32`},
		{"drive letter forward", "c:/temp/x"},
		{"dot only", "."},
		{"slashes only", "///"},
		{"too long", strings.Repeat("a", MaxLen+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Clean(tt.in)
			require.ErrorIs(t, err, ErrUnsafe)
		})
	}
}
