package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogame/backend/internal/apperr"
)

func TestValidatePathComponent(t *testing.T) {
	tests := []struct {
		name      string
		component string
		wantKind  apperr.Kind
	}{
		{"plain name", "backup_20240101_120000", ""},
		{"alphanumeric with hyphen", "my-game_2", ""},
		{"dotted file name", "save.dat", ""},
		{"empty", "", apperr.KindInvalidInput},
		{"parent traversal", "..", apperr.KindPathTraversal},
		{"embedded traversal", "a..b", apperr.KindPathTraversal},
		{"dot slash", "./x", apperr.KindPathTraversal},
		{"dot backslash", ".\\x", apperr.KindPathTraversal},
		{"forward slash", "a/b", apperr.KindPathTraversal},
		{"backslash", "a\\b", apperr.KindPathTraversal},
		{"leading slash", "/etc", apperr.KindPathTraversal},
		{"drive letter", "C:stuff", apperr.KindPathTraversal},
		{"angle bracket", "a<b", apperr.KindInvalidInput},
		{"pipe", "a|b", apperr.KindInvalidInput},
		{"question mark", "a?b", apperr.KindInvalidInput},
		{"asterisk", "a*b", apperr.KindInvalidInput},
		{"null byte", "a\x00b", apperr.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathComponent(tt.component)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantKind), "got %v", err)
		})
	}
}

func TestSafeJoin(t *testing.T) {
	base := t.TempDir()

	t.Run("valid component", func(t *testing.T) {
		joined, err := SafeJoin(base, "backup_20240101_120000")
		require.NoError(t, err)
		assert.Equal(t, "backup_20240101_120000", filepath.Base(joined))
	})

	t.Run("existing target", func(t *testing.T) {
		require.NoError(t, os.Mkdir(filepath.Join(base, "archive"), 0o755))
		joined, err := SafeJoin(base, "archive")
		require.NoError(t, err)
		assert.DirExists(t, joined)
	})

	t.Run("traversal rejected", func(t *testing.T) {
		_, err := SafeJoin(base, "../../etc/passwd")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.KindPathTraversal))
	})

	t.Run("result contained in base", func(t *testing.T) {
		joined, err := SafeJoin(base, "newfile")
		require.NoError(t, err)
		canonicalBase, err := filepath.EvalSymlinks(base)
		require.NoError(t, err)
		rel, err := filepath.Rel(canonicalBase, joined)
		require.NoError(t, err)
		assert.Equal(t, "newfile", rel)
	})

	t.Run("symlink escape rejected", func(t *testing.T) {
		outside := t.TempDir()
		link := filepath.Join(base, "escape")
		if err := os.Symlink(outside, link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
		_, err := SafeJoin(base, "escape")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.KindPathTraversal))
	})
}

func TestSafeExpandTilde(t *testing.T) {
	t.Run("home relative", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		got, err := SafeExpandTilde("~/saves")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "saves"), got)
	})

	t.Run("absolute unchanged", func(t *testing.T) {
		got, err := SafeExpandTilde("/abs/saves")
		require.NoError(t, err)
		assert.Equal(t, "/abs/saves", got)
	})

	t.Run("traversal after tilde", func(t *testing.T) {
		_, err := SafeExpandTilde("~/../etc")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.KindPathTraversal))
	})

	t.Run("traversal without tilde", func(t *testing.T) {
		_, err := SafeExpandTilde("/srv/../etc")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.KindPathTraversal))
	})
}
