// Package security validates untrusted path components before they are
// joined into filesystem paths. Save ids and game ids travel through the
// database and the HTTP surface before they reach delete/restore, so a
// crafted identifier must never be able to escape its base directory.
package security

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rogame/backend/internal/apperr"
)

var forbiddenChars = []rune{'<', '>', ':', '"', '|', '?', '*', 0}

// ValidatePathComponent fails unless s represents exactly one path
// segment with no escape potential.
func ValidatePathComponent(s string) error {
	if s == "" {
		return apperr.New(apperr.KindInvalidInput, "path component cannot be empty")
	}
	if strings.Contains(s, "..") || strings.Contains(s, "./") || strings.Contains(s, ".\\") {
		return apperr.New(apperr.KindPathTraversal, "path traversal sequences not allowed in %q", s)
	}
	if strings.ContainsAny(s, `/\`) {
		return apperr.New(apperr.KindPathTraversal, "path separators not allowed in component %q", s)
	}
	if len(s) >= 2 && s[1] == ':' {
		return apperr.New(apperr.KindPathTraversal, "drive letters not allowed in component %q", s)
	}
	for _, c := range forbiddenChars {
		if strings.ContainsRune(s, c) {
			return apperr.New(apperr.KindInvalidInput, "invalid characters in path component %q", s)
		}
	}
	return nil
}

// canonicalize resolves symlinks and normalizes p. The path must exist.
func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// SafeJoin joins an untrusted component to base and guarantees the result
// stays within base's canonical tree. The joined path does not need to
// exist yet; base does.
func SafeJoin(base, untrusted string) (string, error) {
	if err := ValidatePathComponent(untrusted); err != nil {
		return "", err
	}

	baseCanonical, err := canonicalize(base)
	if err != nil {
		return "", apperr.Wrap(apperr.KindIo, err, "failed to canonicalize base path %q", base)
	}

	joined := filepath.Join(baseCanonical, untrusted)

	var joinedCanonical string
	if _, statErr := os.Lstat(joined); statErr == nil {
		joinedCanonical, err = canonicalize(joined)
		if err != nil {
			return "", apperr.Wrap(apperr.KindIo, err, "failed to canonicalize path %q", joined)
		}
	} else {
		// Target does not exist yet: canonicalize the parent and
		// re-append the final name.
		parentCanonical, err := canonicalize(filepath.Dir(joined))
		if err != nil {
			return "", apperr.Wrap(apperr.KindIo, err, "failed to canonicalize parent of %q", joined)
		}
		joinedCanonical = filepath.Join(parentCanonical, filepath.Base(joined))
	}

	rel, err := filepath.Rel(baseCanonical, joinedCanonical)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperr.New(apperr.KindPathTraversal, "path traversal attempt detected for component %q", untrusted)
	}

	return joinedCanonical, nil
}

// SafeExpandTilde expands a leading "~/" like platform.ExpandTilde but
// rejects any traversal sequence in the path.
func SafeExpandTilde(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		rest := path[2:]
		if strings.Contains(rest, "..") {
			return "", apperr.New(apperr.KindPathTraversal, "path traversal in home-relative path %q", path)
		}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			return filepath.Join(home, rest), nil
		}
		return path, nil
	}
	if strings.Contains(path, "..") {
		return "", apperr.New(apperr.KindPathTraversal, "path traversal sequences not allowed in %q", path)
	}
	return path, nil
}
