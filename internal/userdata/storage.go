// Package userdata resolves per-user storage paths and moves files inside a
// user's data area.
package userdata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"userdata/internal/users"
)

// Storage resolves paths beneath the user storage root.
type Storage struct {
	root   string
	rename func(oldpath, newpath string) error
}

// Option customizes a Storage.
type Option func(*Storage)

// WithRenameFunc replaces os.Rename, mainly so tests can force the
// copy fallback.
func WithRenameFunc(rename func(oldpath, newpath string) error) Option {
	return func(s *Storage) {
		if rename != nil {
			s.rename = rename
		}
	}
}

// New returns a Storage rooted at root, which is made absolute.
func New(root string, opts ...Option) (*Storage, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	s := &Storage{root: abs, rename: os.Rename}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the directory holding all per-user data and the users file.
func (s *Storage) Root() string {
	return s.root
}

// ResolveUser picks the user a request acts as. Only multi-user registries
// honor the requested id; everyone else is the default user.
func ResolveUser(reg users.Registry, requested string) (string, error) {
	user := users.DefaultUserID
	if reg.MultiUser() && requested != "" {
		user = requested
	}
	if !reg.Contains(user) {
		return "", badRequest("unknown user", user)
	}
	return user, nil
}

// UserRoot returns the storage directory of user.
func (s *Storage) UserRoot(user string) (string, error) {
	userRoot := filepath.Join(s.root, user)
	if !strictlyWithin(s.root, userRoot) {
		return "", forbidden("invalid user", user)
	}
	return userRoot, nil
}

// UserFilepath joins rel onto the user's root and rejects results outside of
// it. With createDir the parent directory of the result is created.
func (s *Storage) UserFilepath(user, rel string, createDir bool) (string, error) {
	userRoot, err := s.UserRoot(user)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" || strings.HasPrefix(rel, "/") {
		return "", forbidden("path outside user directory", rel)
	}
	p := filepath.Join(userRoot, filepath.FromSlash(rel))
	if !strictlyWithin(userRoot, p) {
		return "", forbidden("path outside user directory", rel)
	}
	if createDir {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return "", fmt.Errorf("create parent directory: %w", err)
		}
	}
	return p, nil
}

// DataPath resolves a request path for user. Missing or escaping paths and,
// with checkExists, paths that do not exist come back as *ResolveError.
// Parent directories are only created for paths that need not exist yet.
func (s *Storage) DataPath(user, rel string, checkExists bool) (string, error) {
	if rel == "" {
		return "", badRequest("missing path", rel)
	}
	p, err := s.UserFilepath(user, rel, !checkExists)
	if err != nil {
		return "", err
	}
	if checkExists {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", notFound("file not found", rel)
			}
			return "", fmt.Errorf("stat %s: %w", rel, err)
		}
	}
	return p, nil
}

// RelativePath expresses p relative to the user's root using forward slashes.
func (s *Storage) RelativePath(user, p string) (string, error) {
	userRoot, err := s.UserRoot(user)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(userRoot, p)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

func strictlyWithin(root, p string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(p))
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}
