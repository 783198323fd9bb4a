// Package users holds the registry of known user identities.
package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"userdata/internal/logging"
)

// DefaultUserID is the only user known in single-user mode.
const DefaultUserID = "default"

// UsersFileName is the registry file kept at the top of the storage root.
const UsersFileName = "users.json"

// Registry is a read-only view of known users, mapping user id to a label.
type Registry interface {
	Lookup(id string) (string, bool)
	Contains(id string) bool
	IDs() []string
	Entries() map[string]string
	Len() int
	MultiUser() bool
}

type registry struct {
	entries   map[string]string
	multiUser bool
}

// Single returns the single-user registry holding only DefaultUserID.
func Single() Registry {
	return &registry{entries: map[string]string{DefaultUserID: DefaultUserID}}
}

// FromMap returns a multi-user registry backed by a copy of entries.
func FromMap(entries map[string]string) Registry {
	copied := make(map[string]string, len(entries))
	for id, label := range entries {
		copied[id] = label
	}
	return &registry{entries: copied, multiUser: true}
}

// UsersFilePath returns the registry file location under root.
func UsersFilePath(root string) string {
	return filepath.Join(root, UsersFileName)
}

// LoadFile reads a multi-user registry from path. A missing file yields an
// empty registry.
func LoadFile(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FromMap(nil), nil
		}
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", path, err)
	}
	return FromMap(entries), nil
}

// Initialize ensures root exists and builds the registry for the selected mode.
func Initialize(root string, multiUser bool, logger logging.Logger) (Registry, error) {
	logger = logging.OrNop(logger)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create user directory: %w", err)
	}
	if !multiUser {
		logger.Info("Single-user mode, user directory %s", root)
		return Single(), nil
	}
	reg, err := LoadFile(UsersFilePath(root))
	if err != nil {
		return nil, err
	}
	logger.Info("Multi-user mode, loaded %d users from %s", reg.Len(), UsersFilePath(root))
	return reg, nil
}

func (r *registry) Lookup(id string) (string, bool) {
	label, ok := r.entries[id]
	return label, ok
}

func (r *registry) Contains(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// IDs returns the user ids in sorted order.
func (r *registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Entries returns a copy of the id to label mapping.
func (r *registry) Entries() map[string]string {
	out := make(map[string]string, len(r.entries))
	for id, label := range r.entries {
		out[id] = label
	}
	return out
}

func (r *registry) Len() int {
	return len(r.entries)
}

func (r *registry) MultiUser() bool {
	return r.multiUser
}
