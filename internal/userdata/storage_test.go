package userdata

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdata/internal/users"
)

func newTestStorage(t *testing.T, opts ...Option) *Storage {
	t.Helper()
	storage, err := New(t.TempDir(), opts...)
	require.NoError(t, err)
	return storage
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func requireResolveStatus(t *testing.T, err error, status int) {
	t.Helper()
	resolveErr, ok := AsResolveError(err)
	require.True(t, ok, "expected *ResolveError, got %v", err)
	assert.Equal(t, status, resolveErr.Status)
}

func TestNewRequiresRoot(t *testing.T) {
	_, err := New("  ")
	assert.Error(t, err)
}

func TestResolveUser(t *testing.T) {
	single := users.Single()
	multi := users.FromMap(map[string]string{"alice": "Alice", "default": "default"})
	multiWithoutDefault := users.FromMap(map[string]string{"alice": "Alice"})

	tests := []struct {
		name      string
		reg       users.Registry
		requested string
		want      string
		status    int
	}{
		{name: "single user ignores header", reg: single, requested: "alice", want: "default"},
		{name: "single user without header", reg: single, want: "default"},
		{name: "multi user honors header", reg: multi, requested: "alice", want: "alice"},
		{name: "multi user falls back to default", reg: multi, want: "default"},
		{name: "multi user unknown", reg: multi, requested: "mallory", status: http.StatusBadRequest},
		{name: "multi user missing default", reg: multiWithoutDefault, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveUser(tt.reg, tt.requested)
			if tt.status != 0 {
				requireResolveStatus(t, err, tt.status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserRootRejectsEscapes(t *testing.T) {
	storage := newTestStorage(t)

	root, err := storage.UserRoot("default")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(storage.Root(), "default"), root)

	for _, user := range []string{"..", "../other", ".", ""} {
		_, err := storage.UserRoot(user)
		requireResolveStatus(t, err, http.StatusForbidden)
	}
}

func TestDataPathStatuses(t *testing.T) {
	storage := newTestStorage(t)
	writeFile(t, filepath.Join(storage.Root(), "default", "a", "b.txt"), "hello")

	p, err := storage.DataPath("default", "a/b.txt", true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(storage.Root(), "default", "a", "b.txt"), p)

	_, err = storage.DataPath("default", "", true)
	requireResolveStatus(t, err, http.StatusBadRequest)

	_, err = storage.DataPath("default", "../other/secret.txt", false)
	requireResolveStatus(t, err, http.StatusForbidden)

	_, err = storage.DataPath("default", "a/../../escape.txt", false)
	requireResolveStatus(t, err, http.StatusForbidden)

	_, err = storage.DataPath("default", "/etc/passwd", false)
	requireResolveStatus(t, err, http.StatusForbidden)

	_, err = storage.DataPath("default", "a/missing.txt", true)
	requireResolveStatus(t, err, http.StatusNotFound)
}

func TestDataPathCreatesParentOnlyForDestinations(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.DataPath("default", "ghost/file.txt", true)
	requireResolveStatus(t, err, http.StatusNotFound)
	_, statErr := os.Stat(filepath.Join(storage.Root(), "default", "ghost"))
	assert.True(t, os.IsNotExist(statErr))

	p, err := storage.DataPath("default", "new/dir/file.txt", false)
	require.NoError(t, err)
	info, err := os.Stat(filepath.Dir(p))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, statErr = os.Stat(p)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRelativePathIndependentOfRoot(t *testing.T) {
	for _, root := range []string{t.TempDir(), filepath.Join(t.TempDir(), "nested", "root")} {
		storage, err := New(root)
		require.NoError(t, err)

		dest, err := storage.DataPath("default", "a/c.txt", false)
		require.NoError(t, err)

		rel, err := storage.RelativePath("default", dest)
		require.NoError(t, err)
		assert.Equal(t, "a/c.txt", rel)
	}
}
