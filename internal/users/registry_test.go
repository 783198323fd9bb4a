package users

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeSingleUser(t *testing.T) {
	root := filepath.Join(t.TempDir(), "user")

	reg, err := Initialize(root, false, nil)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.False(t, reg.MultiUser())
	assert.Equal(t, 1, reg.Len())
	label, ok := reg.Lookup(DefaultUserID)
	assert.True(t, ok)
	assert.Equal(t, "default", label)
	assert.Equal(t, []string{"default"}, reg.IDs())
}

func TestInitializeSingleUserIgnoresUsersFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(UsersFilePath(root), []byte(`{"alice":"Alice"}`), 0o644))

	reg, err := Initialize(root, false, nil)
	require.NoError(t, err)

	assert.False(t, reg.Contains("alice"))
	assert.True(t, reg.Contains(DefaultUserID))
}

func TestInitializeMultiUserWithoutFile(t *testing.T) {
	reg, err := Initialize(t.TempDir(), true, nil)
	require.NoError(t, err)

	assert.True(t, reg.MultiUser())
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.IDs())
}

func TestInitializeMultiUserLoadsFileVerbatim(t *testing.T) {
	root := t.TempDir()
	content := `{"bob_1a2b": "bob", "alice_3c4d": "alice"}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "users.json"), []byte(content), 0o644))

	reg, err := Initialize(root, true, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"bob_1a2b": "bob", "alice_3c4d": "alice"}, reg.Entries())
	assert.Equal(t, []string{"alice_3c4d", "bob_1a2b"}, reg.IDs())
	assert.False(t, reg.Contains(DefaultUserID))
}

func TestInitializeMultiUserRejectsMalformedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(UsersFilePath(root), []byte(`["not", "an", "object"]`), 0o644))

	_, err := Initialize(root, true, nil)
	assert.Error(t, err)
}

func TestEntriesReturnsCopy(t *testing.T) {
	source := map[string]string{"alice": "Alice"}
	reg := FromMap(source)
	source["mallory"] = "Mallory"

	entries := reg.Entries()
	entries["eve"] = "Eve"

	assert.False(t, reg.Contains("mallory"))
	assert.False(t, reg.Contains("eve"))
}

func TestUsersFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "user", "users.json"), UsersFilePath(filepath.Join("data", "user")))
}
