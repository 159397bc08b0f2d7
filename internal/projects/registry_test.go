package projects

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agent-station/companion/internal/infrastructure/logging"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	path := filepath.Join(t.TempDir(), "projects.json")
	r, err := Open(path, logging.NewNop())
	require.NoError(t, err)
	return r
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	r := newTestRegistry(t)
	assert.Empty(t, r.List())
}

func TestAddAndGet(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()

	p, err := r.Add(dir)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, filepath.Base(dir), p.Name)
	assert.Equal(t, dir, p.Path)
	assert.False(t, p.HasActiveProcess)

	got, err := r.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestAddRejectsMissingPath(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Add(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestAddRejectsFile(t *testing.T) {
	r := newTestRegistry(t)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := r.Add(file)
	assert.Error(t, err)
}

func TestAddRejectsDuplicatePath(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()

	_, err := r.Add(dir)
	require.NoError(t, err)

	_, err = r.Add(dir)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRemove(t *testing.T) {
	r := newTestRegistry(t)

	p, err := r.Add(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, r.Remove(p.ID))
	assert.Empty(t, r.List())

	err = r.Remove(p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUnknown(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")

	r1, err := Open(path, logging.NewNop())
	require.NoError(t, err)

	dir := t.TempDir()
	p, err := r1.Add(dir)
	require.NoError(t, err)

	// Reopen from disk.
	r2, err := Open(path, logging.NewNop())
	require.NoError(t, err)

	list := r2.List()
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
	assert.Equal(t, dir, list[0].Path)
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path, logging.NewNop())
	assert.Error(t, err)
}
