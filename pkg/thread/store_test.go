package thread

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreValidatesDirectory(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))

	file := filepath.Join(t.TempDir(), "a-file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = NewStore(file)
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))

	_, err = NewStore(t.TempDir())
	require.NoError(t, err)
}

func TestNewThreadCreatesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	thread, err := store.NewThread("Design notes")
	require.NoError(t, err)

	base := filepath.Base(thread.Path)
	assert.True(t, strings.HasPrefix(base, "cricket-"))
	assert.True(t, strings.HasSuffix(base, ".org"))
	assert.FileExists(t, thread.Path)

	loaded, err := store.Load(thread.Path)
	require.NoError(t, err)
	assert.Contains(t, loaded.Doc.Root().Body, "#+title: Design notes")
	assert.Equal(t, "Design notes", loaded.Title())
	assert.Equal(t, strings.TrimSuffix(base, ".org"), loaded.Name())
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	thread, err := store.NewThread("")
	require.NoError(t, err)

	node := Bootstrap(thread.Doc, testRoles)
	require.NoError(t, store.Save(thread))

	loaded, err := store.Load(thread.Path)
	require.NoError(t, err)
	top := loaded.Doc.TopLevel()
	require.Len(t, top, 1)
	assert.Equal(t, node.Heading, top[0].Heading)
	assert.Equal(t, "", document.Extract(top[0]).Body)
}

func TestStoreListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	var created []string
	for i := 0; i < 3; i++ {
		thread, err := store.NewThread("")
		require.NoError(t, err)
		created = append(created, thread.Path)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	paths, err := store.List()
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, created[2], paths[0])
	assert.Equal(t, created[1], paths[1])
	assert.Equal(t, created[0], paths[2])
}

func TestStoreResolve(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	thread, err := store.NewThread("")
	require.NoError(t, err)

	byPath, err := store.Resolve(thread.Path)
	require.NoError(t, err)
	assert.Equal(t, thread.Path, byPath)

	base := filepath.Base(thread.Path)
	byFile, err := store.Resolve(base)
	require.NoError(t, err)
	assert.Equal(t, thread.Path, byFile)

	stem := strings.TrimSuffix(strings.TrimPrefix(base, "cricket-"), ".org")
	byStem, err := store.Resolve(stem)
	require.NoError(t, err)
	assert.Equal(t, thread.Path, byStem)

	_, err = store.Resolve("no-such-thread")
	require.Error(t, err)
}
