package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fidelbot/internal/kvstore"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestSeedContentLoadsValidFilesAndSkipsBroken(t *testing.T) {
	dir := t.TempDir()
	valid := `[{"question":"Unit of force?","options":["Newton","Joule","Watt","Volt"],"correct":0,"explanation":"Newtons."}]`
	writeFile(t, dir, "grade_9_phys_3.json", valid)
	writeFile(t, dir, "grade_10_biol_1.json", valid)
	writeFile(t, dir, "broken.json", `{"not":"an array"}`)
	writeFile(t, dir, "empty.json", `[]`)
	writeFile(t, dir, "notes.txt", "ignored")

	store := kvstore.NewMemoryStore()
	require.NoError(t, SeedContent(context.Background(), store, dir))

	raw, ok, err := store.Get(context.Background(), "quiz_grade_9_phys_3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, valid, raw)

	_, ok, err = store.Get(context.Background(), "quiz_grade_10_biol_1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = store.Get(context.Background(), "quiz_broken")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Get(context.Background(), "quiz_empty")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeedContentMissingDir(t *testing.T) {
	store := kvstore.NewMemoryStore()
	err := SeedContent(context.Background(), store, filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
