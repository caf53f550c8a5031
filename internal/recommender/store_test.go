package recommender

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactStoreRoundTrip(t *testing.T) {
	store := NewArtifactStore(t.TempDir())

	var miss ContentSnapshot
	assert.False(t, store.Load(KeyContentSim, &miss))
	assert.False(t, store.Exists(KeyContentSim))

	want := &ContentSnapshot{
		MovieIDs: []int{1, 2},
		Titles:   []string{"Toy Story", "Jumanji"},
		Sim:      &Matrix{N: 2, Data: []float64{1, 0.5, 0.5, 1}},
	}
	require.NoError(t, store.Save(KeyContentSim, want))
	assert.True(t, store.Exists(KeyContentSim))

	var got ContentSnapshot
	require.True(t, store.Load(KeyContentSim, &got))
	assert.Equal(t, *want, got)
}

func TestArtifactStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifactStore(dir)

	// basura en disco: se trata como ausente, nunca como error fatal
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyUserSim+".gob"), []byte("no es gob"), 0o644))
	assert.True(t, store.Exists(KeyUserSim))

	var snap UserSimSnapshot
	assert.False(t, store.Load(KeyUserSim, &snap))
}

func TestArtifactStoreOverwrite(t *testing.T) {
	store := NewArtifactStore(t.TempDir())

	require.NoError(t, store.Save(KeyUserItem, &UserItemSnapshot{UserIDs: []int{1}}))
	require.NoError(t, store.Save(KeyUserItem, &UserItemSnapshot{UserIDs: []int{1, 2}}))

	var got UserItemSnapshot
	require.True(t, store.Load(KeyUserItem, &got))
	assert.Equal(t, []int{1, 2}, got.UserIDs)
}

func TestArtifactStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "anidado", "artifacts")
	store := NewArtifactStore(dir)
	require.NoError(t, store.Save(KeyContentSim, &ContentSnapshot{MovieIDs: []int{1}}))
	assert.True(t, store.Exists(KeyContentSim))
}
