// internal/services/outfit_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrdrobe/wrdrobe-backend/internal/storage"
)

func newTestOutfits(t *testing.T) (*OutfitService, *CanvasService) {
	t.Helper()
	canvas := NewCanvasService(testCanvasConfig())
	return NewOutfitService(storage.NewMemoryStore(), canvas), canvas
}

func TestSaveRequiresNonEmptyCanvas(t *testing.T) {
	outfits, _ := newTestOutfits(t)

	_, err := outfits.Save("Empty Look", "")
	assert.ErrorIs(t, err, ErrEmptyCanvas)
}

func TestSaveRequiresName(t *testing.T) {
	outfits, canvas := newTestOutfits(t)
	canvas.Place(testClothingItem("1", "Shirt"), 100, 100)

	_, err := outfits.Save("", "")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestSavePrependsNewOutfits(t *testing.T) {
	outfits, canvas := newTestOutfits(t)
	canvas.Place(testClothingItem("1", "Shirt"), 100, 100)

	first, err := outfits.Save("First Look", "")
	require.NoError(t, err)
	second, err := outfits.Save("Second Look", "")
	require.NoError(t, err)

	list := outfits.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSaveOverwriteKeepsIDAndPosition(t *testing.T) {
	outfits, canvas := newTestOutfits(t)
	canvas.Place(testClothingItem("1", "Shirt"), 100, 100)

	older, err := outfits.Save("Older Look", "")
	require.NoError(t, err)
	_, err = outfits.Save("Newer Look", "")
	require.NoError(t, err)

	canvas.Place(testClothingItem("2", "Scarf"), 300, 300)
	saved, err := outfits.Save("Older Look v2", older.ID)
	require.NoError(t, err)

	assert.Equal(t, older.ID, saved.ID)
	list := outfits.List()
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, "Older Look v2", list[1].Name)
	assert.Len(t, list[1].Items, 2)
}

func TestSaveWithUnknownOverwriteIDCreatesNew(t *testing.T) {
	outfits, canvas := newTestOutfits(t)
	canvas.Place(testClothingItem("1", "Shirt"), 100, 100)

	saved, err := outfits.Save("Look", "missing-id")
	require.NoError(t, err)

	assert.NotEqual(t, "missing-id", saved.ID)
	assert.Len(t, outfits.List(), 1)
}

func TestSavedOutfitIsIndependentOfLiveCanvas(t *testing.T) {
	outfits, canvas := newTestOutfits(t)
	placed := canvas.Place(testClothingItem("1", "Shirt"), 100, 100)

	_, err := outfits.Save("Look", "")
	require.NoError(t, err)

	require.NoError(t, canvas.Move([]string{placed.InstanceID}, 500, 0))
	canvas.Place(testClothingItem("2", "Scarf"), 300, 300)

	list := outfits.List()
	require.Len(t, list[0].Items, 1)
	assert.Equal(t, placed.X, list[0].Items[0].X)
}

func TestLoadReplacesCanvasWithCopies(t *testing.T) {
	outfits, canvas := newTestOutfits(t)
	placed := canvas.Place(testClothingItem("1", "Shirt"), 100, 100)
	saved, err := outfits.Save("Look", "")
	require.NoError(t, err)

	canvas.RemoveAll()
	canvas.Place(testClothingItem("2", "Scarf"), 300, 300)

	loaded, err := outfits.Load(saved.ID)
	require.NoError(t, err)

	require.Len(t, loaded, 1)
	assert.Equal(t, placed.InstanceID, loaded[0].InstanceID)

	// Post-load edits stay on the canvas, not in the gallery.
	require.NoError(t, canvas.Move([]string{placed.InstanceID}, 250, 0))
	assert.Equal(t, placed.X, outfits.List()[0].Items[0].X)
}

func TestLoadUnknownOutfitFails(t *testing.T) {
	outfits, _ := newTestOutfits(t)

	_, err := outfits.Load("missing")
	assert.ErrorIs(t, err, ErrOutfitNotFound)
}

func TestRenameChangesNameOnly(t *testing.T) {
	outfits, canvas := newTestOutfits(t)
	canvas.Place(testClothingItem("1", "Shirt"), 100, 100)
	saved, err := outfits.Save("Look", "")
	require.NoError(t, err)

	renamed, err := outfits.Rename(saved.ID, "Date Night")
	require.NoError(t, err)

	assert.Equal(t, saved.ID, renamed.ID)
	assert.Equal(t, "Date Night", renamed.Name)
	assert.Len(t, renamed.Items, 1)
}

func TestDeleteRemovesFromGallery(t *testing.T) {
	outfits, canvas := newTestOutfits(t)
	canvas.Place(testClothingItem("1", "Shirt"), 100, 100)
	saved, err := outfits.Save("Look", "")
	require.NoError(t, err)

	require.NoError(t, outfits.Delete(saved.ID))

	assert.Empty(t, outfits.List())
	assert.ErrorIs(t, outfits.Delete(saved.ID), ErrOutfitNotFound)
}

func TestGalleryPersistsAcrossRestart(t *testing.T) {
	store := storage.NewMemoryStore()
	canvas := NewCanvasService(testCanvasConfig())
	outfits := NewOutfitService(store, canvas)

	canvas.Place(testClothingItem("1", "Shirt"), 100, 100)
	saved, err := outfits.Save("Look", "")
	require.NoError(t, err)

	reopened := NewOutfitService(store, NewCanvasService(testCanvasConfig()))

	list := reopened.List()
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
	assert.Len(t, list[0].Items, 1)
}

func TestLoadSkipsCorruptGalleryEntries(t *testing.T) {
	store := storage.NewMemoryStore()
	doc := []byte(`[{"id":"10","name":"Good Look","items":[]},{"id":"","name":"no id"},{"id":"11","name":"Bad Items","items":"oops"}]`)
	require.NoError(t, store.Set(storage.KeyOutfits, doc))

	outfits := NewOutfitService(store, NewCanvasService(testCanvasConfig()))

	list := outfits.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Good Look", list[0].Name)
}
