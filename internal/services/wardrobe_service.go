// internal/services/wardrobe_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wrdrobe/wrdrobe-backend/internal/models"
	"github.com/wrdrobe/wrdrobe-backend/internal/storage"
	"github.com/wrdrobe/wrdrobe-backend/internal/utils"
)

var (
	ErrItemNotFound = errors.New("clothing item not found")
	ErrNoRevert     = errors.New("item has no original photo to revert to")
)

// defaultCategories seeds the registry on first run. Categories stay
// free-form strings: adding an item with a new category extends the set.
var defaultCategories = []string{"Hats", "Tops", "Bottoms", "Shoes", "Accessories", "Bags", "Other"}

// WardrobeService is the clothing catalog store. Every mutation persists
// the full collection immediately; there is no batching.
type WardrobeService struct {
	mu         sync.RWMutex
	store      storage.Store
	canvas     *CanvasService
	items      []models.ClothingItem
	categories []string
	lastID     int64
}

type AddItemRequest struct {
	Name         string   `json:"name" validate:"required"`
	Category     string   `json:"category" validate:"required"`
	PhotoDataURI string   `json:"photoDataUri" validate:"required,datauri"`
	Tags         []string `json:"tags,omitempty"`
}

type UpdateItemRequest struct {
	Name         string   `json:"name" validate:"required"`
	Category     string   `json:"category" validate:"required"`
	Tags         []string `json:"tags,omitempty"`
	PhotoDataURI string   `json:"photoDataUri,omitempty" validate:"omitempty,datauri"`
}

func NewWardrobeService(store storage.Store, canvas *CanvasService) *WardrobeService {
	s := &WardrobeService{store: store, canvas: canvas}
	s.loadFromStore()
	return s
}

func (s *WardrobeService) loadFromStore() {
	s.categories = append([]string(nil), defaultCategories...)

	if data, ok, err := s.store.Get(storage.KeyCategories); err == nil && ok {
		var cats []string
		if err := json.Unmarshal(data, &cats); err != nil {
			logrus.WithError(err).Warn("Discarding corrupt category list")
		} else if len(cats) > 0 {
			s.categories = cats
		}
	}

	data, ok, err := s.store.Get(storage.KeyWardrobe)
	if err != nil || !ok {
		return
	}

	// Decode entry by entry so one corrupt record does not take the whole
	// wardrobe down with it.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logrus.WithError(err).Warn("Discarding corrupt wardrobe document")
		return
	}
	for _, entry := range raw {
		var item models.ClothingItem
		if err := json.Unmarshal(entry, &item); err != nil || item.ID == "" || item.Validate() != nil {
			logrus.Warn("Skipping corrupt wardrobe entry")
			continue
		}
		s.items = append(s.items, item)
	}
}

// List returns copies of every catalog item.
func (s *WardrobeService) List() []models.ClothingItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ClothingItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out
}

// Get returns a copy of one catalog item.
func (s *WardrobeService) Get(id string) (models.ClothingItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return models.ClothingItem{}, ErrItemNotFound
	}
	return s.items[i].Clone(), nil
}

// Add creates a catalog item. Ids are millisecond timestamps, bumped on
// collision so they stay unique within a session. Unknown categories are
// registered as a side effect.
func (s *WardrobeService) Add(req *AddItemRequest) (models.ClothingItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return models.ClothingItem{}, fmt.Errorf("validation failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.ClothingItem{
		ID:           s.nextIDLocked(),
		Name:         req.Name,
		Category:     req.Category,
		PhotoDataURI: req.PhotoDataURI,
		Tags:         append([]string(nil), req.Tags...),
	}
	s.items = append(s.items, item)
	s.registerCategoryLocked(req.Category)

	if err := s.persistLocked(); err != nil {
		return models.ClothingItem{}, err
	}
	return item.Clone(), nil
}

// Update edits name, category and tags, and optionally replaces the
// photo. A replacement photo becomes the new ground truth: any mask and
// original from a previous generative edit are cleared. Canvas placements
// of the item are refreshed in place.
func (s *WardrobeService) Update(id string, req *UpdateItemRequest) (models.ClothingItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return models.ClothingItem{}, fmt.Errorf("validation failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return models.ClothingItem{}, ErrItemNotFound
	}

	s.items[i].Name = req.Name
	s.items[i].Category = req.Category
	s.items[i].Tags = append([]string(nil), req.Tags...)
	if req.PhotoDataURI != "" {
		s.items[i].PhotoDataURI = req.PhotoDataURI
		s.items[i].Processing = nil
	}
	s.registerCategoryLocked(req.Category)

	if err := s.persistLocked(); err != nil {
		return models.ClothingItem{}, err
	}

	updated := s.items[i].Clone()
	s.canvas.SyncItem(updated)
	return updated, nil
}

// Delete removes a catalog item and cascades to every live canvas
// placement of it. Saved outfits are untouched; they own their copies.
func (s *WardrobeService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return ErrItemNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)

	if err := s.persistLocked(); err != nil {
		return err
	}
	s.canvas.RemoveByItemID(id)
	return nil
}

// Revert restores the pre-edit photo and clears the processing state.
func (s *WardrobeService) Revert(id string) (models.ClothingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return models.ClothingItem{}, ErrItemNotFound
	}
	if s.items[i].Processing == nil {
		return models.ClothingItem{}, ErrNoRevert
	}

	s.items[i].PhotoDataURI = s.items[i].Processing.OriginalPhotoDataURI
	s.items[i].Processing = nil

	if err := s.persistLocked(); err != nil {
		return models.ClothingItem{}, err
	}

	reverted := s.items[i].Clone()
	s.canvas.SyncItem(reverted)
	return reverted, nil
}

// ApplyMaskResult merges a successful generative-edit result into the
// item. The first edit captures the current photo as the revert baseline;
// later edits keep the existing baseline. Returns ErrItemNotFound when the
// item was deleted while the request was in flight, in which case the
// caller discards the result.
func (s *WardrobeService) ApplyMaskResult(id, maskDataURI string, action models.AIAction) (models.ClothingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return models.ClothingItem{}, ErrItemNotFound
	}

	original := s.items[i].PhotoDataURI
	if s.items[i].Processing != nil {
		original = s.items[i].Processing.OriginalPhotoDataURI
	}
	s.items[i].Processing = &models.ProcessingState{
		OriginalPhotoDataURI: original,
		MaskDataURI:          maskDataURI,
		LastAction:           action,
	}

	if err := s.persistLocked(); err != nil {
		return models.ClothingItem{}, err
	}

	updated := s.items[i].Clone()
	s.canvas.SyncItem(updated)
	return updated, nil
}

// ReplaceMask swaps the mask on an already-processed item, used by mask
// refinement. The revert baseline and last action stay as they were.
func (s *WardrobeService) ReplaceMask(id, maskDataURI string) (models.ClothingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return models.ClothingItem{}, ErrItemNotFound
	}
	if !s.items[i].Masked() {
		return models.ClothingItem{}, fmt.Errorf("%w: item has no mask to refine", ErrNoRevert)
	}

	s.items[i].Processing.MaskDataURI = maskDataURI

	if err := s.persistLocked(); err != nil {
		return models.ClothingItem{}, err
	}

	updated := s.items[i].Clone()
	s.canvas.SyncItem(updated)
	return updated, nil
}

// Categories returns the registry in insertion order.
func (s *WardrobeService) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.categories...)
}

// AddCategory registers a category explicitly.
func (s *WardrobeService) AddCategory(name string) error {
	if name == "" {
		return errors.New("category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.registerCategoryLocked(name)
	return s.persistLocked()
}

func (s *WardrobeService) registerCategoryLocked(name string) {
	for _, c := range s.categories {
		if c == name {
			return
		}
	}
	s.categories = append(s.categories, name)
}

func (s *WardrobeService) nextIDLocked() string {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *WardrobeService) indexOfLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *WardrobeService) persistLocked() error {
	items, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("encode wardrobe: %w", err)
	}
	if err := s.store.Set(storage.KeyWardrobe, items); err != nil {
		return fmt.Errorf("persist wardrobe: %w", err)
	}

	cats, err := json.Marshal(s.categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	if err := s.store.Set(storage.KeyCategories, cats); err != nil {
		return fmt.Errorf("persist categories: %w", err)
	}
	return nil
}
