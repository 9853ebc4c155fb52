// internal/services/outfit_service.go
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
)

var (
	ErrOutfitNotFound = errors.New("outfit not found")
	ErrEmptyCanvas    = errors.New("add some items to the canvas before saving")
	ErrNameRequired   = errors.New("outfit name is required")
)

// OutfitService keeps the saved-outfit gallery, most recent first. Items
// inside an outfit are snapshots: save copies out of the live canvas and
// load copies back in, so neither side can mutate the other afterwards.
type OutfitService struct {
	mu      sync.Mutex
	store   storage.Store
	canvas  *CanvasService
	outfits []models.Outfit
	lastID  int64
}

func NewOutfitService(store storage.Store, canvas *CanvasService) *OutfitService {
	s := &OutfitService{store: store, canvas: canvas}
	s.loadFromStore()
	return s
}

func (s *OutfitService) loadFromStore() {
	data, ok, err := s.store.Get(storage.KeyOutfits)
	if err != nil || !ok {
		return
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logrus.WithError(err).Warn("Discarding corrupt outfit gallery")
		return
	}
	for _, entry := range raw {
		var outfit models.Outfit
		// An entry whose items field is not a proper array fails to
		// decode and is skipped rather than crashing the gallery.
		if err := json.Unmarshal(entry, &outfit); err != nil || outfit.ID == "" {
			logrus.Warn("Skipping corrupt outfit entry")
			continue
		}
		s.outfits = append(s.outfits, outfit)
	}
}

// List returns copies of every saved outfit, most recent first.
func (s *OutfitService) List() []models.Outfit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Outfit, len(s.outfits))
	for i, o := range s.outfits {
		out[i] = o.Clone()
	}
	return out
}

// Save snapshots the live canvas. With an overwriteID matching an
// existing outfit, that outfit's name and items are replaced in place and
// it keeps its id and gallery position; otherwise a new outfit is
// prepended with a fresh id.
func (s *OutfitService) Save(name, overwriteID string) (models.Outfit, error) {
	if name == "" {
		return models.Outfit{}, ErrNameRequired
	}

	items := s.canvas.Items()
	if len(items) == 0 {
		return models.Outfit{}, ErrEmptyCanvas
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if overwriteID != "" {
		if i := s.indexOfLocked(overwriteID); i >= 0 {
			s.outfits[i].Name = name
			s.outfits[i].Items = items
			if err := s.persistLocked(); err != nil {
				return models.Outfit{}, err
			}
			return s.outfits[i].Clone(), nil
		}
	}

	outfit := models.Outfit{
		ID:    s.nextIDLocked(),
		Name:  name,
		Items: items,
	}
	s.outfits = append([]models.Outfit{outfit}, s.outfits...)

	if err := s.persistLocked(); err != nil {
		return models.Outfit{}, err
	}
	return outfit.Clone(), nil
}

// Load replaces the live canvas with a copy of the outfit's items and
// returns the loaded placements. Edits made afterwards never reach the
// stored snapshot.
func (s *OutfitService) Load(id string) ([]models.CanvasItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return nil, ErrOutfitNotFound
	}

	s.canvas.Load(s.outfits[i].Items)
	return models.CloneCanvasItems(s.outfits[i].Items), nil
}

// Rename changes an outfit's name only.
func (s *OutfitService) Rename(id, name string) (models.Outfit, error) {
	if name == "" {
		return models.Outfit{}, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return models.Outfit{}, ErrOutfitNotFound
	}
	s.outfits[i].Name = name

	if err := s.persistLocked(); err != nil {
		return models.Outfit{}, err
	}
	return s.outfits[i].Clone(), nil
}

// Delete removes an outfit from the gallery.
func (s *OutfitService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return ErrOutfitNotFound
	}
	s.outfits = append(s.outfits[:i], s.outfits[i+1:]...)
	return s.persistLocked()
}

func (s *OutfitService) indexOfLocked(id string) int {
	for i := range s.outfits {
		if s.outfits[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *OutfitService) nextIDLocked() string {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *OutfitService) persistLocked() error {
	data, err := json.Marshal(s.outfits)
	if err != nil {
		return fmt.Errorf("encode outfits: %w", err)
	}
	if err := s.store.Set(storage.KeyOutfits, data); err != nil {
		return fmt.Errorf("persist outfits: %w", err)
	}
	return nil
}
