// internal/services/canvas_service.go
package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/wrdrobe/wrdrobe-backend/internal/config"
	"github.com/wrdrobe/wrdrobe-backend/internal/models"
)

var (
	ErrInstanceNotFound = errors.New("canvas item not found")
	ErrBadReorder       = errors.New("reorder list must contain every canvas item exactly once")
)

// CanvasService owns the live placement array and the selection set. All
// mutations run under one lock, the server-side analog of the browser's
// single-threaded event loop: state is replaced wholesale per change, so
// readers never observe a torn update.
type CanvasService struct {
	mu             sync.RWMutex
	items          []models.CanvasItem
	selection      map[string]struct{}
	keepLayerOrder bool

	size            float64
	defaultItemSize float64
	minItemSize     float64
}

func NewCanvasService(cfg config.CanvasConfig) *CanvasService {
	return &CanvasService{
		selection:       make(map[string]struct{}),
		size:            cfg.Size,
		defaultItemSize: cfg.DefaultItemSize,
		minItemSize:     cfg.MinItemSize,
	}
}

// Size returns the side length of the square canvas space.
func (s *CanvasService) Size() float64 {
	return s.size
}

// Items returns deep copies of all placements.
func (s *CanvasService) Items() []models.CanvasItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneCanvasItems(s.items)
}

// Place drops a catalog item onto the canvas. The drop point becomes the
// center of the new placement, which takes the default size and paints on
// top of everything already there. Placements may extend past the canvas
// edge; there is no clamping.
func (s *CanvasService) Place(item models.ClothingItem, x, y float64) models.CanvasItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	placed := models.CanvasItem{
		InstanceID: uuid.NewString(),
		Item:       item.Clone(),
		X:          x - s.defaultItemSize/2,
		Y:          y - s.defaultItemSize/2,
		Width:      s.defaultItemSize,
		Height:     s.defaultItemSize,
		ZIndex:     s.maxZIndexLocked() + 1,
	}
	s.items = append(s.items, placed)
	return placed.Clone()
}

// Move translates every listed placement by the same delta. Group drags
// pass the whole selection; all members move identically, none is a
// leader. An empty list moves the current selection.
func (s *CanvasService) Move(instanceIDs []string, dx, dy float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(instanceIDs) == 0 {
		for id := range s.selection {
			instanceIDs = append(instanceIDs, id)
		}
	}

	targets := make(map[string]struct{}, len(instanceIDs))
	for _, id := range instanceIDs {
		if s.indexOfLocked(id) < 0 {
			return fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
		}
		targets[id] = struct{}{}
	}

	for i := range s.items {
		if _, ok := targets[s.items[i].InstanceID]; ok {
			s.items[i].X += dx
			s.items[i].Y += dy
		}
	}
	return nil
}

// Resize applies new geometry to a single placement, flooring width and
// height so a resize drag can never collapse an item.
func (s *CanvasService) Resize(instanceID string, width, height, x, y float64) (models.CanvasItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(instanceID)
	if i < 0 {
		return models.CanvasItem{}, ErrInstanceNotFound
	}

	if width < s.minItemSize {
		width = s.minItemSize
	}
	if height < s.minItemSize {
		height = s.minItemSize
	}

	s.items[i].Width = width
	s.items[i].Height = height
	s.items[i].X = x
	s.items[i].Y = y
	return s.items[i].Clone(), nil
}

// BringToFront raises a placement above every other item.
func (s *CanvasService) BringToFront(instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bringToFrontLocked(instanceID)
}

func (s *CanvasService) bringToFrontLocked(instanceID string) error {
	i := s.indexOfLocked(instanceID)
	if i < 0 {
		return ErrInstanceNotFound
	}
	s.items[i].ZIndex = s.maxZIndexLocked() + 1
	return nil
}

// SendToBack lowers a placement below every other item. With fewer than
// two items there is nothing to reorder.
func (s *CanvasService) SendToBack(instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) < 2 {
		return nil
	}
	i := s.indexOfLocked(instanceID)
	if i < 0 {
		return ErrInstanceNotFound
	}

	min := 0
	first := true
	for j := range s.items {
		if j == i {
			continue
		}
		if first || s.items[j].ZIndex < min {
			min = s.items[j].ZIndex
			first = false
		}
	}
	s.items[i].ZIndex = min - 1
	return nil
}

// Remove deletes one placement and drops it from the selection.
func (s *CanvasService) Remove(instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(instanceID)
	if i < 0 {
		return ErrInstanceNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.selection, instanceID)
	return nil
}

// RemoveAll clears the canvas and the selection.
func (s *CanvasService) RemoveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.selection = make(map[string]struct{})
}

// RemoveByItemID deletes every placement of a catalog item. Catalog
// deletion cascades through here; saved outfits keep their own copies.
func (s *CanvasService) RemoveByItemID(itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	removed := 0
	for _, it := range s.items {
		if it.Item.ID == itemID {
			delete(s.selection, it.InstanceID)
			removed++
			continue
		}
		kept = append(kept, it)
	}
	s.items = kept
	return removed
}

// SyncItem refreshes the embedded catalog copy on every placement of the
// item, so catalog edits show up on the live canvas immediately.
func (s *CanvasService) SyncItem(item models.ClothingItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Item.ID == item.ID {
			s.items[i].Item = item.Clone()
		}
	}
}

// Load replaces the whole placement array, deep-copying the input so the
// caller's snapshot stays independent. Selection resets.
func (s *CanvasService) Load(items []models.CanvasItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = models.CloneCanvasItems(items)
	s.selection = make(map[string]struct{})
}

// Reorder applies a front-to-back ordering from the layers panel. Every
// current placement must appear exactly once; z-indexes are reassigned as
// count-position so list order and paint order stay consistent.
func (s *CanvasService) Reorder(frontToBack []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(frontToBack) != len(s.items) {
		return ErrBadReorder
	}
	seen := make(map[string]struct{}, len(frontToBack))
	for _, id := range frontToBack {
		if _, dup := seen[id]; dup || s.indexOfLocked(id) < 0 {
			return ErrBadReorder
		}
		seen[id] = struct{}{}
	}

	total := len(frontToBack)
	for pos, id := range frontToBack {
		i := s.indexOfLocked(id)
		s.items[i].ZIndex = total - pos
	}
	return nil
}

// Select handles pointer-down on a placement. A plain click replaces the
// selection and raises the item unless keep-layer-order mode is on; a
// shift-click toggles the item in and out of the current set and never
// reorders.
func (s *CanvasService) Select(instanceID string, additive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfLocked(instanceID) < 0 {
		return ErrInstanceNotFound
	}

	if additive {
		if _, ok := s.selection[instanceID]; ok {
			delete(s.selection, instanceID)
		} else {
			s.selection[instanceID] = struct{}{}
		}
		return nil
	}

	s.selection = map[string]struct{}{instanceID: {}}
	if !s.keepLayerOrder {
		return s.bringToFrontLocked(instanceID)
	}
	return nil
}

// MarqueeSelect sets the selection to exactly the placements whose bounds
// overlap the marquee rectangle, replacing any prior selection. The
// rectangle may be dragged in any direction.
func (s *CanvasService) MarqueeSelect(marquee models.Rect) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	marquee = marquee.Normalize()
	s.selection = make(map[string]struct{})
	for _, it := range s.items {
		if it.Bounds().Intersects(marquee) {
			s.selection[it.InstanceID] = struct{}{}
		}
	}
	return s.selectionLocked()
}

// Selection returns the selected instance ids in a stable order.
func (s *CanvasService) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectionLocked()
}

// ClearSelection deselects everything.
func (s *CanvasService) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{})
}

// SetKeepLayerOrder toggles the mode where plain selection leaves z-order
// untouched and only the layers panel reorders.
func (s *CanvasService) SetKeepLayerOrder(keep bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepLayerOrder = keep
}

func (s *CanvasService) KeepLayerOrder() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keepLayerOrder
}

func (s *CanvasService) selectionLocked() []string {
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *CanvasService) indexOfLocked(instanceID string) int {
	for i := range s.items {
		if s.items[i].InstanceID == instanceID {
			return i
		}
	}
	return -1
}

func (s *CanvasService) maxZIndexLocked() int {
	max := 0
	for _, it := range s.items {
		if it.ZIndex > max {
			max = it.ZIndex
		}
	}
	return max
}
