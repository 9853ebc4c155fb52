// internal/models/canvas.go
package models

// CanvasItem is one placement of a catalog item on the outfit canvas.
// The same ClothingItem may be placed any number of times; each placement
// keeps its own instance id, geometry and stacking order. The embedded
// item is an owned copy, so saved outfits survive catalog deletions.
type CanvasItem struct {
	InstanceID string       `json:"instanceId"`
	Item       ClothingItem `json:"item"`
	X          float64      `json:"x"`
	Y          float64      `json:"y"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	ZIndex     int          `json:"zIndex"`
}

// Bounds returns the item's rectangle in canvas space.
func (c CanvasItem) Bounds() Rect {
	return Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
}

// Clone returns a deep copy of the placement.
func (c CanvasItem) Clone() CanvasItem {
	out := c
	out.Item = c.Item.Clone()
	return out
}

// CloneCanvasItems deep-copies a whole placement slice. Outfit save and
// load both go through this so the live canvas and stored snapshots never
// share memory.
func CloneCanvasItems(items []CanvasItem) []CanvasItem {
	if items == nil {
		return nil
	}
	out := make([]CanvasItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
