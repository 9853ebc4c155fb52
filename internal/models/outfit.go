// internal/models/outfit.go
package models

// Outfit is a named snapshot of the canvas placement array.
type Outfit struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Items []CanvasItem `json:"items"`
}

// Clone returns a deep copy of the outfit.
func (o Outfit) Clone() Outfit {
	out := o
	out.Items = CloneCanvasItems(o.Items)
	return out
}
