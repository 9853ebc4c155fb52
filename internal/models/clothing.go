// internal/models/clothing.go
package models

import "errors"

// ProcessingState records that an item's photo has been altered by a
// generative edit. Its presence is what makes the item revertable; the
// original photo and the mask always travel together.
type ProcessingState struct {
	OriginalPhotoDataURI string   `json:"originalPhotoDataUri"`
	MaskDataURI          string   `json:"maskDataUri,omitempty"`
	LastAction           AIAction `json:"lastAction"`
}

// ClothingItem is a catalog entry in the user's wardrobe.
type ClothingItem struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	PhotoDataURI string           `json:"photoDataUri"`
	Tags         []string         `json:"tags,omitempty"`
	Processing   *ProcessingState `json:"processing,omitempty"`
}

// Masked reports whether the item currently renders through a mask.
func (c *ClothingItem) Masked() bool {
	return c.Processing != nil && c.Processing.MaskDataURI != ""
}

// Validate checks the joint validity of the processing fields.
func (c *ClothingItem) Validate() error {
	if c.Processing != nil {
		if c.Processing.OriginalPhotoDataURI == "" {
			return errors.New("processing state requires an original photo")
		}
		if c.Processing.LastAction != AIActionCutout && c.Processing.LastAction != AIActionRemove {
			return errors.New("unknown processing action")
		}
	}
	return nil
}

// Clone returns a deep copy so embedded canvas/outfit copies never alias
// the catalog entry.
func (c ClothingItem) Clone() ClothingItem {
	out := c
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.Processing != nil {
		p := *c.Processing
		out.Processing = &p
	}
	return out
}
