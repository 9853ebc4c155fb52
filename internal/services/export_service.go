// internal/services/export_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/wrdrobe/wrdrobe-backend/internal/models"
	"github.com/wrdrobe/wrdrobe-backend/internal/utils"
)

var ErrEmptyCrop = errors.New("crop region does not overlap the canvas")

// ExportService rasterizes the live canvas to a downloadable PNG. Items
// paint in ascending z-order with their luminance masks applied, exactly
// the way the canvas renders them; selection chrome has no server-side
// representation, so exports are clean by construction.
type ExportService struct {
	canvas *CanvasService
	ai     *AIService
}

func NewExportService(canvas *CanvasService, ai *AIService) *ExportService {
	return &ExportService{canvas: canvas, ai: ai}
}

// RenderCanvas rasterizes the whole canvas region and returns a PNG data
// URI.
func (s *ExportService) RenderCanvas() (string, error) {
	img, err := s.render()
	if err != nil {
		return "", err
	}
	return encodePNGDataURI(img)
}

// RenderCrop rasterizes the canvas and crops to a canvas-space rectangle.
// Canvas space and image space are the same unscaled coordinate system,
// so the rectangle maps 1:1.
func (s *ExportService) RenderCrop(region models.Rect) (string, error) {
	img, err := s.render()
	if err != nil {
		return "", err
	}

	region = region.Normalize()
	crop := image.Rect(
		int(region.X), int(region.Y),
		int(region.X+region.Width), int(region.Y+region.Height),
	).Intersect(img.Bounds())
	if crop.Empty() {
		return "", ErrEmptyCrop
	}

	return encodePNGDataURI(imaging.Crop(img, crop))
}

// RenderComposite delegates to the generative model and returns its
// synthesized flat-lay directly; it is independent of the rasterization
// path.
func (s *ExportService) RenderComposite(ctx context.Context, aspectRatio string) (string, error) {
	items := s.canvas.Items()
	if len(items) == 0 {
		return "", ErrEmptyCanvas
	}

	req := make([]CompositeItem, len(items))
	for i, it := range items {
		req[i] = CompositeItem{PhotoDataURI: it.Item.PhotoDataURI, Category: it.Item.Category}
	}
	return s.ai.GenerateOutfitComposite(ctx, req, aspectRatio)
}

func (s *ExportService) render() (*image.NRGBA, error) {
	items := s.canvas.Items()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ZIndex < items[j].ZIndex
	})

	side := int(s.canvas.Size())
	out := imaging.New(side, side, color.NRGBA{})

	for _, item := range items {
		layer, err := renderItem(item)
		if err != nil {
			return nil, fmt.Errorf("render %q: %w", item.Item.Name, err)
		}
		// draw.Over clips layers that extend past the canvas edge.
		offset := image.Pt(int(item.X), int(item.Y))
		draw.Draw(out, layer.Bounds().Add(offset), layer, image.Point{}, draw.Over)
	}
	return out, nil
}

func renderItem(item models.CanvasItem) (*image.NRGBA, error) {
	photo, err := decodeImageDataURI(item.Item.PhotoDataURI)
	if err != nil {
		return nil, err
	}

	w, h := int(item.Width), int(item.Height)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	scaled := imaging.Resize(photo, w, h, imaging.Lanczos)

	if !item.Item.Masked() {
		return scaled, nil
	}

	mask, err := decodeImageDataURI(item.Item.Processing.MaskDataURI)
	if err != nil {
		return nil, err
	}
	return applyLuminanceMask(scaled, imaging.Resize(mask, w, h, imaging.Lanczos)), nil
}

// applyLuminanceMask scales each pixel's alpha by the mask's luminance:
// white keeps, black makes transparent, gray fades. The photo's pixel
// data is never baked over; masking happens at render time only.
func applyLuminanceMask(img *image.NRGBA, mask *image.NRGBA) *image.NRGBA {
	bounds := img.Bounds()
	out := imaging.Clone(img)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			m := mask.NRGBAAt(x, y)
			lum := (299*uint32(m.R) + 587*uint32(m.G) + 114*uint32(m.B)) / 1000
			p := out.NRGBAAt(x, y)
			p.A = uint8(uint32(p.A) * lum / 255)
			out.SetNRGBA(x, y, p)
		}
	}
	return out
}

func decodeImageDataURI(uri string) (image.Image, error) {
	_, data, err := utils.DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func encodePNGDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return utils.EncodeDataURI("image/png", buf.Bytes()), nil
}
