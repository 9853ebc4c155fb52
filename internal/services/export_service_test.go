// internal/services/export_service_test.go
package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrdrobe/wrdrobe-backend/internal/config"
	"github.com/wrdrobe/wrdrobe-backend/internal/models"
	"github.com/wrdrobe/wrdrobe-backend/internal/utils"
)

// Export tests run on a tiny 8x8 canvas so pixel assertions stay cheap.
func tinyCanvasConfig() config.CanvasConfig {
	return config.CanvasConfig{Size: 8, DefaultItemSize: 4, MinItemSize: 1}
}

func solidPNGDataURI(t *testing.T, w, h int, c color.NRGBA) string {
	t.Helper()
	return encodeTestPNG(t, imaging.New(w, h, c))
}

func encodeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return utils.EncodeDataURI("image/png", buf.Bytes())
}

func decodeResultPNG(t *testing.T, dataURI string) *image.NRGBA {
	t.Helper()
	mimeType, data, err := utils.DecodeDataURI(dataURI)
	require.NoError(t, err)
	require.Equal(t, "image/png", mimeType)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return imaging.Clone(img)
}

func solidItem(t *testing.T, id, name string, c color.NRGBA) models.ClothingItem {
	t.Helper()
	return models.ClothingItem{
		ID:           id,
		Name:         name,
		Category:     "Tops",
		PhotoDataURI: solidPNGDataURI(t, 4, 4, c),
	}
}

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestRenderCanvasDimensions(t *testing.T) {
	canvas := NewCanvasService(tinyCanvasConfig())
	export := NewExportService(canvas, nil)

	uri, err := export.RenderCanvas()
	require.NoError(t, err)

	img := decodeResultPNG(t, uri)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
	assert.Equal(t, uint8(0), img.NRGBAAt(3, 3).A)
}

func TestRenderCanvasPaintsInZOrder(t *testing.T) {
	canvas := NewCanvasService(tinyCanvasConfig())
	export := NewExportService(canvas, nil)

	// Both cover (0,0)-(4,4); blue is placed later so it paints on top.
	canvas.Place(solidItem(t, "1", "Red Shirt", red), 2, 2)
	b := canvas.Place(solidItem(t, "2", "Blue Shirt", blue), 2, 2)

	uri, err := export.RenderCanvas()
	require.NoError(t, err)
	assert.Equal(t, blue, decodeResultPNG(t, uri).NRGBAAt(1, 1))

	require.NoError(t, canvas.SendToBack(b.InstanceID))

	uri, err = export.RenderCanvas()
	require.NoError(t, err)
	assert.Equal(t, red, decodeResultPNG(t, uri).NRGBAAt(1, 1))
}

func TestRenderCanvasClipsOverhangingItems(t *testing.T) {
	canvas := NewCanvasService(tinyCanvasConfig())
	export := NewExportService(canvas, nil)

	// Centered on the corner: half the item hangs off the canvas.
	canvas.Place(solidItem(t, "1", "Red Shirt", red), 8, 8)

	uri, err := export.RenderCanvas()
	require.NoError(t, err)

	img := decodeResultPNG(t, uri)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, red, img.NRGBAAt(7, 7))
}

func TestMaskControlsTransparencyAtRenderTime(t *testing.T) {
	canvas := NewCanvasService(tinyCanvasConfig())
	export := NewExportService(canvas, nil)

	// Mask: left half white (keep), right half black (transparent).
	mask := imaging.New(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	for y := 0; y < 4; y++ {
		for x := 2; x < 4; x++ {
			mask.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}

	item := solidItem(t, "1", "Red Shirt", red)
	item.Processing = &models.ProcessingState{
		OriginalPhotoDataURI: item.PhotoDataURI,
		MaskDataURI:          encodeTestPNG(t, mask),
		LastAction:           models.AIActionRemove,
	}
	canvas.Load([]models.CanvasItem{{
		InstanceID: "inst-1",
		Item:       item,
		X:          0, Y: 0, Width: 4, Height: 4, ZIndex: 1,
	}})

	uri, err := export.RenderCanvas()
	require.NoError(t, err)

	img := decodeResultPNG(t, uri)
	assert.Equal(t, red, img.NRGBAAt(0, 1))
	assert.Equal(t, uint8(0), img.NRGBAAt(3, 1).A)
}

func TestRenderCropReturnsRegion(t *testing.T) {
	canvas := NewCanvasService(tinyCanvasConfig())
	export := NewExportService(canvas, nil)
	canvas.Place(solidItem(t, "1", "Red Shirt", red), 2, 2)

	uri, err := export.RenderCrop(models.Rect{X: 2, Y: 2, Width: 4, Height: 4})
	require.NoError(t, err)

	img := decodeResultPNG(t, uri)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
	assert.Equal(t, red, img.NRGBAAt(0, 0))
}

func TestRenderCropNormalizesDragDirection(t *testing.T) {
	canvas := NewCanvasService(tinyCanvasConfig())
	export := NewExportService(canvas, nil)

	uri, err := export.RenderCrop(models.Rect{X: 6, Y: 6, Width: -4, Height: -4})
	require.NoError(t, err)

	img := decodeResultPNG(t, uri)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestRenderCropOutsideCanvasFails(t *testing.T) {
	canvas := NewCanvasService(tinyCanvasConfig())
	export := NewExportService(canvas, nil)

	_, err := export.RenderCrop(models.Rect{X: 100, Y: 100, Width: 10, Height: 10})
	assert.ErrorIs(t, err, ErrEmptyCrop)
}

func TestRenderCompositeRequiresItems(t *testing.T) {
	canvas := NewCanvasService(tinyCanvasConfig())
	export := NewExportService(canvas, NewAIService(maskStub(), nil))

	_, err := export.RenderComposite(context.Background(), "1:1")
	assert.ErrorIs(t, err, ErrEmptyCanvas)
}

func TestRenderCompositeForwardsCanvasItems(t *testing.T) {
	canvas := NewCanvasService(tinyCanvasConfig())
	gen := &stubGenerator{
		generateImage: func(_ context.Context, prompt string, images []InlineImage) (InlineImage, error) {
			assert.Len(t, images, 2)
			assert.Contains(t, prompt, "16:9")
			return InlineImage{MIMEType: "image/png", Data: []byte("flatlay")}, nil
		},
	}
	export := NewExportService(canvas, NewAIService(gen, nil))

	canvas.Place(solidItem(t, "1", "Red Shirt", red), 2, 2)
	canvas.Place(solidItem(t, "2", "Blue Shirt", blue), 5, 5)

	uri, err := export.RenderComposite(context.Background(), "16:9")
	require.NoError(t, err)
	assert.Contains(t, uri, "data:image/png;base64,")
}
