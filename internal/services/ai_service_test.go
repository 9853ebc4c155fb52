// internal/services/ai_service_test.go
package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrdrobe/wrdrobe-backend/internal/models"
)

// stubGenerator satisfies Generator without touching the network.
type stubGenerator struct {
	generateImage func(ctx context.Context, prompt string, images []InlineImage) (InlineImage, error)
	generateText  func(ctx context.Context, prompt string) (string, error)
}

func (s *stubGenerator) GenerateImage(ctx context.Context, prompt string, images []InlineImage) (InlineImage, error) {
	return s.generateImage(ctx, prompt, images)
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.generateText(ctx, prompt)
}

func maskStub() *stubGenerator {
	return &stubGenerator{
		generateImage: func(_ context.Context, _ string, _ []InlineImage) (InlineImage, error) {
			return InlineImage{MIMEType: "image/png", Data: []byte("mask")}, nil
		},
	}
}

func newTestAI(t *testing.T, gen Generator) (*AIService, *WardrobeService) {
	t.Helper()
	wardrobe, _, _ := newTestWardrobe(t)
	return NewAIService(gen, wardrobe), wardrobe
}

func TestRemoveBackgroundStoresMask(t *testing.T) {
	ai, wardrobe := newTestAI(t, maskStub())
	item := addTestItem(t, wardrobe, "Shirt", "Tops")

	updated, err := ai.RemoveBackground(context.Background(), item.ID)
	require.NoError(t, err)

	require.NotNil(t, updated.Processing)
	assert.Equal(t, testPhotoURI, updated.Processing.OriginalPhotoDataURI)
	assert.Equal(t, models.AIActionRemove, updated.Processing.LastAction)
	assert.NotEmpty(t, updated.Processing.MaskDataURI)
	// The visible photo itself never changes; masking is render-time.
	assert.Equal(t, testPhotoURI, updated.PhotoDataURI)
}

func TestCreateCutoutRecordsAction(t *testing.T) {
	ai, wardrobe := newTestAI(t, maskStub())
	item := addTestItem(t, wardrobe, "Shirt", "Tops")

	updated, err := ai.CreateCutout(context.Background(), item.ID)
	require.NoError(t, err)

	require.NotNil(t, updated.Processing)
	assert.Equal(t, models.AIActionCutout, updated.Processing.LastAction)
}

func TestMaskOperationFailureLeavesItemUntouched(t *testing.T) {
	gen := &stubGenerator{
		generateImage: func(_ context.Context, _ string, _ []InlineImage) (InlineImage, error) {
			return InlineImage{}, errors.New("model unavailable")
		},
	}
	ai, wardrobe := newTestAI(t, gen)
	item := addTestItem(t, wardrobe, "Shirt", "Tops")

	_, err := ai.RemoveBackground(context.Background(), item.ID)
	require.Error(t, err)

	current, err := wardrobe.Get(item.ID)
	require.NoError(t, err)
	assert.Nil(t, current.Processing)
}

func TestConcurrentOperationsOnSameItemConflict(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var enteredOnce sync.Once
	gen := &stubGenerator{
		generateImage: func(_ context.Context, _ string, _ []InlineImage) (InlineImage, error) {
			// Signal entry only for the first call; the post-release call at
			// the end of the test must not close the channel again.
			enteredOnce.Do(func() { close(entered) })
			<-release
			return InlineImage{MIMEType: "image/png", Data: []byte("mask")}, nil
		},
	}
	ai, wardrobe := newTestAI(t, gen)
	item := addTestItem(t, wardrobe, "Shirt", "Tops")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := ai.RemoveBackground(context.Background(), item.ID)
		assert.NoError(t, err)
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first operation never reached the generator")
	}

	_, err := ai.CreateCutout(context.Background(), item.ID)
	assert.ErrorIs(t, err, ErrOperationInFlight)

	close(release)
	wg.Wait()

	// With the first flight done, the item accepts new operations.
	_, err = ai.CreateCutout(context.Background(), item.ID)
	assert.NoError(t, err)
}

func TestOperationsOnDifferentItemsRunIndependently(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	first := make(chan struct{}, 1)
	first <- struct{}{}
	gen := &stubGenerator{
		generateImage: func(_ context.Context, _ string, _ []InlineImage) (InlineImage, error) {
			// Only the first call blocks; later calls pass straight through.
			select {
			case <-first:
				close(entered)
				<-release
			default:
			}
			return InlineImage{MIMEType: "image/png", Data: []byte("mask")}, nil
		},
	}
	ai, wardrobe := newTestAI(t, gen)
	a := addTestItem(t, wardrobe, "Shirt", "Tops")
	b := addTestItem(t, wardrobe, "Pants", "Bottoms")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := ai.RemoveBackground(context.Background(), a.ID)
		assert.NoError(t, err)
	}()
	<-entered

	_, err := ai.RemoveBackground(context.Background(), b.ID)
	assert.NoError(t, err)

	close(release)
	wg.Wait()
}

func TestLateResultForDeletedItemIsDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gen := &stubGenerator{
		generateImage: func(_ context.Context, _ string, _ []InlineImage) (InlineImage, error) {
			close(entered)
			<-release
			return InlineImage{MIMEType: "image/png", Data: []byte("mask")}, nil
		},
	}
	ai, wardrobe := newTestAI(t, gen)
	item := addTestItem(t, wardrobe, "Shirt", "Tops")

	done := make(chan error, 1)
	go func() {
		_, err := ai.RemoveBackground(context.Background(), item.ID)
		done <- err
	}()
	<-entered

	require.NoError(t, wardrobe.Delete(item.ID))
	close(release)

	assert.ErrorIs(t, <-done, ErrItemNotFound)
	// The deletion sticks; the result must not resurrect the item.
	_, err := wardrobe.Get(item.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRefineMaskRequiresExistingMask(t *testing.T) {
	ai, wardrobe := newTestAI(t, maskStub())
	item := addTestItem(t, wardrobe, "Shirt", "Tops")

	_, err := ai.RefineMask(context.Background(), item.ID)
	assert.Error(t, err)
}

func TestRefineMaskReplacesMaskOnly(t *testing.T) {
	ai, wardrobe := newTestAI(t, maskStub())
	item := addTestItem(t, wardrobe, "Shirt", "Tops")

	first, err := ai.RemoveBackground(context.Background(), item.ID)
	require.NoError(t, err)

	ai.generator = &stubGenerator{
		generateImage: func(_ context.Context, _ string, _ []InlineImage) (InlineImage, error) {
			return InlineImage{MIMEType: "image/png", Data: []byte("refined")}, nil
		},
	}
	refined, err := ai.RefineMask(context.Background(), item.ID)
	require.NoError(t, err)

	assert.NotEqual(t, first.Processing.MaskDataURI, refined.Processing.MaskDataURI)
	assert.Equal(t, first.Processing.OriginalPhotoDataURI, refined.Processing.OriginalPhotoDataURI)
	assert.Equal(t, first.Processing.LastAction, refined.Processing.LastAction)
}

func TestGenerateOutfitCompositeRejectsEmptyInput(t *testing.T) {
	ai, _ := newTestAI(t, maskStub())

	_, err := ai.GenerateOutfitComposite(context.Background(), nil, "9:16")
	assert.Error(t, err)
}

func TestGenerateOutfitCompositeEmbedsAspectRatio(t *testing.T) {
	var seenPrompt string
	gen := &stubGenerator{
		generateImage: func(_ context.Context, prompt string, images []InlineImage) (InlineImage, error) {
			seenPrompt = prompt
			assert.Len(t, images, 2)
			return InlineImage{MIMEType: "image/png", Data: []byte("flatlay")}, nil
		},
	}
	ai, _ := newTestAI(t, gen)

	items := []CompositeItem{
		{PhotoDataURI: testPhotoURI, Category: "Tops"},
		{PhotoDataURI: testPhotoURI, Category: "Bottoms"},
	}
	uri, err := ai.GenerateOutfitComposite(context.Background(), items, "9:16")
	require.NoError(t, err)

	assert.Contains(t, seenPrompt, "9:16")
	assert.Contains(t, uri, "data:image/png;base64,")
}

func TestSuggestOutfitsParsesFencedJSON(t *testing.T) {
	gen := &stubGenerator{
		generateText: func(_ context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "Red Scarf")
			return "Here are some ideas:\n```json\n[{\"description\":\"Cozy autumn walk\",\"items\":[{\"name\":\"Red Scarf\",\"category\":\"Accessories\"}]}]\n```", nil
		},
	}
	ai, wardrobe := newTestAI(t, gen)
	addTestItem(t, wardrobe, "Red Scarf", "Accessories")

	suggestions, err := ai.SuggestOutfits(context.Background())
	require.NoError(t, err)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "Cozy autumn walk", suggestions[0].Description)
	require.Len(t, suggestions[0].Items, 1)
	// Photos come back rehydrated from the catalog by name.
	assert.Equal(t, testPhotoURI, suggestions[0].Items[0].PhotoDataURI)
}

func TestSuggestOutfitsRequiresItems(t *testing.T) {
	ai, _ := newTestAI(t, maskStub())

	_, err := ai.SuggestOutfits(context.Background())
	assert.Error(t, err)
}
