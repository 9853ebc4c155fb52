// internal/services/ai_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wrdrobe/wrdrobe-backend/internal/models"
	"github.com/wrdrobe/wrdrobe-backend/internal/utils"
)

var ErrOperationInFlight = errors.New("an AI operation is already running for this item")

// Prompts forwarded verbatim to the image model. The model does the
// heavy lifting; this service owns only the request/response contract.
const (
	removeBackgroundPrompt = "Analyze the image and identify the main subject. Create a black and white mask for this subject. The subject must be solid white, and the background must be solid black. The output must be a PNG file."

	createCutoutPrompt = "Analyze the image and identify the main subject. Create a black and white mask. The mask must represent the subject with a thick, irregular white border around it, as if cut with scissors. The subject and its border must be solid white, and everything else must be solid black. The output MUST be a PNG file."

	refineMaskPrompt = "You are an expert image processor. You will be given a black and white mask image. Your task is to identify the main white subject(s) in the image. Within the external contour of this white subject, you must fill any black areas or 'holes' with pure solid white (#FFFFFF). The goal is to make the entire subject a solid white silhouette, with no internal details. The background must remain pure solid black (#000000). The output MUST be a PNG file."

	outfitCompositePromptFmt = "Create a single, cohesive 'flat lay' image composition featuring these clothing items. Arrange them artfully on a clean, neutral, slightly textured background (like light wood or linen). The final image should look like a professional shot for a fashion blog or social media. Ensure the final image has an aspect ratio of %s. Do not include any text, logos, or human models."
)

// AIService drives the generative-image flows and merges results back
// into the catalog. Each item may have at most one request in flight;
// different items run independently. There is no retry and no
// cancellation of an issued request, and a failure leaves the item
// exactly as it was.
type AIService struct {
	generator Generator
	wardrobe  *WardrobeService

	mu       sync.Mutex
	inflight map[string]struct{}
}

// CompositeItem is one entry in an outfit-composite request.
type CompositeItem struct {
	PhotoDataURI string `json:"photoDataUri" validate:"required,datauri"`
	Category     string `json:"category" validate:"required"`
}

// OutfitSuggestion is one stylist proposal over the catalog.
type OutfitSuggestion struct {
	Description string          `json:"description"`
	Items       []SuggestedItem `json:"items"`
}

type SuggestedItem struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	PhotoDataURI string `json:"photoDataUri,omitempty"`
}

func NewAIService(generator Generator, wardrobe *WardrobeService) *AIService {
	return &AIService{
		generator: generator,
		wardrobe:  wardrobe,
		inflight:  make(map[string]struct{}),
	}
}

func (s *AIService) begin(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[itemID]; busy {
		return ErrOperationInFlight
	}
	s.inflight[itemID] = struct{}{}
	return nil
}

func (s *AIService) end(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, itemID)
}

// RemoveBackground asks the model for a subject mask of the item's photo
// and stores it on the item.
func (s *AIService) RemoveBackground(ctx context.Context, itemID string) (models.ClothingItem, error) {
	return s.maskOperation(ctx, itemID, "background removal", removeBackgroundPrompt, models.AIActionRemove)
}

// CreateCutout is RemoveBackground with a scissor-cut border effect.
func (s *AIService) CreateCutout(ctx context.Context, itemID string) (models.ClothingItem, error) {
	return s.maskOperation(ctx, itemID, "cutout creation", createCutoutPrompt, models.AIActionCutout)
}

func (s *AIService) maskOperation(ctx context.Context, itemID, operation, prompt string, action models.AIAction) (models.ClothingItem, error) {
	item, err := s.wardrobe.Get(itemID)
	if err != nil {
		return models.ClothingItem{}, err
	}

	if err := s.begin(itemID); err != nil {
		return models.ClothingItem{}, err
	}
	defer s.end(itemID)

	source, err := decodeImage(item.PhotoDataURI)
	if err != nil {
		return models.ClothingItem{}, fmt.Errorf("%s failed: %w", operation, err)
	}

	mask, err := s.generator.GenerateImage(ctx, prompt, []InlineImage{source})
	if err != nil {
		return models.ClothingItem{}, fmt.Errorf("%s failed: %w", operation, err)
	}

	updated, err := s.wardrobe.ApplyMaskResult(itemID, utils.EncodeDataURI(mask.MIMEType, mask.Data), action)
	if errors.Is(err, ErrItemNotFound) {
		// The item was deleted while the request was in flight; the
		// result is discarded rather than resurrecting the item.
		logrus.WithField("item_id", itemID).Info("Discarding AI result for deleted item")
		return models.ClothingItem{}, err
	}
	return updated, err
}

// RefineMask fills interior holes in the item's existing mask.
func (s *AIService) RefineMask(ctx context.Context, itemID string) (models.ClothingItem, error) {
	item, err := s.wardrobe.Get(itemID)
	if err != nil {
		return models.ClothingItem{}, err
	}
	if !item.Masked() {
		return models.ClothingItem{}, errors.New("mask refinement failed: item has no mask")
	}

	if err := s.begin(itemID); err != nil {
		return models.ClothingItem{}, err
	}
	defer s.end(itemID)

	source, err := decodeImage(item.Processing.MaskDataURI)
	if err != nil {
		return models.ClothingItem{}, fmt.Errorf("mask refinement failed: %w", err)
	}

	refined, err := s.generator.GenerateImage(ctx, refineMaskPrompt, []InlineImage{source})
	if err != nil {
		return models.ClothingItem{}, fmt.Errorf("mask refinement failed: %w", err)
	}

	updated, err := s.wardrobe.ReplaceMask(itemID, utils.EncodeDataURI(refined.MIMEType, refined.Data))
	if errors.Is(err, ErrItemNotFound) {
		logrus.WithField("item_id", itemID).Info("Discarding AI result for deleted item")
		return models.ClothingItem{}, err
	}
	return updated, err
}

// GenerateOutfitComposite synthesizes one flat-lay image from the given
// item photos. The result is returned for export only and never stored
// back onto any catalog item.
func (s *AIService) GenerateOutfitComposite(ctx context.Context, items []CompositeItem, aspectRatio string) (string, error) {
	if len(items) == 0 {
		return "", errors.New("outfit generation failed: no items provided")
	}

	images := make([]InlineImage, 0, len(items))
	for _, it := range items {
		img, err := decodeImage(it.PhotoDataURI)
		if err != nil {
			return "", fmt.Errorf("outfit generation failed: %w", err)
		}
		images = append(images, img)
	}

	prompt := fmt.Sprintf(outfitCompositePromptFmt, aspectRatio)
	result, err := s.generator.GenerateImage(ctx, prompt, images)
	if err != nil {
		return "", fmt.Errorf("outfit generation failed: %w", err)
	}
	return utils.EncodeDataURI(result.MIMEType, result.Data), nil
}

// SuggestOutfits asks the model for up to three outfit proposals built
// from the catalog metadata, then rehydrates photos by item name.
func (s *AIService) SuggestOutfits(ctx context.Context) ([]OutfitSuggestion, error) {
	wardrobe := s.wardrobe.List()
	if len(wardrobe) == 0 {
		return nil, errors.New("outfit suggestion failed: wardrobe is empty")
	}

	var sb strings.Builder
	sb.WriteString("You are a personal stylist AI. Given a user's wardrobe, suggest 3 different outfits.\n")
	sb.WriteString("Use the provided tags (like 'summer', 'work', 'casual') to create stylish, appropriate, and cohesive outfits. For example, don't mix 'winter' and 'summer' items.\n\nWardrobe:\n")
	for _, item := range wardrobe {
		fmt.Fprintf(&sb, "- Name: %s\n  Category: %s\n", item.Name, item.Category)
		if len(item.Tags) > 0 {
			fmt.Fprintf(&sb, "  Tags: %s\n", strings.Join(item.Tags, ", "))
		}
	}
	sb.WriteString("\nRespond with JSON only: an array of objects, each with a \"description\" string and an \"items\" array of {\"name\", \"category\"} referencing wardrobe items by their exact names.")

	raw, err := s.generator.GenerateText(ctx, sb.String())
	if err != nil {
		return nil, fmt.Errorf("outfit suggestion failed: %w", err)
	}

	var suggestions []OutfitSuggestion
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &suggestions); err != nil {
		return nil, fmt.Errorf("outfit suggestion failed: unexpected response format: %w", err)
	}

	byName := make(map[string]models.ClothingItem, len(wardrobe))
	for _, item := range wardrobe {
		byName[item.Name] = item
	}
	for i := range suggestions {
		for j := range suggestions[i].Items {
			if item, ok := byName[suggestions[i].Items[j].Name]; ok {
				suggestions[i].Items[j].PhotoDataURI = item.PhotoDataURI
			}
		}
	}
	return suggestions, nil
}

// extractJSONArray strips markdown fences and surrounding prose that
// models sometimes wrap around a JSON payload.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
