// internal/services/ai_generator.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/wrdrobe/wrdrobe-backend/internal/config"
	"github.com/wrdrobe/wrdrobe-backend/internal/utils"
)

// InlineImage is an image travelling to or from the generative model.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// Generator is the boundary to the external generative model. The
// service layer owns only this contract; everything behind it is the
// third-party model's problem.
type Generator interface {
	// GenerateImage sends images plus an instruction and expects one
	// image back.
	GenerateImage(ctx context.Context, prompt string, images []InlineImage) (InlineImage, error)
	// GenerateText sends a text prompt and expects text back.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator talks to the Gemini API.
type GeminiGenerator struct {
	apiKey     string
	imageModel string
	textModel  string
	timeout    time.Duration
}

func NewGeminiGenerator(cfg config.AIConfig) *GeminiGenerator {
	return &GeminiGenerator{
		apiKey:     cfg.APIKey,
		imageModel: cfg.ImageModel,
		textModel:  cfg.TextModel,
		timeout:    time.Duration(cfg.RequestTimeout) * time.Second,
	}
}

// withDeadline bounds a model call; image generation can run for minutes
// and a hung upstream must not hold the request forever.
func (g *GeminiGenerator) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *GeminiGenerator) client(ctx context.Context) (*genai.Client, error) {
	if g.apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

func (g *GeminiGenerator) GenerateImage(ctx context.Context, prompt string, images []InlineImage) (InlineImage, error) {
	ctx, cancel := g.withDeadline(ctx)
	defer cancel()

	client, err := g.client(ctx)
	if err != nil {
		return InlineImage{}, err
	}
	defer client.Close()

	model := client.GenerativeModel(g.imageModel)

	parts := make([]genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, genai.ImageData(imageFormat(img.MIMEType), img.Data))
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return InlineImage{}, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return InlineImage{}, errors.New("image generation failed to return an image")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok {
			return InlineImage{MIMEType: blob.MIMEType, Data: blob.Data}, nil
		}
	}
	return InlineImage{}, errors.New("image generation failed to return an image")
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := g.withDeadline(ctx)
	defer cancel()

	client, err := g.client(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(g.textModel)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("model returned no content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("model returned no text")
	}
	return sb.String(), nil
}

// imageFormat maps a MIME type to the short format name the SDK expects.
func imageFormat(mimeType string) string {
	if _, format, ok := strings.Cut(mimeType, "/"); ok {
		return format
	}
	return "png"
}

// decodeImage converts a data URI into an inline image for the model.
func decodeImage(dataURI string) (InlineImage, error) {
	mimeType, data, err := utils.DecodeDataURI(dataURI)
	if err != nil {
		return InlineImage{}, err
	}
	return InlineImage{MIMEType: mimeType, Data: data}, nil
}
