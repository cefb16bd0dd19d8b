// Package assistant implements the transcription and autocomplete service
// used by the note editor.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"fortress-go/internal/fortress"
)

const (
	transcribePrompt = "Transcribe the spoken content in this audio file accurately. Return only the transcription text, no preamble."
	completePrompt   = "You are a helpful writing assistant. Complete the following text or provide the next logical sentence/paragraph. Keep it concise.\n\nContext: %q\n\nCompletion:"
)

// generator is the subset of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini calls the Gemini API for transcription and autocomplete.
type Gemini struct {
	models generator
	model  string
	logger fortress.Logger
}

var _ fortress.Assistant = (*Gemini)(nil)

// NewGemini creates a client for the Gemini developer API.
func NewGemini(ctx context.Context, apiKey, model string, logger fortress.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return newGemini(client.Models, model, logger), nil
}

func newGemini(models generator, model string, logger fortress.Logger) *Gemini {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Gemini{models: models, model: model, logger: logger}
}

// Transcribe returns the spoken text of a finished recording.
func (g *Gemini) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: no audio to transcribe", fortress.ErrExternalService)
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(audio, mimeType),
		genai.NewPartFromText(transcribePrompt),
	}
	text, err := g.generate(ctx, parts)
	if err != nil {
		return "", fmt.Errorf("%w: transcribing audio: %v", fortress.ErrExternalService, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: transcription failed or empty", fortress.ErrExternalService)
	}
	g.logger.Debug("audio transcribed", "bytes", len(audio), "mime", mimeType)
	return text, nil
}

// Complete returns a short continuation of text. An empty suggestion is not
// an error.
func (g *Gemini) Complete(ctx context.Context, text string) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(fmt.Sprintf(completePrompt, text))}
	out, err := g.generate(ctx, parts)
	if err != nil {
		return "", fmt.Errorf("%w: autocomplete: %v", fortress.ErrExternalService, err)
	}
	return out, nil
}

func (g *Gemini) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := g.models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
