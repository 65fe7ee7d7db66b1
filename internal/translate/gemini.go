package translate

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiModel is deliberately the small/fast variant: the inputs are a
// headline and one paragraph.
const geminiModel = "gemini-1.5-flash"

// maxGeminiInputRunes caps prompt size; anything beyond a lead
// paragraph is a sign of a scraping bug, not a reason for a big prompt.
const maxGeminiInputRunes = 4000

var languageNames = map[string]string{
	"en": "English",
	"ja": "Japanese",
	"zh": "Chinese",
}

// GeminiEngine is an optional AI-backed engine used when GEMINI_API_KEY
// is set. It supports every language pair, so the bridge always takes
// the direct path with it.
type GeminiEngine struct {
	client *genai.Client
}

func NewGeminiEngine(ctx context.Context, apiKey string) (*GeminiEngine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiEngine{client: client}, nil
}

func (e *GeminiEngine) Close() {
	if e.client != nil {
		e.client.Close()
	}
}

func (e *GeminiEngine) HasPair(from, to string) bool {
	return true
}

func (e *GeminiEngine) Available() bool {
	return e.client != nil
}

func (e *GeminiEngine) Translate(ctx context.Context, text, from, to string) (string, error) {
	if utf8.RuneCountInString(text) > maxGeminiInputRunes {
		runes := []rune(text)
		text = string(runes[:maxGeminiInputRunes])
	}

	prompt := fmt.Sprintf(
		"Translate the following %s news text to %s.\n"+
			"Keep proper names untranslated. Output only the translation, no commentary.\n\n%s",
		languageName(from), languageName(to), text)

	model := e.client.GenerativeModel(geminiModel)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty gemini response")
	}

	out := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return strings.TrimSpace(out), nil
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
