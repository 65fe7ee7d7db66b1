package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultEndpoint = "https://translate.googleapis.com/translate_a/single"

// HTTPEngine translates through the public translate endpoint, gated by
// the local model registry: only installed pairs are offered, so the
// bridge's direct/pivot routing matches what install-models set up.
type HTTPEngine struct {
	http     *resty.Client
	registry *Registry
}

func NewHTTPEngine(registry *Registry, timeout time.Duration) *HTTPEngine {
	return &HTTPEngine{
		http:     resty.New().SetBaseURL(defaultEndpoint).SetTimeout(timeout),
		registry: registry,
	}
}

func (e *HTTPEngine) HasPair(from, to string) bool {
	return e.registry.Has(from, to)
}

// Available reports whether any model is installed at all; the bridge
// uses this to tell "engine unavailable" apart from "no model for pair".
func (e *HTTPEngine) Available() bool {
	return !e.registry.Empty()
}

func (e *HTTPEngine) Translate(ctx context.Context, text, from, to string) (string, error) {
	resp, err := e.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     from,
			"tl":     to,
			"dt":     "t",
			"q":      text,
		}).
		Get("")
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("translate endpoint returned status %d", resp.StatusCode())
	}

	translated, err := parseTranslateResponse(resp.Body())
	if err != nil {
		return "", fmt.Errorf("parse translate response: %w", err)
	}
	return normalizeText(translated), nil
}

// parseTranslateResponse unpacks the endpoint's nested-array payload:
// the first element is a list of [translatedSegment, originalSegment, ...]
// tuples that concatenate to the full translation.
func parseTranslateResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response) == 0 {
		return "", errors.New("empty response")
	}

	segments, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected response format")
	}

	var result strings.Builder
	for _, segment := range segments {
		tuple, ok := segment.([]interface{})
		if !ok || len(tuple) == 0 {
			continue
		}
		if translated, ok := tuple[0].(string); ok {
			result.WriteString(translated)
		}
	}
	return result.String(), nil
}
