// Package extractor turns an uploaded image or video into a text prompt for
// AI video generators by calling a multimodal model.
package extractor

import (
	"context"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/soraprompter/internal/models"
	"github.com/dmitrijs2005/soraprompter/internal/netx"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
)

var (
	ErrMissingAPIKey = errors.New("API key is missing")
	ErrEmptyResponse = errors.New("model returned no text")
	ErrEmptyMedia    = errors.New("media is empty")
)

//go:embed prompts/video_prompt.txt
var instruction string

// Extractor produces a video-generation prompt for the given media.
type Extractor interface {
	Extract(ctx context.Context, m *models.Media) (string, error)
}

// GeminiClient calls the Gemini generateContent REST endpoint with the media
// inlined as base64.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewGeminiClient builds a client. Empty model and baseURL fall back to the
// defaults; a zero timeout means the caller's context alone bounds the call.
func NewGeminiClient(apiKey, model, baseURL string, timeout time.Duration, hc *http.Client) *GeminiClient {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    hc,
	}
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClient) Extract(ctx context.Context, m *models.Media) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if m == nil || len(m.Data) == 0 {
		return "", ErrEmptyMedia
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	req := generateRequest{Contents: []content{{Parts: []part{
		{InlineData: &inlineData{MimeType: m.MIMEType, Data: base64.StdEncoding.EncodeToString(m.Data)}},
		{Text: instruction},
	}}}}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	headers := map[string]string{"x-goog-api-key": g.apiKey}

	var resp generateResponse
	if err := netx.PostJSON(ctx, g.http, url, headers, req, &resp); err != nil {
		return "", fmt.Errorf("gemini generateContent: %w", err)
	}

	var sb strings.Builder
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
