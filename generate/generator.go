// Package generate builds Gemini generateContent requests for text
// continuation and turns their responses into plain continuation text.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Paranoid-AF/aieditor/httpretry"
)

// DefaultBaseURL is the public Gemini API host.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Options configures a Generator.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Instruction string

	MaxRetries int
	BaseDelay  time.Duration
	// Timeout bounds one HTTP attempt; zero means no timeout.
	Timeout time.Duration

	Temperature     *float64
	MaxOutputTokens int

	// CacheTTL enables the continuation cache when positive.
	CacheTTL time.Duration

	// HTTPClient overrides the transport (tests point it at httptest servers).
	HTTPClient httpretry.Doer
	// Sleep overrides the backoff timer.
	Sleep httpretry.SleepFunc
}

// Generator requests continuations from the Gemini API. It is created once at
// startup and shared by reference with whatever issues requests.
type Generator struct {
	endpoint    string
	model       string
	instruction string
	genConfig   *GenerationConfig
	client      *httpretry.Client
	cache       *Cache
}

// NewGenerator creates a generator from options.
func NewGenerator(opts Options) *Generator {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	doer := opts.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: opts.Timeout}
	}

	retryOpts := []httpretry.Option{}
	if opts.MaxRetries > 0 {
		retryOpts = append(retryOpts, httpretry.WithMaxRetries(opts.MaxRetries))
	}
	if opts.BaseDelay > 0 {
		retryOpts = append(retryOpts, httpretry.WithBaseDelay(opts.BaseDelay))
	}
	if opts.Sleep != nil {
		retryOpts = append(retryOpts, httpretry.WithSleep(opts.Sleep))
	}

	var genConfig *GenerationConfig
	if opts.Temperature != nil || opts.MaxOutputTokens > 0 {
		genConfig = &GenerationConfig{Temperature: opts.Temperature, MaxOutputTokens: opts.MaxOutputTokens}
	}

	g := &Generator{
		endpoint: fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
			baseURL, url.PathEscape(opts.Model), url.QueryEscape(opts.APIKey)),
		model:       opts.Model,
		instruction: opts.Instruction,
		genConfig:   genConfig,
		client:      httpretry.New(doer, retryOpts...),
	}
	if opts.CacheTTL > 0 {
		g.cache = NewCache(opts.CacheTTL)
	}
	return g
}

// Model returns the model name requests are sent to.
func (g *Generator) Model() string { return g.model }

// Close stops the continuation cache, if any.
func (g *Generator) Close() {
	if g.cache != nil {
		g.cache.Close()
	}
}

// Continue returns the model's continuation of text.
func (g *Generator) Continue(ctx context.Context, text string) (string, error) {
	key := ""
	if g.cache != nil {
		key = cacheKey(g.model, g.instruction, text)
		if cached, ok := g.cache.Get(key); ok {
			slog.Debug("continuation cache hit", "model", g.model)
			return cached, nil
		}
	}

	body := BuildRequest(text, g.instruction)
	body.GenerationConfig = g.genConfig

	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(ctx, httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	slog.Debug("generateContent response", "status", resp.StatusCode, "elapsed", time.Since(start))

	continuation, err := ParseResponse(resp.StatusCode, respBody)
	if err != nil {
		return "", err
	}

	if g.cache != nil {
		g.cache.Put(key, continuation)
	}
	return continuation, nil
}
