// Package render adapts the remote slide-rendering API: submit a generation
// job, poll it until an artifact is downloadable, fetch the file.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrGenerationFailed = errors.New("render generation failed")
	ErrWaitTimeout      = errors.New("render wait deadline exceeded")
)

const (
	defaultBaseURL      = "https://public-api.gamma.app/v1.0"
	defaultPollInterval = 10 * time.Second
	defaultWaitCeiling  = 10 * time.Minute

	themesCacheKey = "render:themes"
	themesCacheTTL = 6 * time.Hour
)

// SubmitRequest describes one render submission.
type SubmitRequest struct {
	Text       string
	Title      string
	SlideCount int
	Language   string
	ThemeID    string
}

// Theme is one visual theme offered by the renderer.
type Theme struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Client struct {
	apiKey       string
	baseURL      string
	httpc        *http.Client
	rdb          *redis.Client
	pollInterval time.Duration
	waitCeiling  time.Duration
}

func NewClient(apiKey string, rdb *redis.Client, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		httpc:        &http.Client{Timeout: 120 * time.Second},
		rdb:          rdb,
		pollInterval: defaultPollInterval,
		waitCeiling:  defaultWaitCeiling,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithPolling(interval, ceiling time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = interval
		c.waitCeiling = ceiling
	}
}

type submitPayload struct {
	InputText   string      `json:"inputText"`
	TextMode    string      `json:"textMode"`
	Format      string      `json:"format"`
	NumCards    int         `json:"numCards"`
	CardSplit   string      `json:"cardSplit"`
	ExportAs    string      `json:"exportAs"`
	TextOptions textOptions `json:"textOptions"`
	ThemeID     string      `json:"themeId,omitempty"`
}

type textOptions struct {
	Language string `json:"language"`
}

type submitResponse struct {
	GenerationID string `json:"generationId"`
}

// submitVariants is the fallback chain: the request as given, then the same
// request with the theme stripped. A rejected theme id must not sink the
// whole submission.
func submitVariants(req SubmitRequest) []SubmitRequest {
	variants := []SubmitRequest{req}
	if req.ThemeID != "" {
		bare := req
		bare.ThemeID = ""
		variants = append(variants, bare)
	}
	return variants
}

// Submit creates a render job and returns its generation id, walking the
// fallback chain until a variant is accepted.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	var lastErr error
	for _, v := range submitVariants(req) {
		id, err := c.submitOnce(ctx, v)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if v.ThemeID != "" {
			log.Printf("[render] submit theme=%s rejected, retrying without theme: %v", v.ThemeID, err)
		}
	}
	return "", lastErr
}

func (c *Client) submitOnce(ctx context.Context, req SubmitRequest) (string, error) {
	lang := req.Language
	if lang == "" {
		lang = "uz"
	}
	body, err := json.Marshal(submitPayload{
		InputText:   req.Text,
		TextMode:    "generate",
		Format:      "presentation",
		NumCards:    req.SlideCount,
		CardSplit:   "auto",
		ExportAs:    "pptx",
		TextOptions: textOptions{Language: lang},
		ThemeID:     req.ThemeID,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generations", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("render submit status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed submitResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("render submit: decode response: %w", err)
	}
	if parsed.GenerationID == "" {
		return "", errors.New("render submit: missing generationId")
	}

	log.Printf("[render] submitted generation=%s cards=%d theme=%s", parsed.GenerationID, req.SlideCount, orDefault(req.ThemeID))
	return parsed.GenerationID, nil
}

// GenerationStatus is the remote job state reported by the renderer.
type GenerationStatus struct {
	Status      string `json:"status"`
	ArtifactURL string `json:"pptxUrl"`
	ViewURL     string `json:"gammaUrl"`
}

func (c *Client) Status(ctx context.Context, generationID string) (*GenerationStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/generations/"+generationID, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// 202 means still being processed, body may be empty.
	if resp.StatusCode == http.StatusAccepted {
		return &GenerationStatus{Status: "processing"}, nil
	}

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed struct {
		Status    string `json:"status"`
		PptxURL   string `json:"pptxUrl"`
		ExportURL string `json:"exportUrl"`
		GammaURL  string `json:"gammaUrl"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("render status: decode response: %w", err)
	}

	artifact := parsed.PptxURL
	if artifact == "" {
		artifact = parsed.ExportURL
	}
	return &GenerationStatus{
		Status:      parsed.Status,
		ArtifactURL: artifact,
		ViewURL:     parsed.GammaURL,
	}, nil
}

// WaitForArtifact polls the generation until it is completed with a
// downloadable artifact URL. Completed-without-artifact counts as not ready.
// The total wait is bounded by the configured ceiling.
func (c *Client) WaitForArtifact(ctx context.Context, generationID string) (string, error) {
	deadline := time.Now().Add(c.waitCeiling)

	for {
		st, err := c.Status(ctx, generationID)
		if err != nil {
			log.Printf("[render] generation=%s status error: %v", generationID, err)
		} else {
			switch st.Status {
			case "failed", "error":
				return "", ErrGenerationFailed
			case "completed":
				if st.ArtifactURL != "" {
					return st.ArtifactURL, nil
				}
				log.Printf("[render] generation=%s completed but artifact not exported yet", generationID)
			}
		}

		if time.Now().After(deadline) {
			return "", ErrWaitTimeout
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// Download fetches the artifact into path.
func (c *Client) Download(ctx context.Context, url, path string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("render download status %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Themes lists the renderer's visual themes, cached in redis so menu
// rendering does not hit the remote API on every request.
func (c *Client) Themes(ctx context.Context) ([]Theme, error) {
	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, themesCacheKey).Bytes(); err == nil {
			var themes []Theme
			if err := json.Unmarshal(cached, &themes); err == nil {
				return themes, nil
			}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/themes?limit=50", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render themes status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed struct {
		Data []Theme `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("render themes: decode response: %w", err)
	}

	if c.rdb != nil {
		if encoded, err := json.Marshal(parsed.Data); err == nil {
			if err := c.rdb.Set(ctx, themesCacheKey, encoded, themesCacheTTL).Err(); err != nil {
				log.Printf("[render] themes cache write error: %v", err)
			}
		}
	}
	return parsed.Data, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")
}

func orDefault(theme string) string {
	if theme == "" {
		return "default"
	}
	return theme
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
