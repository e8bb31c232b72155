package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

var ErrEmptyContent = errors.New("generator returned empty content")

const (
	defaultBaseURL = "https://api.openai.com/v1"
	slideModel     = "gpt-3.5-turbo"
	pitchModel     = "gpt-4"
	courseModel    = "gpt-4o"
)

// Client talks to an OpenAI-style chat-completions API.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 180 * time.Second},
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

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	Temperature    float64       `json:"temperature,omitempty"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete performs one chat-completions call and returns the raw JSON body
// the model produced.
func (c *Client) complete(ctx context.Context, model, system, user string, maxTokens int) ([]byte, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:      maxTokens,
		Temperature:    0.8,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content api status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("content api: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, ErrEmptyContent
	}
	return []byte(parsed.Choices[0].Message.Content), nil
}

// GenerateSlides produces the body of a plain presentation.
func (c *Client) GenerateSlides(ctx context.Context, topic, details string, slideCount int, language string) (*SlideContent, error) {
	log.Printf("[content] op=slides topic=%q slides=%d model=%s", truncate(topic, 40), slideCount, slideModel)

	raw, err := c.complete(ctx, slideModel,
		"Siz professional prezentatsiya mutaxassisisiz. Faqat JSON qaytaring.",
		slidePrompt(topic, details, slideCount, language),
		4000,
	)
	if err != nil {
		return nil, err
	}

	var out SlideContent
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("content api: decode slides: %w", err)
	}
	if out.Title == "" || len(out.Slides) == 0 {
		return nil, ErrEmptyContent
	}
	return &out, nil
}

// GeneratePitch produces the body of a pitch deck. A supplementary market
// analysis call feeds the main generation call; callers see a single step.
func (c *Client) GeneratePitch(ctx context.Context, answers []string, language string) (*PitchContent, error) {
	log.Printf("[content] op=pitch answers=%d model=%s", len(answers), pitchModel)

	market, err := c.marketAnalysis(ctx, answers, language)
	if err != nil {
		// Analysis is an enrichment, the main call still carries the answers.
		log.Printf("[content] market analysis skipped: %v", err)
		market = ""
	}

	raw, err := c.complete(ctx, pitchModel,
		"Siz eng tajribali pitch deck mutaxassisisiz. Batafsil, professional content yarating. Faqat JSON qaytaring.",
		pitchPrompt(answers, market, language),
		4000,
	)
	if err != nil {
		return nil, err
	}

	var out PitchContent
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("content api: decode pitch: %w", err)
	}
	if out.ProjectName == "" && out.Problem == "" {
		return nil, ErrEmptyContent
	}
	return &out, nil
}

// GenerateCourseWork produces the body of an academic document.
func (c *Client) GenerateCourseWork(ctx context.Context, req CourseWorkRequest) (*CourseContent, error) {
	log.Printf("[content] op=course_work topic=%q pages=%d model=%s", truncate(req.Topic, 40), req.PageCount, courseModel)

	raw, err := c.complete(ctx, courseModel,
		"Siz eng tajribali professor va akademik yozuvchisiz. Faqat JSON qaytaring.",
		coursePrompt(req),
		4000,
	)
	if err != nil {
		return nil, err
	}

	var out CourseContent
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("content api: decode course work: %w", err)
	}
	if out.Title == "" || (len(out.Chapters) == 0 && out.Introduction == "") {
		return nil, ErrEmptyContent
	}
	return &out, nil
}

func (c *Client) marketAnalysis(ctx context.Context, answers []string, language string) (string, error) {
	project := ""
	audience := ""
	if len(answers) > 1 {
		project = answers[1]
	}
	if len(answers) > 5 {
		audience = answers[5]
	}

	raw, err := c.complete(ctx, pitchModel,
		"Siz bozor tahlili mutaxassisisiz. Faqat JSON qaytaring.",
		fmt.Sprintf(`Loyiha: %s
Auditoriya: %s

Bozor hajmi, o'sish sur'ati va asosiy trendlar bo'yicha qisqa tahlil yozing (%s tilida).
JSON: {"market_analysis": "..."}`, project, audience, language),
		1000,
	)
	if err != nil {
		return "", err
	}

	var parsed struct {
		MarketAnalysis string `json:"market_analysis"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	return parsed.MarketAnalysis, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
