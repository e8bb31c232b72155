package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeChatAPI replies to chat-completion calls with canned content, keyed by
// the model the caller asked for.
type fakeChatAPI struct {
	mu       sync.Mutex
	requests []chatRequest
	replies  map[string][]string // model -> successive message contents
	served   map[string]int
}

func (f *fakeChatAPI) serve(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	if f.served == nil {
		f.served = map[string]int{}
	}
	queue := f.replies[req.Model]
	i := f.served[req.Model]
	f.served[req.Model]++
	f.mu.Unlock()

	if i >= len(queue) {
		// Empty choices: the model produced nothing.
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": queue[i]}},
		},
	})
}

func newTestClient(t *testing.T, api *fakeChatAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL))
}

func TestGenerateSlides_ParsesStructuredBody(t *testing.T) {
	api := &fakeChatAPI{replies: map[string][]string{
		slideModel: {`{
			"title": "Iqlim o'zgarishi",
			"subtitle": "Sabablari va oqibatlari",
			"slides": [
				{"slide_number": 1, "title": "Kirish", "content": "Matn", "bullet_points": ["a", "b"]},
				{"slide_number": 2, "title": "Sabablar", "content": "Matn"}
			]
		}`},
	}}
	c := newTestClient(t, api)

	out, err := c.GenerateSlides(context.Background(), "Iqlim o'zgarishi", "", 10, "uz")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.Title != "Iqlim o'zgarishi" || len(out.Slides) != 2 {
		t.Fatalf("parsed = %#v", out)
	}
	if len(out.Slides[0].Bullets) != 2 {
		t.Fatalf("bullets = %#v", out.Slides[0].Bullets)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.requests) != 1 {
		t.Fatalf("expected a single call, got %d", len(api.requests))
	}
	req := api.requests[0]
	if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
		t.Fatal("slides call must request a json_object response")
	}
	if !strings.Contains(req.Messages[1].Content, "10") {
		t.Fatal("prompt should carry the requested slide count")
	}
}

func TestGenerateSlides_EmptyChoices(t *testing.T) {
	api := &fakeChatAPI{} // no canned replies: every call yields empty choices
	c := newTestClient(t, api)

	_, err := c.GenerateSlides(context.Background(), "Iqlim", "", 10, "uz")
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("err = %v, want ErrEmptyContent", err)
	}
}

func TestGenerateSlides_BlankBodyIsEmptyContent(t *testing.T) {
	api := &fakeChatAPI{replies: map[string][]string{
		slideModel: {`{"title": "", "slides": []}`},
	}}
	c := newTestClient(t, api)

	if _, err := c.GenerateSlides(context.Background(), "Iqlim", "", 10, "uz"); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("err = %v, want ErrEmptyContent", err)
	}
}

func TestGeneratePitch_MarketAnalysisFeedsMainCall(t *testing.T) {
	api := &fakeChatAPI{replies: map[string][]string{
		pitchModel: {
			`{"market_analysis": "Bozor hajmi 120 mln dollar."}`,
			`{"project_name": "EduBot", "problem": "Talabalar vaqt yo'qotadi", "solution": "Bot"}`,
		},
	}}
	c := newTestClient(t, api)

	answers := []string{"EduBot", "Ta'lim botlari", "", "", "", "Talabalar"}
	out, err := c.GeneratePitch(context.Background(), answers, "uz")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.ProjectName != "EduBot" {
		t.Fatalf("parsed = %#v", out)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.requests) != 2 {
		t.Fatalf("pitch is a two-step flow, got %d calls", len(api.requests))
	}
	if !strings.Contains(api.requests[1].Messages[1].Content, "Bozor hajmi 120 mln dollar.") {
		t.Fatal("market analysis must be fed into the main pitch prompt")
	}
}

func TestGeneratePitch_SurvivesAnalysisFailure(t *testing.T) {
	// First pitchModel reply is consumed by the analysis step and is not
	// valid analysis JSON content; client must still produce the deck.
	api := &fakeChatAPI{replies: map[string][]string{
		pitchModel: {
			`not json`,
			`{"project_name": "EduBot", "problem": "p", "solution": "s"}`,
		},
	}}
	c := newTestClient(t, api)

	out, err := c.GeneratePitch(context.Background(), []string{"EduBot"}, "uz")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.ProjectName != "EduBot" {
		t.Fatalf("parsed = %#v", out)
	}
}

func TestGenerateCourseWork_ParsesChapters(t *testing.T) {
	api := &fakeChatAPI{replies: map[string][]string{
		courseModel: {`{
			"title": "Sun'iy intellekt asoslari",
			"introduction": "Kirish matni",
			"chapters": [
				{"title": "I BOB", "sections": [{"title": "1.1", "body": "Matn"}]}
			],
			"conclusion": "Xulosa",
			"references": ["Manba 1"]
		}`},
	}}
	c := newTestClient(t, api)

	out, err := c.GenerateCourseWork(context.Background(), CourseWorkRequest{
		WorkType:  "kurs_ishi",
		Topic:     "Sun'iy intellekt asoslari",
		PageCount: 12,
		Language:  "uz",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(out.Chapters) != 1 || out.Conclusion != "Xulosa" {
		t.Fatalf("parsed = %#v", out)
	}
}

func TestComplete_APIErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.GenerateSlides(context.Background(), "Iqlim", "", 10, "uz")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v, want status 429 in message", err)
	}
}

func TestWordBudget(t *testing.T) {
	if got := wordBudget(10); got != 3500 {
		t.Fatalf("wordBudget(10) = %d", got)
	}
	if got := wordBudget(0); got != wordsPerPage {
		t.Fatalf("wordBudget(0) = %d, want one page minimum", got)
	}
}
