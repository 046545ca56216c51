package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/research-agent/internal/cache"
	"github.com/pdiddy/research-agent/pkg/types"
)

// --- fakes ---

type fakeProvider struct {
	hits   []types.SearchHit
	err    error
	called bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, _ string, _ types.SearchConfig) ([]types.SearchHit, error) {
	f.called = true
	return f.hits, f.err
}

const fakeSummary = "A sufficiently detailed summary of the page content, long enough to clear the acceptance floor."

const fakeReport = "# Key Findings\nSolid findings across sources.\n\n# Conclusion\nDone."

// fakeBackend routes generation calls by recognizing each prompt family.
// Summaries are generated from concurrent workers, so state is locked.
type fakeBackend struct {
	mu            sync.Mutex
	summaryCalls  int
	synthCalls    int
	followupCalls int
	prompts       []string

	summaryFn  func(prompt string) (string, error)
	synthFn    func(prompt string) (string, error)
	followupFn func(prompt string) (string, error)
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	switch {
	case strings.Contains(prompt, "follow-up questions"):
		f.followupCalls++
		if f.followupFn != nil {
			return f.followupFn(prompt)
		}
		return "1. What changed recently?\n2. Who are the key players?", nil
	case strings.Contains(prompt, "SOURCE 1:"):
		f.synthCalls++
		if f.synthFn != nil {
			return f.synthFn(prompt)
		}
		return fakeReport, nil
	default:
		f.summaryCalls++
		if f.summaryFn != nil {
			return f.summaryFn(prompt)
		}
		return fakeSummary, nil
	}
}

// --- page server ---

func pageHTML(marker string) string {
	return "<html><body><main><p>" + marker + " " +
		strings.Repeat("research content sentence. ", 60) + "</p></main></body></html>"
}

// newPageServer serves /pageN with distinct markers, /bad as 404, and
// /slowN with a delay shrinking as N grows.
func newPageServer(t *testing.T, requests *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			atomic.AddInt32(requests, 1)
		}
		switch {
		case r.URL.Path == "/bad":
			w.WriteHeader(http.StatusNotFound)
		case strings.HasPrefix(r.URL.Path, "/slow"):
			var n int
			fmt.Sscanf(r.URL.Path, "/slow%d", &n)
			time.Sleep(time.Duration(90-n*30) * time.Millisecond)
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, pageHTML("SLOW-"+r.URL.Path))
		default:
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, pageHTML("PAGE-"+strings.TrimPrefix(r.URL.Path, "/")))
		}
	}))
}

func testPipelineCfg() types.PipelineConfig {
	return types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
			MaxResults: 5,
			Region:     "us",
		},
		Scrape: types.ScrapeConfig{
			HTTPConfig:  types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
			Concurrency: 3,
		},
		Summarize: types.SummarizeConfig{
			Style:          types.StyleBrief,
			SynthesisStyle: types.SynthesisBalanced,
		},
	}
}

func hit(title, link string) types.SearchHit {
	return types.SearchHit{Title: title, Link: link, Snippet: "snippet for " + title}
}

// --- scenarios ---

func TestResearchEmptyQuery(t *testing.T) {
	a := New(&fakeProvider{}, &fakeBackend{}, http.DefaultClient, nil, testPipelineCfg())
	if _, err := a.Research(context.Background(), "   ", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestResearchNoHits(t *testing.T) {
	provider := &fakeProvider{}
	backend := &fakeBackend{}
	a := New(provider, backend, http.DefaultClient, nil, testPipelineCfg())

	result, err := a.Research(context.Background(), "obscure question", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	if result.Success {
		t.Error("run without hits must not succeed")
	}
	if result.Error != "No search results found" {
		t.Errorf("error = %q", result.Error)
	}
	if result.Results == nil || len(result.Results) != 0 {
		t.Errorf("results should be present and empty, got %v", result.Results)
	}
	if result.ComprehensiveSummary != "" {
		t.Errorf("no summary expected, got %q", result.ComprehensiveSummary)
	}
	if backend.summaryCalls+backend.synthCalls != 0 {
		t.Errorf("no generation calls expected, got %d summaries and %d syntheses",
			backend.summaryCalls, backend.synthCalls)
	}
}

func TestResearchProviderFailureIsNoHits(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("provider down")}
	a := New(provider, &fakeBackend{}, http.DefaultClient, nil, testPipelineCfg())

	var buf bytes.Buffer
	result, err := a.Research(context.Background(), "query", &buf)
	if err != nil {
		t.Fatalf("Research: %v", err)
	}
	if result.Error != "No search results found" {
		t.Errorf("error = %q", result.Error)
	}
	if !strings.Contains(buf.String(), "warning:") {
		t.Errorf("expected provider warning in progress output:\n%s", buf.String())
	}
}

func TestResearchHappyPath(t *testing.T) {
	srv := newPageServer(t, nil)
	defer srv.Close()

	provider := &fakeProvider{hits: []types.SearchHit{
		hit("First Page", srv.URL+"/page1"),
		hit("Second Page", srv.URL+"/page2"),
	}}
	backend := &fakeBackend{}
	a := New(provider, backend, srv.Client(), nil, testPipelineCfg())

	var buf bytes.Buffer
	result, err := a.Research(context.Background(), "test query", &buf)
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	if !result.Success {
		t.Error("expected success")
	}
	if result.Error != "" {
		t.Errorf("unexpected run error %q", result.Error)
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result.Results))
	}
	for i, item := range result.Results {
		if !item.Success {
			t.Errorf("item %d failed: %s", i, item.Error)
		}
		if item.Summary != fakeSummary {
			t.Errorf("item %d summary = %q", i, item.Summary)
		}
		if item.Content == "" {
			t.Errorf("item %d missing content preview", i)
		}
	}
	if result.Results[0].Title != "First Page" || result.Results[1].Title != "Second Page" {
		t.Errorf("ranking not preserved: %v", result.Results)
	}
	if result.ComprehensiveSummary != fakeReport {
		t.Errorf("report = %q", result.ComprehensiveSummary)
	}
	if backend.summaryCalls != 2 || backend.synthCalls != 1 {
		t.Errorf("generation calls: %d summaries, %d syntheses", backend.summaryCalls, backend.synthCalls)
	}

	out := buf.String()
	for _, want := range []string{"found 2 search results", "synthesizing report from 2 sources", "Research summary: 2 summarized, 0 failed (total: 2)"} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output missing %q:\n%s", want, out)
		}
	}
}

func TestResearchExtractionFailureSkipsSummarization(t *testing.T) {
	srv := newPageServer(t, nil)
	defer srv.Close()

	provider := &fakeProvider{hits: []types.SearchHit{hit("Broken", srv.URL + "/bad")}}
	backend := &fakeBackend{}
	a := New(provider, backend, srv.Client(), nil, testPipelineCfg())

	result, err := a.Research(context.Background(), "query", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	if result.Success {
		t.Error("run with only failed sources must not succeed")
	}
	if result.Error != "" {
		t.Errorf("per-source failure must not set the run error, got %q", result.Error)
	}
	item := result.Results[0]
	if item.Success {
		t.Error("item should have failed")
	}
	if !strings.HasPrefix(item.Error, "HTTP error: 404") {
		t.Errorf("item error = %q", item.Error)
	}
	if item.Summary != "" || item.Content != "" {
		t.Errorf("failed item must not carry content or summary: %+v", item)
	}
	if backend.summaryCalls != 0 {
		t.Errorf("summarizer called %d times for an unscraped source", backend.summaryCalls)
	}
	if result.ComprehensiveSummary != "" {
		t.Errorf("no synthesis without successful sources, got %q", result.ComprehensiveSummary)
	}
}

func TestResearchSummarizeFailureExcludedFromSynthesis(t *testing.T) {
	srv := newPageServer(t, nil)
	defer srv.Close()

	provider := &fakeProvider{hits: []types.SearchHit{
		hit("Good Source", srv.URL+"/page1"),
		hit("Rejected Source", srv.URL+"/page2"),
	}}
	backend := &fakeBackend{
		summaryFn: func(prompt string) (string, error) {
			if strings.Contains(prompt, "PAGE-page2") {
				return "", fmt.Errorf("model overloaded")
			}
			return fakeSummary, nil
		},
	}
	a := New(provider, backend, srv.Client(), nil, testPipelineCfg())

	result, err := a.Research(context.Background(), "query", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	if !result.Success {
		t.Error("one good source should make the run a success")
	}
	if got := result.Results[1].Error; got != "Failed to summarize: model overloaded" {
		t.Errorf("second item error = %q", got)
	}

	// The rejected source must not leak into the synthesis prompt.
	var synthPrompt string
	for _, p := range backend.prompts {
		if strings.Contains(p, "SOURCE 1:") {
			synthPrompt = p
		}
	}
	if synthPrompt == "" {
		t.Fatal("synthesis prompt not captured")
	}
	if !strings.Contains(synthPrompt, "Good Source") {
		t.Error("good source missing from synthesis prompt")
	}
	if strings.Contains(synthPrompt, "Rejected Source") {
		t.Error("failed source leaked into synthesis prompt")
	}
}

func TestResearchSynthesisFailureAbsorbed(t *testing.T) {
	srv := newPageServer(t, nil)
	defer srv.Close()

	provider := &fakeProvider{hits: []types.SearchHit{hit("Only Page", srv.URL + "/page1")}}
	backend := &fakeBackend{
		synthFn: func(string) (string, error) { return "", fmt.Errorf("quota exhausted") },
	}
	a := New(provider, backend, srv.Client(), nil, testPipelineCfg())

	var buf bytes.Buffer
	result, err := a.Research(context.Background(), "query", &buf)
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	if !result.Success {
		t.Error("synthesis failure must not fail the run")
	}
	if result.ComprehensiveSummary != "" {
		t.Errorf("summary should be absent, got %q", result.ComprehensiveSummary)
	}
	if !result.Results[0].Success {
		t.Error("per-source result should stand")
	}
	if !strings.Contains(buf.String(), "warning: synthesis failed") {
		t.Errorf("expected synthesis warning:\n%s", buf.String())
	}
}

func TestResearchContentPreviewCapped(t *testing.T) {
	srv := newPageServer(t, nil)
	defer srv.Close()

	provider := &fakeProvider{hits: []types.SearchHit{hit("Long Page", srv.URL + "/page1")}}
	a := New(provider, &fakeBackend{}, srv.Client(), nil, testPipelineCfg())

	result, err := a.Research(context.Background(), "query", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	content := result.Results[0].Content
	if len(content) != previewLen+3 {
		t.Errorf("preview length = %d, want %d", len(content), previewLen+3)
	}
	if !strings.HasSuffix(content, "...") {
		t.Error("long preview should end with ellipsis")
	}
}

func TestResearchRankingPreservedWithConcurrency(t *testing.T) {
	srv := newPageServer(t, nil)
	defer srv.Close()

	// Earlier hits are slower, so completion order inverts arrival order.
	hits := []types.SearchHit{
		hit("Rank 1", srv.URL+"/slow0"),
		hit("Rank 2", srv.URL+"/slow1"),
		hit("Rank 3", srv.URL+"/slow2"),
		hit("Rank 4", srv.URL+"/slow3"),
	}
	provider := &fakeProvider{hits: hits}
	a := New(provider, &fakeBackend{}, srv.Client(), nil, testPipelineCfg())

	result, err := a.Research(context.Background(), "query", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	if len(result.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(result.Results))
	}
	for i, item := range result.Results {
		want := fmt.Sprintf("Rank %d", i+1)
		if item.Title != want {
			t.Errorf("result %d = %q, want %q", i, item.Title, want)
		}
	}
}

func TestResearchUsesCacheOnSecondRun(t *testing.T) {
	var requests int32
	srv := newPageServer(t, &requests)
	defer srv.Close()

	store := cache.NewMemory()
	hits := []types.SearchHit{hit("Cached Page", srv.URL + "/page1")}

	first := &fakeProvider{hits: hits}
	a := New(first, &fakeBackend{}, srv.Client(), store, testPipelineCfg())
	if _, err := a.Research(context.Background(), "repeat query", &bytes.Buffer{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstRequests := atomic.LoadInt32(&requests)
	if firstRequests == 0 {
		t.Fatal("first run should hit the page server")
	}

	second := &fakeProvider{hits: hits}
	a = New(second, &fakeBackend{}, srv.Client(), store, testPipelineCfg())
	var buf bytes.Buffer
	result, err := a.Research(context.Background(), "repeat query", &buf)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if second.called {
		t.Error("second run should not call the search provider")
	}
	if got := atomic.LoadInt32(&requests); got != firstRequests {
		t.Errorf("second run fetched pages again: %d -> %d requests", firstRequests, got)
	}
	if !result.Success {
		t.Error("cached run should succeed")
	}
	out := buf.String()
	if !strings.Contains(out, "search cache hit") || !strings.Contains(out, "cached: ") {
		t.Errorf("expected cache hit progress lines:\n%s", out)
	}
}

func TestResearchFollowupQuestions(t *testing.T) {
	srv := newPageServer(t, nil)
	defer srv.Close()

	cfg := testPipelineCfg()
	cfg.Agent.Followups = 3

	provider := &fakeProvider{hits: []types.SearchHit{hit("Page", srv.URL + "/page1")}}
	backend := &fakeBackend{
		followupFn: func(string) (string, error) {
			return "1. One?\n2. Two?\n3. Three?\n4. Four?\n5. Five?", nil
		},
	}
	a := New(provider, backend, srv.Client(), nil, cfg)

	result, err := a.Research(context.Background(), "query", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	if len(result.FollowupQuestions) != 3 {
		t.Errorf("followups = %v, want 3", result.FollowupQuestions)
	}
	if result.FollowupQuestions[0] != "One?" {
		t.Errorf("first question = %q", result.FollowupQuestions[0])
	}
}

func TestResearchNoFollowupsWithoutReport(t *testing.T) {
	srv := newPageServer(t, nil)
	defer srv.Close()

	cfg := testPipelineCfg()
	cfg.Agent.Followups = 3

	provider := &fakeProvider{hits: []types.SearchHit{hit("Page", srv.URL + "/page1")}}
	backend := &fakeBackend{
		synthFn: func(string) (string, error) { return "", fmt.Errorf("down") },
	}
	a := New(provider, backend, srv.Client(), nil, cfg)

	result, err := a.Research(context.Background(), "query", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	if len(result.FollowupQuestions) != 0 {
		t.Errorf("followups without a report: %v", result.FollowupQuestions)
	}
	if backend.followupCalls != 0 {
		t.Errorf("followup generation should be skipped, got %d calls", backend.followupCalls)
	}
}

func TestResearchResultJSONShape(t *testing.T) {
	provider := &fakeProvider{}
	a := New(provider, &fakeBackend{}, http.DefaultClient, nil, testPipelineCfg())

	result, err := a.Research(context.Background(), "nothing out there", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if m["success"] != false {
		t.Errorf("success = %v", m["success"])
	}
	if m["error"] != "No search results found" {
		t.Errorf("error = %v", m["error"])
	}
	results, ok := m["results"].([]any)
	if !ok || len(results) != 0 {
		t.Errorf("results should be an empty array, got %v", m["results"])
	}
	// Absent synthesis must not serialize at all.
	if _, present := m["comprehensive_summary"]; present {
		t.Error("comprehensive_summary should be omitted when absent")
	}
}
