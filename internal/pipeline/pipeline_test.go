package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/model"
)

// fakeVerifier returns a fixed verdict per claim text
type fakeVerifier struct {
	mu       sync.Mutex
	verdicts map[string]model.Verdict
	delays   map[string]time.Duration
	seen     []string
}

func (f *fakeVerifier) Verify(ctx context.Context, claim model.Claim) model.VerificationResult {
	if d := f.delays[claim.Text]; d > 0 {
		time.Sleep(d)
	}
	f.mu.Lock()
	f.seen = append(f.seen, claim.Text)
	f.mu.Unlock()

	verdict, ok := f.verdicts[claim.Text]
	if !ok {
		verdict = model.VerdictInsufficient
	}
	return model.VerificationResult{Verdict: verdict, Explanation: "checked " + claim.Text}
}

func extractorReturning(text string) *extract.Extractor {
	provider := llm.ProviderFunc(func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return &llm.CompletionResponse{Text: text}, nil
	})
	return extract.NewExtractor(provider, model.ExtractConfig{}, 0, nil)
}

func newTestPipeline(extractor *extract.Extractor, verifier ClaimVerifier, source Source) *Pipeline {
	p := NewPipeline(model.DefaultConfig(), Options{Extractor: extractor, Verifier: verifier, Source: source})
	p.now = func() time.Time { return time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC) }
	return p
}

func TestPipeline_General(t *testing.T) {
	verifier := &fakeVerifier{
		verdicts: map[string]model.Verdict{
			"The museum opened in 1998": model.VerdictSupported,
			"It has 3 floors":           model.VerdictSupported,
			"Admission is free":         model.VerdictSupported,
		},
		// First claim finishes last
		delays: map[string]time.Duration{"The museum opened in 1998": 30 * time.Millisecond},
	}
	p := newTestPipeline(
		extractorReturning(`["The museum opened in 1998", "It has 3 floors", "Admission is free"]`),
		verifier, nil,
	)

	report, err := p.VerifyDocument(context.Background(), model.Document{
		Text: "The museum opened in 1998. It has 3 floors. Admission is free.",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := uuid.Parse(report.ID); err != nil {
		t.Errorf("Expected UUID report ID, got %q", report.ID)
	}
	if !report.CreatedAt.Equal(time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected creation time %s", report.CreatedAt)
	}
	if report.Language != model.LangAuto {
		t.Errorf("Expected auto language for an empty one, got %q", report.Language)
	}

	var claims []string
	for _, item := range report.Items {
		claims = append(claims, item.Claim.Text)
		if item.Result.Explanation != "checked "+item.Claim.Text {
			t.Errorf("Result paired with the wrong claim: %q -> %q", item.Claim.Text, item.Result.Explanation)
		}
	}
	expected := []string{"The museum opened in 1998", "It has 3 floors", "Admission is free"}
	if diff := cmp.Diff(expected, claims); diff != "" {
		t.Errorf("Claim order mismatch (-want +got):\n%s", diff)
	}

	if report.Overall.Verdict != model.LevelHigh {
		t.Errorf("Expected HIGH, got %s", report.Overall.Verdict)
	}
	if report.Overall.Summary != "Supported: 3, Contradicted: 0, Insufficient evidence: 0" {
		t.Errorf("Unexpected summary %q", report.Overall.Summary)
	}
}

const article = `Title: Taipei raises parking fees
Date: 2025-06-10
Content: The Taipei City government said street parking fees rose to 40 dollars per hour.
The change took effect after a council vote.`

func TestPipeline_News(t *testing.T) {
	verifier := &fakeVerifier{verdicts: map[string]model.Verdict{
		"Street parking fees rose to 40 dollars per hour": model.VerdictSupported,
		"The change took effect after a council vote":     model.VerdictContradicted,
	}}
	p := newTestPipeline(
		extractorReturning(`{"title": "Taipei raises parking fees", "details": [
			"Street parking fees rose to 40 dollars per hour",
			"The change took effect after a council vote"
		]}`),
		verifier, nil,
	)

	report, err := p.VerifyDocument(context.Background(), model.Document{Text: article, Language: model.LangEn})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if report.Mode != model.ModeNews {
		t.Errorf("Expected news mode, got %q", report.Mode)
	}
	if report.Title == nil || report.Title.Text != "Taipei raises parking fees" {
		t.Errorf("Unexpected title %+v", report.Title)
	}
	if report.Overall.Verdict != model.LevelMisleading || report.Overall.TitleVerdict != model.LevelMisleading {
		t.Errorf("Expected MISLEADING, got %s / %s", report.Overall.Verdict, report.Overall.TitleVerdict)
	}
	if report.ReferenceDate == nil || report.ReferenceDate.Format(model.DateLayout) != "2025-06-10" {
		t.Errorf("Expected reference date from the date line, got %v", report.ReferenceDate)
	}
	for _, seen := range verifier.seen {
		if seen == "Taipei raises parking fees" {
			t.Error("Expected the headline to be judged from its details, not verified directly")
		}
	}
}

func TestPipeline_ExtractionError(t *testing.T) {
	p := newTestPipeline(extractorReturning("Sorry, I cannot help with that."), &fakeVerifier{}, nil)

	_, err := p.VerifyDocument(context.Background(), model.Document{Text: "Some claim text."})
	var extractionErr *extract.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Errorf("Expected ExtractionError, got %v", err)
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	verifier := &fakeVerifier{}
	p := newTestPipeline(extractorReturning(`["The museum opened in 1998"]`), verifier, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := p.VerifyDocument(ctx, model.Document{Text: "The museum opened in 1998."})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(report.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(report.Items))
	}
	if got := report.Items[0].Result; got.Verdict != model.VerdictInsufficient || got.Note != NoteCancelled {
		t.Errorf("Expected cancelled insufficient result, got %+v", got)
	}
	if len(verifier.seen) != 0 {
		t.Errorf("Expected no verification after cancel, got %v", verifier.seen)
	}
}

// staticSource serves fixed HTML
type staticSource struct {
	html string
	err  error
}

func (s *staticSource) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &FetchResult{HTML: s.html, StatusCode: 200, ContentType: "text/html", FinalURL: rawURL}, nil
}

const articlePage = `<html lang="en"><head>
<meta property="og:title" content="Taipei raises parking fees">
<meta property="article:published_time" content="2025-06-10T09:00:00Z">
</head><body><article>
<p>The Taipei City government said street parking fees rose to 40 dollars per hour.</p>
</article></body></html>`

func TestPipeline_VerifyURL(t *testing.T) {
	verifier := &fakeVerifier{verdicts: map[string]model.Verdict{
		"Street parking fees rose to 40 dollars per hour": model.VerdictSupported,
	}}
	p := newTestPipeline(
		extractorReturning(`{"title": "Taipei raises parking fees", "details": ["Street parking fees rose to 40 dollars per hour"]}`),
		verifier, &staticSource{html: articlePage},
	)

	report, err := p.VerifyURL(context.Background(), "https://news.example.com/parking", model.LangAuto)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.SourceURL != "https://news.example.com/parking" {
		t.Errorf("Expected page URL on the report, got %q", report.SourceURL)
	}
	if report.Language != model.LangEn {
		t.Errorf("Expected page language, got %q", report.Language)
	}
	if report.Mode != model.ModeNews || report.Overall.Verdict != model.LevelCredible {
		t.Errorf("Expected CREDIBLE news report, got %s %s", report.Mode, report.Overall.Verdict)
	}
	if report.ReferenceDate == nil || report.ReferenceDate.Format(model.DateLayout) != "2025-06-10" {
		t.Errorf("Expected publication date as reference, got %v", report.ReferenceDate)
	}
}

func TestPipeline_VerifyURLErrors(t *testing.T) {
	extractor := extractorReturning(`[]`)

	if _, err := newTestPipeline(extractor, &fakeVerifier{}, nil).VerifyURL(context.Background(), "https://example.com", model.LangAuto); err == nil {
		t.Error("Expected error without a page source")
	}

	failing := &staticSource{err: ErrDisallowed}
	if _, err := newTestPipeline(extractor, &fakeVerifier{}, failing).VerifyURL(context.Background(), "https://example.com", model.LangAuto); !errors.Is(err, ErrDisallowed) {
		t.Errorf("Expected ErrDisallowed, got %v", err)
	}
}
