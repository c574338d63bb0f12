package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/credence/internal/model"
)

// mockVerifier implements Verifier
type mockVerifier struct {
	failURL string
}

func (m *mockVerifier) VerifyDocument(ctx context.Context, doc model.Document) (*model.Report, error) {
	time.Sleep(5 * time.Millisecond) // Simulate work
	return &model.Report{Language: doc.Language, SourceURL: doc.SourceURL}, nil
}

func (m *mockVerifier) VerifyURL(ctx context.Context, url string, lang model.Language) (*model.Report, error) {
	time.Sleep(5 * time.Millisecond)
	if url == m.failURL {
		return nil, errors.New("fetch failed")
	}
	return &model.Report{Language: lang, SourceURL: url}, nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_Process(t *testing.T) {
	processor := NewBatchProcessor(&mockVerifier{failURL: "http://bad.example.com"}, 3, model.LangEn)

	entries := []Entry{
		{URL: "http://a.example.com"},
		{Document: &model.Document{Text: "The museum opened in 1998.", Language: model.LangZhTW}},
		{URL: "http://bad.example.com"},
		{URL: "http://b.example.com"},
	}

	results := processor.Process(context.Background(), entries)
	if len(results) != len(entries) {
		t.Fatalf("expected %d results, got %d", len(entries), len(results))
	}

	for i, res := range results {
		if res.Index != i {
			t.Errorf("expected result %d in input order, got index %d", i, res.Index)
		}
	}

	if results[1].Report == nil || results[1].Report.Language != model.LangZhTW {
		t.Errorf("expected document language kept, got %+v", results[1].Report)
	}
	if results[0].Report == nil || results[0].Report.Language != model.LangEn {
		t.Errorf("expected batch language for URL entries, got %+v", results[0].Report)
	}
	if results[2].Error == nil || results[2].Report != nil {
		t.Errorf("expected error and no report for failed URL, got %+v", results[2])
	}
	if results[2].Source != "http://bad.example.com" {
		t.Errorf("expected source URL, got %q", results[2].Source)
	}
}

func TestBatchProcessor_Process_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockVerifier{}, 2, model.LangAuto)

	results := processor.Process(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadEntriesFromFile(t *testing.T) {
	content := `http://example.com/a
# comment
{"text": "Fees rose this month.", "language": "zh-TW", "mode": "general"}

{"source_url": "http://example.com/b"}
http://example.com/a
{"text": "Undeclared language."}
   `

	entries, err := ReadEntriesFromFile(writeFile(t, content))
	if err != nil {
		t.Fatalf("ReadEntriesFromFile failed: %v", err)
	}

	expected := []Entry{
		{URL: "http://example.com/a"},
		{Document: &model.Document{Text: "Fees rose this month.", Language: model.LangZhTW, Mode: model.ModeGeneral}},
		{URL: "http://example.com/b"},
		{Document: &model.Document{Text: "Undeclared language.", Language: model.LangAuto}},
	}
	if diff := cmp.Diff(expected, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEntriesFromFile_Errors(t *testing.T) {
	tests := []struct {
		content string
		desc    string
	}{
		{`{"text": `, "malformed json"},
		{`{"language": "en"}`, "no text or url"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if _, err := ReadEntriesFromFile(writeFile(t, tt.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if _, err := ReadEntriesFromFile("non_existent_file.jsonl"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	content := "http://example.com\nhttps://example.org\n# comment\n\n{\"text\": \"Fees rose.\"}\n"

	processor := NewBatchProcessor(&mockVerifier{}, 2, model.LangAuto)
	results, err := processor.ProcessFile(context.Background(), writeFile(t, content))
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
	if results[2].Source != "Fees rose." {
		t.Errorf("expected document text as source, got %q", results[2].Source)
	}
}

func TestEntry_Source(t *testing.T) {
	long := Entry{Document: &model.Document{Text: "0123456789012345678901234567890123456789abc"}}
	if got := long.Source(); got != "0123456789012345678901234567890123456789..." {
		t.Errorf("expected truncated text, got %q", got)
	}

	withURL := Entry{Document: &model.Document{Text: "x", SourceURL: "http://example.com"}}
	if got := withURL.Source(); got != "http://example.com" {
		t.Errorf("expected source URL, got %q", got)
	}
}

func TestBatchResult_GetError(t *testing.T) {
	expected := errors.New("verify failed")
	r := &BatchResult{Source: "http://example.com", Error: expected}
	if r.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r.GetError())
	}
}
