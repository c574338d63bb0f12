package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/credence/internal/model"
)

// Verifier verifies one batch entry
type Verifier interface {
	VerifyDocument(ctx context.Context, doc model.Document) (*model.Report, error)
	VerifyURL(ctx context.Context, url string, lang model.Language) (*model.Report, error)
}

// Entry is one line of a batch file: either a URL to fetch or an inline document
type Entry struct {
	URL      string
	Document *model.Document
}

// Source names the entry in batch output
func (e Entry) Source() string {
	if e.URL != "" {
		return e.URL
	}
	if e.Document == nil {
		return ""
	}
	if e.Document.SourceURL != "" {
		return e.Document.SourceURL
	}
	text := []rune(strings.TrimSpace(e.Document.Text))
	if len(text) > 40 {
		return string(text[:40]) + "..."
	}
	return string(text)
}

// verifyJob verifies one entry
type verifyJob struct {
	index    int
	entry    Entry
	language model.Language
	verifier Verifier
}

// Execute executes the verification job
func (j *verifyJob) Execute(ctx context.Context) Result {
	var (
		report *model.Report
		err    error
	)
	if j.entry.URL != "" {
		report, err = j.verifier.VerifyURL(ctx, j.entry.URL, j.language)
	} else {
		report, err = j.verifier.VerifyDocument(ctx, *j.entry.Document)
	}
	return &BatchResult{
		Index:  j.index,
		Source: j.entry.Source(),
		Report: report,
		Error:  err,
	}
}

// BatchResult represents the result of one batch entry
type BatchResult struct {
	Index  int
	Source string
	Report *model.Report
	Error  error
}

// GetError returns the error from the batch result
func (r *BatchResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies many documents concurrently
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
	language    model.Language
}

// NewBatchProcessor creates a new batch processor. lang applies to URL entries.
func NewBatchProcessor(verifier Verifier, concurrency int, lang model.Language) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
		language:    lang,
	}
}

// Process verifies entries concurrently and returns results in input order
func (b *BatchProcessor) Process(ctx context.Context, entries []Entry) []*BatchResult {
	if len(entries) == 0 {
		return []*BatchResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, entry := range entries {
		if !pool.Submit(&verifyJob{index: i, entry: entry, language: b.language, verifier: b.verifier}) {
			break
		}
	}

	results := pool.Wait()

	batchResults := make([]*BatchResult, 0, len(results))
	for _, result := range results {
		batchResults = append(batchResults, result.(*BatchResult))
	}
	sort.Slice(batchResults, func(i, j int) bool {
		return batchResults[i].Index < batchResults[j].Index
	})

	return batchResults
}

// ProcessFile reads entries from a file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*BatchResult, error) {
	entries, err := ReadEntriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	return b.Process(ctx, entries), nil
}

// ReadEntriesFromFile reads batch entries, one per line. A line starting
// with "{" is a JSON document ({"text", "language", "reference_date",
// "mode", "source_url"}); any other line is a URL. Blank lines and
// "#" comments are skipped, and repeated entries are read once.
func ReadEntriesFromFile(filePath string) ([]Entry, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []Entry
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate on the raw line
		if seen[line] {
			continue
		}
		seen[line] = true

		if !strings.HasPrefix(line, "{") {
			entries = append(entries, Entry{URL: line})
			continue
		}

		var doc model.Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if strings.TrimSpace(doc.Text) == "" {
			if doc.SourceURL == "" {
				return nil, fmt.Errorf("line %d: document has neither text nor source_url", lineNo)
			}
			entries = append(entries, Entry{URL: doc.SourceURL})
			continue
		}
		if doc.Language == "" {
			doc.Language = model.LangAuto
		}
		entries = append(entries, Entry{Document: &doc})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return entries, nil
}
