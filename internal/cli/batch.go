package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/pipeline"
	"github.com/ppiankov/credence/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchLang    string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many documents from a file in parallel",
	Long: `Batch verifies many documents concurrently:
- Read entries from the input file, one per line
- A line starting with "{" is a JSON document:
    {"text": "...", "language": "en", "reference_date": "2025-06-10T00:00:00Z"}
- Any other line is an article URL
- Blank lines and lines starting with "#" are skipped
- Write a JSON and a Markdown report per entry

Example:
  credence batch inputs.txt
  credence batch inputs.txt --concurrency 4 --output-dir ./reports
  credence batch urls.txt --lang zh-TW --timeout 1h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "documents verified at once (default: concurrency.batch_workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./credence-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchLang, "lang", "auto", "response language for URL entries (zh-TW, en, auto)")

	// Shared with verify
	batchCmd.Flags().Bool("render", false, "render pages in headless Chrome")
	batchCmd.Flags().String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	batchCmd.Flags().String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	batchCmd.Flags().String("search", "", "search provider (duckduckgo, searxng)")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	if err := bindFlags(cmd, commonFlagKeys); err != nil {
		return err
	}
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	applyLLMFlags(cfg)
	if concurrency <= 0 {
		concurrency = cfg.Concurrency.BatchWorkers
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Credence Batch Verification\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	stack, err := build(cfg, newLogger(verbose))
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(stack.pipeline, concurrency, model.ParseLanguage(batchLang))

	fmt.Fprintf(os.Stderr, "⚙️  Verifying entries with %d workers...\n\n", concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeEvidence)
	successCount, failureCount := writeBatchReports(renderer, results, outputDir)

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d entries\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// writeBatchReports writes a JSON and a Markdown report per successful result
// and returns the success and failure counts
func writeBatchReports(renderer *pipeline.Renderer, results []*worker.BatchResult, dir string) (int, int) {
	success, failure := 0, 0
	for _, result := range results {
		if result.Error != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}

		base := fmt.Sprintf("%03d-%s", result.Index+1, sanitizeFilename(result.Source))
		jsonPath := filepath.Join(dir, base+".json")
		mdPath := filepath.Join(dir, base+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Source, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Source, err)
			continue
		}

		success++
		fmt.Fprintf(os.Stderr, "✓ %s (%s)\n", result.Source, result.Report.Overall.Verdict)
	}
	return success, failure
}

// sanitizeFilename turns a URL or text snippet into a short file name
func sanitizeFilename(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")

	var b strings.Builder
	dash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	out := strings.TrimSuffix(b.String(), "-")
	// Limit length
	if runes := []rune(out); len(runes) > 60 {
		out = strings.TrimSuffix(string(runes[:60]), "-")
	}
	if out == "" {
		out = "report"
	}
	return out
}
