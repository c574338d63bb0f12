package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/credence/internal/model"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	pageURL     string
	langFlag    string
	dateFlag    string
	modeFlag    string
	llmProvider string
	llmModel    string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Verify the claims of an article or free text",
	Long: `Verify extracts the checkable claims of a document and judges each
against external evidence:
- News articles (a title plus content) are checked detail by detail
- Free text is checked claim by claim
- Relative dates are resolved against the publication date
- Evidence from before the claim's period is flagged as stale

The document is read from a file, from stdin ("-" or no argument), or
fetched from --url.

Example:
  credence verify article.txt
  echo "The museum opened in 1998." | credence verify --lang en
  credence verify --url https://news.example.com/article --md report.md
  credence verify --url https://spa.example.com/story --render`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Output flags
	verifyCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (empty to skip)")
	verifyCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Input flags
	verifyCmd.Flags().StringVar(&pageURL, "url", "", "fetch the article from this URL")
	verifyCmd.Flags().StringVar(&langFlag, "lang", "auto", "response language (zh-TW, en, auto)")
	verifyCmd.Flags().StringVar(&dateFlag, "date", "", "publication date YYYY-MM-DD, anchors relative dates")
	verifyCmd.Flags().StringVar(&modeFlag, "mode", "", "news or general (default: detect)")
	verifyCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall verification timeout")

	// Page fetching flags
	verifyCmd.Flags().Bool("render", false, "render the page in headless Chrome (script-built articles)")
	verifyCmd.Flags().String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	verifyCmd.Flags().String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM and search flags
	verifyCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	verifyCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	verifyCmd.Flags().String("search", "", "search provider (duckduckgo, searxng)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := bindFlags(cmd, commonFlagKeys); err != nil {
		return err
	}
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	applyLLMFlags(cfg)

	logger := newLogger(verbose)
	stack, err := build(cfg, logger)
	if err != nil {
		return err
	}
	p := stack.pipeline

	lang := model.ParseLanguage(langFlag)

	var report *model.Report
	if pageURL != "" {
		if verbose {
			fmt.Fprintf(os.Stderr, "Fetching: %s\n", pageURL)
		}
		report, err = p.VerifyURL(ctx, pageURL, lang)
	} else {
		var doc model.Document
		doc, err = readDocument(args, os.Stdin, lang)
		if err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Verifying %d characters\n", len([]rune(doc.Text)))
		}
		report, err = p.VerifyDocument(ctx, doc)
	}
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Verified %d claims (%s mode)\n", len(report.Items), report.Mode)
		fmt.Fprintln(os.Stderr)
	}

	// Render outputs
	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// applyLLMFlags lets --llm-provider and --llm-model override the config
func applyLLMFlags(cfg *model.Config) {
	if llmProvider != "" && !strings.EqualFold(llmProvider, cfg.LLM.Provider) {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.APIKey = ""
		cfg.LLM.BaseURL = ""
		applyProviderEnv(cfg, os.Getenv)
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
}

// readDocument reads the document named by args, or stdin, and applies the
// --date and --mode flags
func readDocument(args []string, stdin io.Reader, lang model.Language) (model.Document, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("read input: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return model.Document{}, fmt.Errorf("no text provided")
	}

	doc := model.Document{Text: text, Language: lang}

	if dateFlag != "" {
		d, err := time.Parse(model.DateLayout, dateFlag)
		if err != nil {
			return model.Document{}, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
		}
		doc.ReferenceDate = &d
	}

	switch mode := model.Mode(strings.ToLower(modeFlag)); mode {
	case model.ModeAuto, model.ModeNews, model.ModeGeneral:
		doc.Mode = mode
	default:
		return model.Document{}, fmt.Errorf("unknown mode %q (news, general)", modeFlag)
	}

	return doc, nil
}
