package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/credence/internal/model"
)

// Renderer writes reports as JSON, Markdown and a terminal summary
type Renderer struct {
	includeEvidence bool
}

// NewRenderer creates a renderer. Without includeEvidence the per-claim
// evidence lists are left out of every output.
func NewRenderer(includeEvidence bool) *Renderer {
	return &Renderer{includeEvidence: includeEvidence}
}

// view returns the report as it should be rendered
func (r *Renderer) view(report *model.Report) *model.Report {
	if r.includeEvidence {
		return report
	}
	out := *report
	out.Items = make([]model.ClaimReport, len(report.Items))
	for i, item := range report.Items {
		item.Result.Evidence = nil
		out.Items[i] = item
	}
	return &out
}

// WriteJSON writes the report as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r.view(report))
}

// RenderJSON writes the report as JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteJSON(w, report) })
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, r.Markdown(report))
		return err
	})
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return write(f)
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	report = r.view(report)
	var b strings.Builder

	b.WriteString("# Credibility Report\n\n")
	fmt.Fprintf(&b, "- **Report:** `%s`\n", report.ID)
	fmt.Fprintf(&b, "- **Mode:** %s\n", report.Mode)
	fmt.Fprintf(&b, "- **Language:** %s\n", report.Language)
	if report.SourceURL != "" {
		fmt.Fprintf(&b, "- **Source:** %s\n", report.SourceURL)
	}
	if report.ReferenceDate != nil {
		fmt.Fprintf(&b, "- **Reference date:** %s\n", report.ReferenceDate.Format(model.DateLayout))
	}
	fmt.Fprintf(&b, "- **Created:** %s\n\n", report.CreatedAt.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&b, "## Overall: %s\n\n", report.Overall.Verdict)
	if report.Overall.Title != "" {
		fmt.Fprintf(&b, "**Title:** %s → **%s**\n\n", report.Overall.Title, report.Overall.TitleVerdict)
	}
	fmt.Fprintf(&b, "%s\n\n", report.Overall.Summary)

	if len(report.Items) == 0 {
		b.WriteString("_No verifiable claims were extracted._\n")
		return b.String()
	}

	heading := "Claims"
	if report.Mode == model.ModeNews {
		heading = "Details"
	}
	fmt.Fprintf(&b, "## %s\n\n", heading)

	for i, item := range report.Items {
		res := item.Result
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, item.Claim.Text)

		verdict := string(res.Verdict)
		if res.Authoritative {
			verdict += " (authoritative source)"
		}
		fmt.Fprintf(&b, "- **Verdict:** %s\n", verdict)
		fmt.Fprintf(&b, "- **Evidence:** %s\n", res.Breakdown)
		if res.PreFiltered > 0 {
			fmt.Fprintf(&b, "- **Filtered out:** %d\n", res.PreFiltered)
		}
		if res.ClaimWindow != nil {
			fmt.Fprintf(&b, "- **Claim period:** %s\n", res.ClaimWindow)
		}
		if res.SearchQuery != "" {
			fmt.Fprintf(&b, "- **Search:** `%s`\n", res.SearchQuery)
		}
		if res.Note != "" {
			fmt.Fprintf(&b, "- **Note:** %s\n", res.Note)
		}
		b.WriteString("\n")

		if res.Explanation != "" {
			fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(res.Explanation, "\n", "\n> "))
		}
		if res.TemporalWarning != "" {
			fmt.Fprintf(&b, "⚠️ %s\n\n", res.TemporalWarning)
		}

		if len(res.Evidence) > 0 {
			b.WriteString("| # | Stance | Time | Authority | Source |\n")
			b.WriteString("|---|--------|------|-----------|--------|\n")
			for j, ev := range res.Evidence {
				stance := string(ev.Stance)
				switch {
				case !ev.PassesPreFilter:
					stance = "filtered"
				case ev.Excluded:
					stance = "excluded"
				case stance == "":
					stance = "-"
				}
				temporal := string(ev.TemporalStatus)
				if temporal == "" {
					temporal = "-"
				}
				title := ev.Item.Title
				if title == "" {
					title = ev.Item.SourceURL
				}
				fmt.Fprintf(&b, "| %d | %s | %s | %s | [%s](%s) |\n",
					j+1, stance, temporal, ev.Item.Authority, escapeCell(title), ev.Item.SourceURL)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "[", "(")
	return strings.ReplaceAll(s, "]", ")")
}

// RenderSummary prints a short terminal summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  Credibility: %s (%s mode)\n", report.Overall.Verdict, report.Mode)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	if report.Overall.Title != "" {
		fmt.Fprintf(w, "  Title: %s\n", report.Overall.Title)
	}
	fmt.Fprintf(w, "  %s\n\n", report.Overall.Summary)

	for i, item := range report.Items {
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, item.Result.Verdict, item.Claim.Text)
		fmt.Fprintf(w, "     %s\n", item.Result.Breakdown)
		if item.Result.TemporalWarning != "" {
			fmt.Fprintf(w, "     ⚠️  %s\n", item.Result.TemporalWarning)
		}
		if item.Result.Note != "" {
			fmt.Fprintf(w, "     note: %s\n", item.Result.Note)
		}
	}
	fmt.Fprintln(w)
}

// RenderAll writes JSON and Markdown when their paths are set and prints
// the summary to stdout
func (r *Renderer) RenderAll(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	r.RenderSummary(os.Stdout, report)
	return nil
}
