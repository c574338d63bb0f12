package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

func sampleReport() *model.Report {
	ref := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	return &model.Report{
		ID:            "report-1",
		Mode:          model.ModeNews,
		Language:      model.LangEn,
		SourceURL:     "https://news.example.com/parking",
		ReferenceDate: &ref,
		CreatedAt:     time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC),
		Title:         &model.Claim{Text: "Taipei raises parking fees", Kind: model.KindTitle},
		Items: []model.ClaimReport{
			{
				Claim: model.Claim{Text: "Fees rose to 40 dollars", Kind: model.KindDetail},
				Result: model.VerificationResult{
					Verdict:         model.VerdictContradicted,
					Breakdown:       model.Breakdown{Support: 0, Refute: 2, Irrelevant: 1},
					Explanation:     "City notice lists 30 dollars.",
					TemporalWarning: "Some evidence predates the claim period.",
					SearchQuery:     "Taipei parking fee",
					PreFiltered:     1,
					Evidence: []model.AssessedEvidence{
						{
							Item:            model.EvidenceItem{Title: "Fee | notice", SourceURL: "https://gov.example.tw/a", Authority: model.TierPrimary},
							PassesPreFilter: true,
							TemporalStatus:  model.TemporalRelevant,
							Stance:          model.StanceRefute,
						},
						{
							Item:            model.EvidenceItem{SourceURL: "https://blog.example.com/b", Authority: model.TierTertiary},
							PassesPreFilter: false,
						},
					},
				},
			},
		},
		Overall: model.OverallVerdict{
			Mode:         model.ModeNews,
			Verdict:      model.LevelMisleading,
			Summary:      "Supported: 0, Contradicted: 1, Insufficient evidence: 0",
			Title:        "Taipei raises parking fees",
			TitleVerdict: model.LevelMisleading,
		},
	}
}

func TestRenderer_Markdown(t *testing.T) {
	md := NewRenderer(true).Markdown(sampleReport())

	tests := []string{
		"# Credibility Report",
		"- **Reference date:** 2025-06-10",
		"## Overall: MISLEADING",
		"**Title:** Taipei raises parking fees → **MISLEADING**",
		"## Details",
		"### 1. Fees rose to 40 dollars",
		"- **Verdict:** Contradicted",
		"- **Evidence:** support 0, refute 2, irrelevant 1",
		"- **Filtered out:** 1",
		"- **Search:** `Taipei parking fee`",
		"> City notice lists 30 dollars.",
		"⚠️ Some evidence predates the claim period.",
		"| 1 | refute | relevant | primary | [Fee \\| notice](https://gov.example.tw/a) |",
		"| 2 | filtered | - | tertiary | [https://blog.example.com/b](https://blog.example.com/b) |",
	}
	for _, want := range tests {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q\n%s", want, md)
		}
	}
}

func TestRenderer_MarkdownEmpty(t *testing.T) {
	report := sampleReport()
	report.Mode = model.ModeGeneral
	report.Items = nil
	report.Overall = model.OverallVerdict{Mode: model.ModeGeneral, Verdict: model.LevelUncertain}

	md := NewRenderer(true).Markdown(report)
	if !strings.Contains(md, "_No verifiable claims were extracted._") {
		t.Errorf("Expected empty-report line, got:\n%s", md)
	}
	if strings.Contains(md, "**Title:**") {
		t.Error("Expected no title line in general mode")
	}
}

func TestRenderer_JSONWithoutEvidence(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	if err := NewRenderer(false).WriteJSON(&buf, report); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded model.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(decoded.Items) != 1 || decoded.Items[0].Result.Evidence != nil {
		t.Errorf("Expected evidence stripped, got %+v", decoded.Items)
	}
	if len(report.Items[0].Result.Evidence) != 2 {
		t.Error("Expected the original report to keep its evidence")
	}
	if decoded.Overall.Verdict != model.LevelMisleading {
		t.Errorf("Expected MISLEADING, got %s", decoded.Overall.Verdict)
	}
}

func TestRenderer_Files(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")

	r := NewRenderer(true)
	if err := r.RenderJSON(sampleReport(), jsonPath); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}
	if err := r.RenderMarkdown(sampleReport(), mdPath); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Read JSON: %v", err)
	}
	if !strings.Contains(string(data), `"id": "report-1"`) {
		t.Errorf("Unexpected JSON:\n%s", data)
	}
	if _, err := os.Stat(mdPath); err != nil {
		t.Errorf("Expected markdown file: %v", err)
	}

	if err := r.RenderJSON(sampleReport(), filepath.Join(dir, "missing", "r.json")); err == nil {
		t.Error("Expected error for a missing directory")
	}
}

func TestRenderer_Summary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(false).RenderSummary(&buf, sampleReport())
	out := buf.String()

	for _, want := range []string{
		"Credibility: MISLEADING (news mode)",
		"Title: Taipei raises parking fees",
		"1. [Contradicted] Fees rose to 40 dollars",
		"support 0, refute 2, irrelevant 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q\n%s", want, out)
		}
	}
}
