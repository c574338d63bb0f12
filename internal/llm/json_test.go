package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/credence/internal/model"
)

func TestParseJSON(t *testing.T) {
	type stance struct {
		Stance    string `json:"stance"`
		Rationale string `json:"rationale"`
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain object", `{"stance": "support", "rationale": "same event"}`, "support", false},
		{"json fence", "```json\n{\"stance\": \"refute\"}\n```", "refute", false},
		{"bare fence", "```\n{\"stance\": \"irrelevant\"}\n```", "irrelevant", false},
		{"prose around", `Sure! Here it is: {"stance": "support"} Hope this helps.`, "support", false},
		{"empty", "   ", "", true},
		{"not json", "support", "", true},
		{"truncated", `{"stance": "supp`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got stance
			err := ParseJSON(tt.input, &got)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("Expected ErrMalformed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJSON failed: %v", err)
			}
			if got.Stance != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.Stance)
			}
		})
	}
}

func TestParseJSON_Array(t *testing.T) {
	var claims []string
	if err := ParseJSON("Claims:\n[\"a\", \"b\"]", &claims); err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if len(claims) != 2 || claims[0] != "a" {
		t.Errorf("Unexpected claims: %v", claims)
	}
}

func TestCompleteJSON(t *testing.T) {
	p := ProviderFunc(func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
		return &CompletionResponse{Text: "no json here"}, nil
	})

	var out map[string]string
	raw, err := CompleteJSON(context.Background(), p, CompletionRequest{Prompt: "x"}, &out)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("Expected ErrMalformed, got %v", err)
	}
	if raw != "no json here" {
		t.Errorf("Expected raw text to be returned, got %q", raw)
	}
}

func TestLanguageInstruction(t *testing.T) {
	if got := systemPrompt(CompletionRequest{System: "sys", Language: model.LangZhTW}); got == "sys" {
		t.Error("Expected language instruction to be appended")
	}
	if got := systemPrompt(CompletionRequest{System: "sys"}); got != "sys" {
		t.Errorf("Expected system prompt unchanged without language, got %q", got)
	}
	if LanguageInstruction(model.LangAuto) == LanguageInstruction(model.LangEn) {
		t.Error("Expected auto to differ from English")
	}
}
