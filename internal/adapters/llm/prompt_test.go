package llm_test

import (
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/ffaguiar/verbo/internal/adapters/llm"
	"github.com/ffaguiar/verbo/internal/domain"
)

func textOf(t *testing.T, c *genai.Content) string {
	t.Helper()
	if len(c.Parts) == 0 {
		t.Fatal("content has no parts")
	}
	return c.Parts[len(c.Parts)-1].Text
}

func TestHistoryReplayedVerbatimInOrder(t *testing.T) {
	history := []domain.Turn{
		{Role: domain.RoleUser, Text: "hello"},
		{Role: domain.RoleModel, Text: "hi there"},
	}
	prompt := domain.Prompt{Text: "what did I just say?", Language: "English"}

	contents := llm.BuildContents(history, prompt, 0)

	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	if got := textOf(t, contents[0]); got != "hello" {
		t.Errorf("expected first turn replayed verbatim, got %q", got)
	}
	if contents[0].Role != string(genai.RoleUser) {
		t.Errorf("expected user role, got %q", contents[0].Role)
	}
	if got := textOf(t, contents[1]); got != "hi there" {
		t.Errorf("expected model turn replayed verbatim, got %q", got)
	}
	if contents[1].Role != string(genai.RoleModel) {
		t.Errorf("expected model role, got %q", contents[1].Role)
	}
}

func TestLanguageInstructionOnCurrentTurn(t *testing.T) {
	prompt := domain.Prompt{Text: "hello", Language: "Português (Brasil)"}

	contents := llm.BuildContents(nil, prompt, 0)

	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	got := textOf(t, contents[0])
	want := "Responda em Português (Brasil). hello"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestImageAttachedOnlyToCurrentTurn(t *testing.T) {
	history := []domain.Turn{
		{Role: domain.RoleUser, ImageB64: "aGVsbG8="}, // image-only past turn
		{Role: domain.RoleModel, Text: "a photo of something"},
	}
	prompt := domain.Prompt{
		ImageBytes: []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a},
		Language:   "English",
	}

	contents := llm.BuildContents(history, prompt, 0)

	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}

	// Past image turn replays as text only.
	for _, part := range contents[0].Parts {
		if part.InlineData != nil {
			t.Error("replayed turn should not carry image bytes")
		}
	}

	current := contents[2]
	if len(current.Parts) != 2 {
		t.Fatalf("expected image + text parts, got %d", len(current.Parts))
	}
	if current.Parts[0].InlineData == nil {
		t.Error("expected inline image bytes on current turn")
	}
	if !strings.Contains(current.Parts[1].Text, "Descreva esta imagem.") {
		t.Errorf("expected describe-image fallback, got %q", current.Parts[1].Text)
	}
}

func TestHistoryWindowCap(t *testing.T) {
	var history []domain.Turn
	for i := 0; i < 10; i++ {
		history = append(history, domain.Turn{Role: domain.RoleUser, Text: string(rune('a' + i))})
	}
	prompt := domain.Prompt{Text: "latest", Language: "English"}

	contents := llm.BuildContents(history, prompt, 4)

	if len(contents) != 5 {
		t.Fatalf("expected 4 history + 1 current, got %d", len(contents))
	}
	if got := textOf(t, contents[0]); got != "g" {
		t.Errorf("expected window to keep the last turns, first replayed is %q", got)
	}
}
