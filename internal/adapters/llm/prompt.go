package llm

import (
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/ffaguiar/verbo/internal/domain"
)

// replayPlaceholder stands in for image payloads when history is
// replayed: only the turn that carries an image sends its bytes.
const replayPlaceholder = "[imagem enviada]"

// describeImageFallback matches the default instruction used when an
// image arrives without accompanying text.
const describeImageFallback = "Descreva esta imagem."

// BuildContents assembles the exact ordered message list submitted to
// the model: the replayed history followed by the new user turn. It
// never reorders or deduplicates; when maxTurns > 0 only the last
// maxTurns history entries are replayed (stored history is untouched).
func BuildContents(history []domain.Turn, p domain.Prompt, maxTurns int) []*genai.Content {
	if maxTurns > 0 && len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		text := t.Text
		if text == "" && t.HasImage() {
			text = replayPlaceholder
		}
		contents = append(contents, genai.NewContentFromText(text, roleFor(t.Role)))
	}

	return append(contents, currentContent(p))
}

// currentContent renders the new user turn, attaching image bytes when
// present and prefixing the language instruction the reply should follow.
func currentContent(p domain.Prompt) *genai.Content {
	instruction := renderInstruction(p)

	if len(p.ImageBytes) == 0 {
		return genai.NewContentFromText(instruction, genai.RoleUser)
	}

	mime := http.DetectContentType(p.ImageBytes)
	parts := []*genai.Part{
		genai.NewPartFromBytes(p.ImageBytes, mime),
		genai.NewPartFromText(instruction),
	}
	return genai.NewContentFromParts(parts, genai.RoleUser)
}

func renderInstruction(p domain.Prompt) string {
	text := p.Text
	if text == "" {
		text = describeImageFallback
	}
	return fmt.Sprintf("Responda em %s. %s", p.Language, text)
}

func roleFor(r domain.Role) genai.Role {
	switch r {
	case domain.RoleModel:
		return genai.RoleModel
	default:
		return genai.RoleUser
	}
}
