package llm

import (
	"context"
	"fmt"

	"github.com/ffaguiar/verbo/internal/domain"
)

// MockModel is a ModelClient for development and tests. It echoes the
// prompt and reports how much history it was handed.
type MockModel struct{}

func NewMockModel() *MockModel {
	return &MockModel{}
}

func (m *MockModel) Generate(
	ctx context.Context,
	history []domain.Turn,
	prompt domain.Prompt,
) (string, error) {
	if prompt.Text == "" {
		return fmt.Sprintf("Recebi uma imagem de %d bytes.", len(prompt.ImageBytes)), nil
	}
	return fmt.Sprintf("Entendi. Você disse %q (%d turnos anteriores).", prompt.Text, len(history)), nil
}
