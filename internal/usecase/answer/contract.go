package answer

import (
	"context"

	"github.com/docbricks/docbricks/internal/domain"
)

// Retriever finds the passages most relevant to a question.
type Retriever interface {
	Search(ctx context.Context, query string) ([]domain.RetrievalResult, error)
}

// ChatModel turns a grounded prompt into a completion.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
