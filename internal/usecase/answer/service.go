// Package answer builds grounded completions on top of hybrid retrieval.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/docbricks/docbricks/internal/domain"
)

const promptTemplate = "Answer the question based only on the following context:\n%s\n\nQuestion: %s"

// Result carries the generated answer together with the passages that
// grounded it.
type Result struct {
	Answer  string
	Sources []domain.RetrievalResult
}

type Service struct {
	retriever Retriever
	chat      ChatModel
}

func New(retriever Retriever, chat ChatModel) *Service {
	return &Service{retriever: retriever, chat: chat}
}

// Ask retrieves the top passages for the question and asks the chat model
// to answer from them alone. A question that matches nothing still goes to
// the model with an empty context rather than failing.
func (s *Service) Ask(ctx context.Context, question string) (Result, error) {
	hits, err := s.retriever.Search(ctx, question)
	if err != nil {
		return Result{}, err
	}

	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		texts = append(texts, h.Text)
	}

	prompt := fmt.Sprintf(promptTemplate, strings.Join(texts, "\n\n"), question)
	completion, err := s.chat.Complete(ctx, prompt)
	if err != nil {
		return Result{}, err
	}

	return Result{Answer: completion, Sources: hits}, nil
}
