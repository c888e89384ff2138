package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docbricks/docbricks/internal/domain"
)

// --- Mocks ---

type mockRetriever struct {
	hits []domain.RetrievalResult
	err  error
}

func (m *mockRetriever) Search(_ context.Context, _ string) ([]domain.RetrievalResult, error) {
	return m.hits, m.err
}

type mockChat struct {
	reply     string
	err       error
	gotPrompt string
}

func (m *mockChat) Complete(_ context.Context, prompt string) (string, error) {
	m.gotPrompt = prompt
	return m.reply, m.err
}

// --- Tests ---

func TestAsk_GroundsPromptInRetrievedPassages(t *testing.T) {
	retriever := &mockRetriever{hits: []domain.RetrievalResult{
		{ID: "doc-1", Text: "Total invoice amount was 1250 USD.", Score: 0.9},
		{ID: "doc-2", Text: "Payment is due within 30 days.", Score: 0.8},
	}}
	chat := &mockChat{reply: "1250 USD"}

	svc := New(retriever, chat)
	res, err := svc.Ask(context.Background(), "What was the invoice total?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if res.Answer != "1250 USD" {
		t.Errorf("answer = %q", res.Answer)
	}
	if len(res.Sources) != 2 {
		t.Errorf("sources = %d, want 2", len(res.Sources))
	}

	if !strings.Contains(chat.gotPrompt, "based only on the following context") {
		t.Errorf("prompt missing grounding instruction:\n%s", chat.gotPrompt)
	}
	for _, h := range retriever.hits {
		if !strings.Contains(chat.gotPrompt, h.Text) {
			t.Errorf("prompt missing passage %q", h.Text)
		}
	}
	if !strings.Contains(chat.gotPrompt, "What was the invoice total?") {
		t.Error("prompt missing the question")
	}
}

func TestAsk_NoHitsStillAsks(t *testing.T) {
	chat := &mockChat{reply: "I don't know."}
	svc := New(&mockRetriever{}, chat)

	res, err := svc.Ask(context.Background(), "Anything?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if res.Answer != "I don't know." {
		t.Errorf("answer = %q", res.Answer)
	}
	if len(res.Sources) != 0 {
		t.Errorf("sources = %d, want 0", len(res.Sources))
	}
}

func TestAsk_RetrieverFailure(t *testing.T) {
	wantErr := errors.New("store down")
	svc := New(&mockRetriever{err: wantErr}, &mockChat{})

	_, err := svc.Ask(context.Background(), "Anything?")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected retriever error, got %v", err)
	}
}

func TestAsk_ChatFailure(t *testing.T) {
	wantErr := errors.New("model unavailable")
	svc := New(&mockRetriever{}, &mockChat{err: wantErr})

	_, err := svc.Ask(context.Background(), "Anything?")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected chat error, got %v", err)
	}
}
