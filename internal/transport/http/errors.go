package http

import (
	"errors"
	"net/http"

	"github.com/docbricks/docbricks/internal/domain"
)

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrFileNotFound,
		domain.ErrDocumentNotFound,
		domain.ErrEmptyDocument,
		domain.ErrDocumentNotIngestable,
		domain.ErrEmbeddingProvider,
		domain.ErrChatProvider,
		domain.ErrStoreUnavailable,
		domain.ErrCorruptArtifact,
		domain.ErrRetrieval,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}
