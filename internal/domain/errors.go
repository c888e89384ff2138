package domain

import "errors"

var (
	// ErrEmptyDocument signals a document whose text contains no indexable tokens.
	ErrEmptyDocument = errors.New("document text is empty")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentNotIngestable signals that upstream text for a document is unavailable.
	ErrDocumentNotIngestable = errors.New("document not ingestable")
	// ErrFileNotFound signals a missing pipeline file.
	ErrFileNotFound = errors.New("file not found")

	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrStoreUnavailable signals that the vector store cannot be reached.
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrRetrieval signals a failure during the fused similarity search.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrCorruptArtifact signals an unreadable sparse index artifact.
	ErrCorruptArtifact = errors.New("corrupt sparse artifact")

	// ErrChatProvider signals a chat completion provider failure.
	ErrChatProvider = errors.New("chat provider error")
)
