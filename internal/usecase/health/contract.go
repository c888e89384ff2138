package health

import "context"

// DBPinger checks vector store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// ArtifactLister checks that the sparse artifact directory is readable.
type ArtifactLister interface {
	List() ([]string, error)
}
