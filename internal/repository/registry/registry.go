// Package registry assigns stable document identifiers.
//
// Index keys are deliberately decoupled from filename stems: two uploads
// named report.pdf and report.docx would otherwise collide after
// extension-stripping. The registry maps each full source filename to an
// assigned uuid, persisted in Redis, so re-ingesting the same file always
// resolves to the same id.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/docbricks/docbricks/internal/db"
	"github.com/docbricks/docbricks/internal/domain"
)

var keyPrefix = domain.KeyPrefix + "docid:"

// store is the consumer interface for the registry (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Del(ctx context.Context, key string) error
}

// Registry maps source filenames to assigned document ids.
type Registry struct {
	store store
}

// New creates a registry.
func New(s store) *Registry {
	return &Registry{store: s}
}

// Resolve returns the document id for a source filename, assigning and
// persisting a fresh uuid on first sight. SETNX arbitrates concurrent
// first ingestions of the same file.
func (r *Registry) Resolve(ctx context.Context, filename string) (string, error) {
	key := keyPrefix + filename

	data, err := r.store.Get(ctx, key)
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, db.ErrKeyNotFound) {
		return "", fmt.Errorf("resolve %s: %w: %w", filename, domain.ErrStoreUnavailable, err)
	}

	id := uuid.NewString()
	ok, err := r.store.SetNX(ctx, key, []byte(id))
	if err != nil {
		return "", fmt.Errorf("assign id for %s: %w: %w", filename, domain.ErrStoreUnavailable, err)
	}
	if ok {
		return id, nil
	}

	// Lost the assignment race; the winner's id is authoritative.
	data, err = r.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("reload id for %s: %w: %w", filename, domain.ErrStoreUnavailable, err)
	}
	return string(data), nil
}

// Lookup returns the id for a filename without assigning one.
func (r *Registry) Lookup(ctx context.Context, filename string) (string, error) {
	data, err := r.store.Get(ctx, keyPrefix+filename)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", fmt.Errorf("lookup %s: %w", filename, domain.ErrDocumentNotFound)
		}
		return "", fmt.Errorf("lookup %s: %w: %w", filename, domain.ErrStoreUnavailable, err)
	}
	return string(data), nil
}

// Forget drops the filename mapping, used when the source file is deleted.
func (r *Registry) Forget(ctx context.Context, filename string) error {
	if err := r.store.Del(ctx, keyPrefix+filename); err != nil {
		return fmt.Errorf("forget %s: %w: %w", filename, domain.ErrStoreUnavailable, err)
	}
	return nil
}
