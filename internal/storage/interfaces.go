package storage

import (
	"context"

	"solana-risk-engine/internal/domain"
)

// InvocationStore provides access to the action invocation audit log.
type InvocationStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, inv *domain.Invocation) error

	// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Invocation, error)

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.Invocation, error)

	// CountByAction returns the number of recorded invocations per action.
	CountByAction(ctx context.Context) (map[string]int64, error)
}
