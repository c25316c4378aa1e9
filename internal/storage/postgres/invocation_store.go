package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/storage"
)

// InvocationStore implements storage.InvocationStore using PostgreSQL.
type InvocationStore struct {
	pool *Pool
}

// NewInvocationStore creates a new InvocationStore.
func NewInvocationStore(pool *Pool) *InvocationStore {
	return &InvocationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.InvocationStore = (*InvocationStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
func (s *InvocationStore) Insert(ctx context.Context, inv *domain.Invocation) (err error) {
	if inv == nil || inv.ID == "" || inv.Action == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_invocation", start, err) }(time.Now())

	query := `
		INSERT INTO invocations (
			id, action, params, params_hash, status, error_kind, duration_ms, timestamp_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// Empty params are stored as NULL; jsonb rejects an empty string.
	var params any
	if len(inv.Params) > 0 {
		params = string(inv.Params)
	}

	_, err = s.pool.Exec(ctx, query,
		inv.ID,
		inv.Action,
		params,
		inv.ParamsHash,
		string(inv.Status),
		inv.ErrorKind,
		inv.DurationMs,
		inv.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert invocation: %w", err)
	}
	return nil
}

// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
func (s *InvocationStore) GetByID(ctx context.Context, id string) (inv *domain.Invocation, err error) {
	defer func(start time.Time) { observe("get_invocation", start, err) }(time.Now())

	query := `
		SELECT id, action, params, params_hash, status, error_kind, duration_ms, timestamp_ms
		FROM invocations
		WHERE id = $1
	`

	inv, err = scanInvocation(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get invocation by id: %w", err)
	}
	return inv, nil
}

// ListRecent returns up to limit records ordered by timestamp DESC.
func (s *InvocationStore) ListRecent(ctx context.Context, limit int) (result []*domain.Invocation, err error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}
	defer func(start time.Time) { observe("list_invocations", start, err) }(time.Now())

	query := `
		SELECT id, action, params, params_hash, status, error_kind, duration_ms, timestamp_ms
		FROM invocations
		ORDER BY timestamp_ms DESC, created_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent invocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		result = append(result, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return result, nil
}

// CountByAction returns the number of recorded invocations per action.
func (s *InvocationStore) CountByAction(ctx context.Context) (counts map[string]int64, err error) {
	defer func(start time.Time) { observe("count_invocations", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `SELECT action, COUNT(*) FROM invocations GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("count invocations: %w", err)
	}
	defer rows.Close()

	counts = make(map[string]int64)
	for rows.Next() {
		var action string
		var n int64
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("scan invocation count: %w", err)
		}
		counts[action] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocation counts: %w", err)
	}
	return counts, nil
}

// scanInvocation scans a single row into Invocation.
func scanInvocation(row pgx.Row) (*domain.Invocation, error) {
	var inv domain.Invocation
	var params *string
	var status string

	err := row.Scan(
		&inv.ID,
		&inv.Action,
		&params,
		&inv.ParamsHash,
		&status,
		&inv.ErrorKind,
		&inv.DurationMs,
		&inv.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	if params != nil {
		inv.Params = []byte(*params)
	}
	inv.Status = domain.InvocationStatus(status)
	return &inv, nil
}
