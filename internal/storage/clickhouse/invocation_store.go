package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/storage"
)

// InvocationStore implements storage.InvocationStore using ClickHouse.
type InvocationStore struct {
	conn *Conn
}

// NewInvocationStore creates a new InvocationStore.
func NewInvocationStore(conn *Conn) *InvocationStore {
	return &InvocationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.InvocationStore = (*InvocationStore)(nil)

const selectInvocation = `
	SELECT id, action, params, params_hash, status, error_kind, duration_ms, timestamp_ms
	FROM invocations
`

// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
func (s *InvocationStore) Insert(ctx context.Context, inv *domain.Invocation) (err error) {
	if inv == nil || inv.ID == "" || inv.Action == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_invocation", start, err) }(time.Now())

	// MergeTree does not enforce uniqueness; check explicitly for append-only semantics.
	exists, err := s.exists(ctx, inv.ID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO invocations (
			id, action, params, params_hash, status, error_kind, duration_ms, timestamp_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		inv.ID, inv.Action, string(inv.Params), inv.ParamsHash,
		string(inv.Status), inv.ErrorKind, inv.DurationMs, inv.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert invocation: %w", err)
	}
	return nil
}

// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
func (s *InvocationStore) GetByID(ctx context.Context, id string) (inv *domain.Invocation, err error) {
	defer func(start time.Time) { observe("get_invocation", start, err) }(time.Now())

	rows, err := s.conn.Query(ctx, selectInvocation+` WHERE id = ? LIMIT 1`, id)
	if err != nil {
		return nil, fmt.Errorf("query invocation by id: %w", err)
	}
	defer rows.Close()

	result, err := scanInvocations(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result[0], nil
}

// ListRecent returns up to limit records ordered by timestamp DESC.
func (s *InvocationStore) ListRecent(ctx context.Context, limit int) (result []*domain.Invocation, err error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}
	defer func(start time.Time) { observe("list_invocations", start, err) }(time.Now())

	rows, err := s.conn.Query(ctx, selectInvocation+` ORDER BY timestamp_ms DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent invocations: %w", err)
	}
	defer rows.Close()

	return scanInvocations(rows)
}

// CountByAction returns the number of recorded invocations per action.
func (s *InvocationStore) CountByAction(ctx context.Context) (counts map[string]int64, err error) {
	defer func(start time.Time) { observe("count_invocations", start, err) }(time.Now())

	rows, err := s.conn.Query(ctx, `SELECT action, count() FROM invocations GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("count invocations: %w", err)
	}
	defer rows.Close()

	counts = make(map[string]int64)
	for rows.Next() {
		var action string
		var n uint64
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("scan invocation count: %w", err)
		}
		counts[action] = int64(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocation counts: %w", err)
	}
	return counts, nil
}

func (s *InvocationStore) exists(ctx context.Context, id string) (bool, error) {
	var count uint64
	if err := s.conn.QueryRow(ctx, `SELECT count() FROM invocations WHERE id = ?`, id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanInvocations(rows driver.Rows) ([]*domain.Invocation, error) {
	var result []*domain.Invocation
	for rows.Next() {
		var inv domain.Invocation
		var params, status string
		if err := rows.Scan(
			&inv.ID, &inv.Action, &params, &inv.ParamsHash,
			&status, &inv.ErrorKind, &inv.DurationMs, &inv.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		if params != "" {
			inv.Params = []byte(params)
		}
		inv.Status = domain.InvocationStatus(status)
		result = append(result, &inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return result, nil
}
