package store

import (
	"context"
	"database/sql"

	"github.com/clinic-records/apiserver/types"
)

// AuditRepository appends to and reads the audits table. There is no update
// or delete path.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry types.AuditLogEntry) error {
	const query = `
		INSERT INTO audits (user_id, action, resource, resource_id)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, entry.UserID, entry.Action, entry.Resource, entry.ResourceID); err != nil {
		return translateError(err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, offset, limit int) ([]types.AuditLogEntry, int, error) {
	const countQuery = `SELECT COUNT(1) FROM audits`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, user_id, action, resource, resource_id, timestamp
		FROM audits
		ORDER BY timestamp DESC, id DESC
		OFFSET $1 LIMIT $2`
	entries, err := r.list(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *AuditRepository) ListByUser(ctx context.Context, userID, offset, limit int) ([]types.AuditLogEntry, int, error) {
	const countQuery = `SELECT COUNT(1) FROM audits WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, user_id, action, resource, resource_id, timestamp
		FROM audits
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC
		OFFSET $2 LIMIT $3`
	entries, err := r.list(ctx, listQuery, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *AuditRepository) list(ctx context.Context, query string, args ...any) ([]types.AuditLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]types.AuditLogEntry, 0)
	for rows.Next() {
		var entry types.AuditLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Resource,
			&entry.ResourceID,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
