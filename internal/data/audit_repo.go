package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/safemesh/mesh-console/internal/core"
	"github.com/safemesh/mesh-console/internal/data/pgxutil"
	"github.com/safemesh/mesh-console/internal/domain/model"
	apperrors "github.com/safemesh/mesh-console/internal/errors"
)

var _ core.AuditLogRepository = (*AuditRepo)(nil)

const (
	defaultAuditListLimit = 100
	maxAuditListLimit     = 10000
)

// auditColumns defines the column list for audit_log SELECT queries.
const auditColumns = `id, occurred_at, action, actor, details`

// AuditRepo mirrors audit entries into the audit_log table.
//
// Entry ids are only unique within one console process, so rows are keyed by
// (instance, id). Several consoles can share the table.
type AuditRepo struct {
	DB       *sql.DB
	Instance string
}

// NewAuditRepo creates a new AuditRepo writing as instance.
func NewAuditRepo(db *sql.DB, instance string) *AuditRepo {
	return &AuditRepo{DB: db, Instance: instance}
}

// Append inserts one entry. Re-appending the same id from the same instance
// is a conflict.
func (r *AuditRepo) Append(ctx context.Context, entry model.AuditLogEntry) error {
	if entry.ID == "" {
		return errors.New("audit entry id is required")
	}
	const query = `INSERT INTO audit_log (instance, ` + auditColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, query,
			r.Instance, entry.ID, entry.Timestamp.UTC(), entry.Action, entry.User, entry.Details)
		return err
	})
	if err != nil {
		return fmt.Errorf("append audit entry %s/%s: %w", r.Instance, entry.ID, apperrors.MapDBError(err))
	}
	return nil
}

// List returns entries most-recent-first, optionally filtered by a
// case-insensitive substring of action, actor or details.
func (r *AuditRepo) List(ctx context.Context, opts model.AuditListOptions) ([]model.AuditLogEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultAuditListLimit
	}
	if limit > maxAuditListLimit {
		limit = maxAuditListLimit
	}

	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT ` + auditColumns + ` FROM audit_log`)
	if f := strings.TrimSpace(opts.Filter); f != "" {
		args = append(args, "%"+escapeLike(f)+"%")
		query.WriteString(` WHERE (action ILIKE $1 OR actor ILIKE $1 OR details ILIKE $1)`)
	}
	args = append(args, limit)
	fmt.Fprintf(&query, ` ORDER BY occurred_at DESC, id DESC, instance LIMIT $%d`, len(args))

	var entries []model.AuditLogEntry
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query.String(), args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		entries, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.AuditLogEntry])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", apperrors.MapDBError(err))
	}
	return entries, nil
}

// escapeLike escapes LIKE wildcards so the filter matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
