package repositories

import (
	"context"
	"fmt"
	"time"

	"zibana-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLogRepository is insert-only by contract: no update or delete
// operations exist, so the append-only compliance guarantee is structural.
type AuditLogRepository struct {
	DB *pgxpool.Pool
}

func NewAuditLogRepository(db *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{DB: db}
}

const auditColumns = `
	id, override_id, admin_actor_id, affected_user_id, action_type,
	override_reason, previous_state, new_state, metadata, created_at
`

// Insert appends one audit entry
func (r *AuditLogRepository) Insert(ctx context.Context, e *models.AuditLogEntry) error {
	query := `
		INSERT INTO admin_audit_log (
			override_id, admin_actor_id, affected_user_id, action_type,
			override_reason, previous_state, new_state, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	return r.DB.QueryRow(ctx, query,
		e.OverrideID, e.AdminActorID, e.AffectedUserID, e.ActionType,
		e.OverrideReason, e.PreviousState, e.NewState, e.Metadata, e.CreatedAt,
	).Scan(&e.ID)
}

// List returns audit entries newest first, optionally narrowed by actor,
// affected user and date range.
func (r *AuditLogRepository) List(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLogEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM admin_audit_log WHERE 1=1`
	args := []interface{}{}

	if filter.AdminActorID != "" {
		args = append(args, filter.AdminActorID)
		query += fmt.Sprintf(" AND admin_actor_id = $%d", len(args))
	}
	if filter.AffectedUserID != "" {
		args = append(args, filter.AffectedUserID)
		query += fmt.Sprintf(" AND affected_user_id = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	return r.queryEntries(ctx, query, args...)
}

// ListCreatedAfter returns entries strictly newer than the watermark, oldest
// first. Used by the off-site archive exporter.
func (r *AuditLogRepository) ListCreatedAfter(ctx context.Context, after time.Time) ([]*models.AuditLogEntry, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM admin_audit_log
		WHERE created_at > $1
		ORDER BY created_at ASC
	`
	return r.queryEntries(ctx, query, after)
}

func (r *AuditLogRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*models.AuditLogEntry, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.AuditLogEntry{}
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanAuditEntry(row pgx.Row) (*models.AuditLogEntry, error) {
	var e models.AuditLogEntry
	err := row.Scan(
		&e.ID, &e.OverrideID, &e.AdminActorID, &e.AffectedUserID, &e.ActionType,
		&e.OverrideReason, &e.PreviousState, &e.NewState, &e.Metadata, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
