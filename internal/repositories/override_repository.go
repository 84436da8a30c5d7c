package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zibana-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// SystemActorID is attributed to transitions driven by the expiry sweep
// rather than a human operator.
const SystemActorID = "system"

// OverrideRepository is the durable record of every override. The
// admin_overrides table carries a partial unique index on
// (target_user_id, action_type) WHERE status = 'active', so the one-active-
// override-per-pair invariant holds even across service instances. Status
// transitions use compare-and-set updates guarded on status = 'active'.
type OverrideRepository struct {
	DB *pgxpool.Pool
}

func NewOverrideRepository(db *pgxpool.Pool) *OverrideRepository {
	return &OverrideRepository{DB: db}
}

const overrideColumns = `
	id, target_user_id, admin_actor_id, action_type, override_reason, status,
	override_expires_at, previous_state, new_state,
	reverted_at, reverted_by, revert_reason, created_at
`

// Create persists a new active override. A concurrent active override for
// the same (target, action) pair trips the partial unique index, which is
// surfaced as a ConflictError.
func (r *OverrideRepository) Create(ctx context.Context, o *models.Override) error {
	query := `
		INSERT INTO admin_overrides (
			target_user_id, admin_actor_id, action_type, override_reason,
			status, override_expires_at, previous_state, new_state, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.DB.QueryRow(ctx, query,
		o.TargetUserID, o.AdminActorID, o.ActionType, o.OverrideReason,
		o.Status, o.OverrideExpiresAt, o.PreviousState, o.NewState, o.CreatedAt,
	).Scan(&o.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &models.ConflictError{
			Reason: fmt.Sprintf("an active %s override already exists for user %s", o.ActionType, o.TargetUserID),
		}
	}
	return err
}

// GetByID loads one override by id
func (r *OverrideRepository) GetByID(ctx context.Context, id string) (*models.Override, error) {
	query := `SELECT ` + overrideColumns + ` FROM admin_overrides WHERE id = $1`

	o, err := scanOverride(r.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{OverrideID: id}
	}
	return o, err
}

// GetActive returns the active override for a (target, action) pair, or nil
// if none exists.
func (r *OverrideRepository) GetActive(ctx context.Context, targetUserID string, actionType models.ActionType) (*models.Override, error) {
	query := `
		SELECT ` + overrideColumns + `
		FROM admin_overrides
		WHERE target_user_id = $1 AND action_type = $2 AND status = 'active'
	`

	o, err := scanOverride(r.DB.QueryRow(ctx, query, targetUserID, actionType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

// MarkReverted transitions an override from active to reverted. The update
// is guarded on status = 'active': if a concurrent revert or expiry already
// committed, no row matches and the caller gets a ConflictError.
func (r *OverrideRepository) MarkReverted(ctx context.Context, id, actorID, reason string, at time.Time) (*models.Override, error) {
	query := `
		UPDATE admin_overrides
		SET status = 'reverted', reverted_at = $2, reverted_by = $3, revert_reason = $4
		WHERE id = $1 AND status = 'active'
		RETURNING ` + overrideColumns

	o, err := scanOverride(r.DB.QueryRow(ctx, query, id, at, actorID, reason))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.ConflictError{
			Reason: fmt.Sprintf("override %s is already reverted or expired", id),
		}
	}
	return o, err
}

// MarkExpired transitions an override from active to expired, attributed to
// the system actor. Same compare-and-set guard as MarkReverted.
func (r *OverrideRepository) MarkExpired(ctx context.Context, id, reason string, at time.Time) (*models.Override, error) {
	query := `
		UPDATE admin_overrides
		SET status = 'expired', reverted_at = $2, reverted_by = $3, revert_reason = $4
		WHERE id = $1 AND status = 'active'
		RETURNING ` + overrideColumns

	o, err := scanOverride(r.DB.QueryRow(ctx, query, id, at, SystemActorID, reason))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.ConflictError{
			Reason: fmt.Sprintf("override %s is already reverted or expired", id),
		}
	}
	return o, err
}

// ListActive returns all active overrides, newest first
func (r *OverrideRepository) ListActive(ctx context.Context) ([]*models.Override, error) {
	query := `
		SELECT ` + overrideColumns + `
		FROM admin_overrides
		WHERE status = 'active'
		ORDER BY created_at DESC
	`
	return r.queryOverrides(ctx, query)
}

// ListByTarget returns the full override history for one target user,
// newest first.
func (r *OverrideRepository) ListByTarget(ctx context.Context, targetUserID string) ([]*models.Override, error) {
	query := `
		SELECT ` + overrideColumns + `
		FROM admin_overrides
		WHERE target_user_id = $1
		ORDER BY created_at DESC
	`
	return r.queryOverrides(ctx, query, targetUserID)
}

// ListExpiredDue returns active overrides whose expiry timestamp has passed,
// oldest first so long-overdue overrides are processed before fresh ones.
func (r *OverrideRepository) ListExpiredDue(ctx context.Context, now time.Time) ([]*models.Override, error) {
	query := `
		SELECT ` + overrideColumns + `
		FROM admin_overrides
		WHERE status = 'active'
		  AND override_expires_at IS NOT NULL
		  AND override_expires_at <= $1
		ORDER BY override_expires_at ASC
	`
	return r.queryOverrides(ctx, query, now)
}

func (r *OverrideRepository) queryOverrides(ctx context.Context, query string, args ...interface{}) ([]*models.Override, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := []*models.Override{}
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func scanOverride(row pgx.Row) (*models.Override, error) {
	var o models.Override
	err := row.Scan(
		&o.ID, &o.TargetUserID, &o.AdminActorID, &o.ActionType, &o.OverrideReason, &o.Status,
		&o.OverrideExpiresAt, &o.PreviousState, &o.NewState,
		&o.RevertedAt, &o.RevertedBy, &o.RevertReason, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
