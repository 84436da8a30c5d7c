package repositories

import (
	"context"
	"errors"
	"time"

	"zibana-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserStateRepository reads and writes the platform_user_state row the
// driver and rider action handlers operate on. The row is owned by the wider
// ride platform; this engine touches it only through override handlers.
type UserStateRepository struct {
	DB *pgxpool.Pool
}

func NewUserStateRepository(db *pgxpool.Pool) *UserStateRepository {
	return &UserStateRepository{DB: db}
}

// Get returns the user's flag state. Users with no row yet get the platform
// default state rather than an error, so overrides work for users the
// platform has not flagged before.
func (r *UserStateRepository) Get(ctx context.Context, userID string) (*models.PlatformUserState, error) {
	query := `
		SELECT user_id, driver_online, driver_access_revoked, ride_access_revoked,
		       cancellation_count, acceptance_count, rider_cancellation_warning, updated_at
		FROM platform_user_state
		WHERE user_id = $1
	`

	var s models.PlatformUserState
	err := r.DB.QueryRow(ctx, query, userID).Scan(
		&s.UserID, &s.DriverOnline, &s.DriverAccessRevoked, &s.RideAccessRevoked,
		&s.CancellationCount, &s.AcceptanceCount, &s.RiderCancellationWarning, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.PlatformUserState{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save upserts the user's flag state
func (r *UserStateRepository) Save(ctx context.Context, s *models.PlatformUserState) error {
	query := `
		INSERT INTO platform_user_state (
			user_id, driver_online, driver_access_revoked, ride_access_revoked,
			cancellation_count, acceptance_count, rider_cancellation_warning, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			driver_online = EXCLUDED.driver_online,
			driver_access_revoked = EXCLUDED.driver_access_revoked,
			ride_access_revoked = EXCLUDED.ride_access_revoked,
			cancellation_count = EXCLUDED.cancellation_count,
			acceptance_count = EXCLUDED.acceptance_count,
			rider_cancellation_warning = EXCLUDED.rider_cancellation_warning,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.DB.Exec(ctx, query,
		s.UserID, s.DriverOnline, s.DriverAccessRevoked, s.RideAccessRevoked,
		s.CancellationCount, s.AcceptanceCount, s.RiderCancellationWarning, time.Now().UTC(),
	)
	return err
}
