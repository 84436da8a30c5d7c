package models

import "time"

// SessionState is the slice of session-store state the session action
// handlers capture and restore. It is serialized to JSON and stored opaque
// in an override's previousState/newState snapshots.
type SessionState struct {
	SessionIDs       []string `json:"sessionIds"`
	AutoLoginEnabled bool     `json:"autoLoginEnabled"`
}

// PlatformUserState is the per-user flag row owned by the ride platform that
// the driver and rider action handlers mutate. Counters and flags here are
// maintained by out-of-scope platform services; this engine only corrects
// them under an override.
type PlatformUserState struct {
	UserID                   string    `json:"userId" db:"user_id"`
	DriverOnline             bool      `json:"driverOnline" db:"driver_online"`
	DriverAccessRevoked      bool      `json:"driverAccessRevoked" db:"driver_access_revoked"`
	RideAccessRevoked        bool      `json:"rideAccessRevoked" db:"ride_access_revoked"`
	CancellationCount        int       `json:"cancellationCount" db:"cancellation_count"`
	AcceptanceCount          int       `json:"acceptanceCount" db:"acceptance_count"`
	RiderCancellationWarning bool      `json:"riderCancellationWarning" db:"rider_cancellation_warning"`
	UpdatedAt                time.Time `json:"updatedAt" db:"updated_at"`
}
