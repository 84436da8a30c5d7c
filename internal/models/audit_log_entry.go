package models

import "time"

// AuditLogEntry is one immutable row in the append-only audit trail. One row
// is written per status transition of an override (apply, revert, or
// system-driven expiry). OverrideID is nullable so audit history survives
// even if an override record were ever purged.
type AuditLogEntry struct {
	ID             string     `json:"id" db:"id"`
	OverrideID     *string    `json:"overrideId" db:"override_id"`
	AdminActorID   string     `json:"adminActorId" db:"admin_actor_id"`
	AffectedUserID string     `json:"affectedUserId" db:"affected_user_id"`
	ActionType     ActionType `json:"actionType" db:"action_type"`
	OverrideReason string     `json:"overrideReason" db:"override_reason"`
	PreviousState  *string    `json:"previousState" db:"previous_state"`
	NewState       *string    `json:"newState" db:"new_state"`
	Metadata       *string    `json:"metadata" db:"metadata"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}

// AuditLogFilter narrows audit log queries. Zero values mean "no filter".
type AuditLogFilter struct {
	AdminActorID   string
	AffectedUserID string
	From           time.Time
	To             time.Time
}
