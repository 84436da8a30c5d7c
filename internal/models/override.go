package models

import "time"

// OverrideStatus is the lifecycle state of an override. An override starts
// active and ends in exactly one of the two terminal states.
type OverrideStatus string

const (
	StatusActive   OverrideStatus = "active"
	StatusExpired  OverrideStatus = "expired"
	StatusReverted OverrideStatus = "reverted"
)

// Terminal reports whether no further transition may leave this status
func (s OverrideStatus) Terminal() bool {
	return s == StatusExpired || s == StatusReverted
}

// Override is one temporary, reversible correction applied to one target user
// for one action type. At most one active override may exist per
// (target_user_id, action_type) pair; the store enforces this with a partial
// unique index so the invariant holds across service instances.
type Override struct {
	ID                string         `json:"id" db:"id"`
	TargetUserID      string         `json:"targetUserId" db:"target_user_id"`
	AdminActorID      string         `json:"adminActorId" db:"admin_actor_id"`
	ActionType        ActionType     `json:"actionType" db:"action_type"`
	OverrideReason    string         `json:"overrideReason" db:"override_reason"`
	Status            OverrideStatus `json:"status" db:"status"`
	OverrideExpiresAt *time.Time     `json:"overrideExpiresAt" db:"override_expires_at"`
	PreviousState     *string        `json:"previousState" db:"previous_state"`
	NewState          *string        `json:"newState" db:"new_state"`
	RevertedAt        *time.Time     `json:"revertedAt" db:"reverted_at"`
	RevertedBy        *string        `json:"revertedBy" db:"reverted_by"`
	RevertReason      *string        `json:"revertReason" db:"revert_reason"`
	CreatedAt         time.Time      `json:"createdAt" db:"created_at"`
}

// ApplyOverrideRequest is the request body for applying an override
type ApplyOverrideRequest struct {
	TargetUserID      string     `json:"targetUserId"`
	ActionType        ActionType `json:"actionType"`
	OverrideReason    string     `json:"overrideReason"`
	OverrideExpiresAt *time.Time `json:"overrideExpiresAt,omitempty"`
}

// RevertOverrideRequest is the request body for reverting an override
type RevertOverrideRequest struct {
	Reason string `json:"reason"`
}
