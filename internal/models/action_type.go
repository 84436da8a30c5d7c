package models

// ActionType identifies one kind of administrative correction. The set is
// closed: unknown values are rejected at the API boundary.
type ActionType string

const (
	ActionForceLogout                   ActionType = "FORCE_LOGOUT"
	ActionResetSession                  ActionType = "RESET_SESSION"
	ActionRestoreAutoLogin              ActionType = "RESTORE_AUTO_LOGIN"
	ActionEnableDriverOnline            ActionType = "ENABLE_DRIVER_ONLINE"
	ActionDisableDriverOnline           ActionType = "DISABLE_DRIVER_ONLINE"
	ActionClearCancellationFlags        ActionType = "CLEAR_CANCELLATION_FLAGS"
	ActionRestoreDriverAccess           ActionType = "RESTORE_DRIVER_ACCESS"
	ActionClearRiderCancellationWarning ActionType = "CLEAR_RIDER_CANCELLATION_WARNING"
	ActionRestoreRideAccess             ActionType = "RESTORE_RIDE_ACCESS"
)

// ActionTypeInfo describes one action type for UI consumption
type ActionTypeInfo struct {
	Value       ActionType `json:"value"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
}

var actionTypeInfos = []ActionTypeInfo{
	{ActionForceLogout, "Force Logout", "End all active sessions for this user"},
	{ActionResetSession, "Reset Session", "Reset a stuck or corrupted session"},
	{ActionRestoreAutoLogin, "Restore Auto-Login", "Restore auto-login eligibility"},
	{ActionEnableDriverOnline, "Enable Driver Online", "Temporarily enable driver online status"},
	{ActionDisableDriverOnline, "Disable Driver Online", "Temporarily disable driver online status"},
	{ActionClearCancellationFlags, "Clear Cancellation Flags", "Clear incorrect cancellation or acceptance flags"},
	{ActionRestoreDriverAccess, "Restore Driver Access", "Restore access after dispute resolution"},
	{ActionClearRiderCancellationWarning, "Clear Rider Cancel Warning", "Remove false cancellation warnings"},
	{ActionRestoreRideAccess, "Restore Ride Access", "Restore ride access after dispute review"},
}

// AllActionTypes returns the full closed set, in display order
func AllActionTypes() []ActionTypeInfo {
	out := make([]ActionTypeInfo, len(actionTypeInfos))
	copy(out, actionTypeInfos)
	return out
}

// Valid reports whether a is a member of the closed action type set
func (a ActionType) Valid() bool {
	for _, info := range actionTypeInfos {
		if info.Value == a {
			return true
		}
	}
	return false
}

// Label returns the human-readable name for the action type
func (a ActionType) Label() string {
	for _, info := range actionTypeInfos {
		if info.Value == a {
			return info.Label
		}
	}
	return string(a)
}
