package actions

import (
	"fmt"

	"zibana-backend/internal/models"
)

// Registry maps each action type to its handler. Handlers are registered
// once at startup; the service never branches on action type strings itself.
type Registry struct {
	handlers map[models.ActionType]ActionHandler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[models.ActionType]ActionHandler)}
}

// Register binds a handler to an action type. Registering the same type
// twice is a wiring bug and fails loudly.
func (r *Registry) Register(t models.ActionType, h ActionHandler) error {
	if !t.Valid() {
		return fmt.Errorf("cannot register handler for unknown action type %q", t)
	}
	if _, exists := r.handlers[t]; exists {
		return fmt.Errorf("handler already registered for action type %s", t)
	}
	r.handlers[t] = h
	return nil
}

// Resolve returns the handler bound to an action type
func (r *Registry) Resolve(t models.ActionType) (ActionHandler, error) {
	h, ok := r.handlers[t]
	if !ok {
		return nil, fmt.Errorf("no handler registered for action type %s", t)
	}
	return h, nil
}

// NewDefaultRegistry wires every member of the closed action type set to its
// production handler.
func NewDefaultRegistry(sessions SessionStore, userState UserStateStore) (*Registry, error) {
	r := NewRegistry()

	bindings := map[models.ActionType]ActionHandler{
		models.ActionForceLogout:      ForceLogoutHandler(sessions),
		models.ActionResetSession:     ResetSessionHandler(sessions),
		models.ActionRestoreAutoLogin: RestoreAutoLoginHandler(sessions),

		models.ActionEnableDriverOnline:            EnableDriverOnlineHandler(userState),
		models.ActionDisableDriverOnline:           DisableDriverOnlineHandler(userState),
		models.ActionClearCancellationFlags:        ClearCancellationFlagsHandler(userState),
		models.ActionRestoreDriverAccess:           RestoreDriverAccessHandler(userState),
		models.ActionClearRiderCancellationWarning: ClearRiderCancellationWarningHandler(userState),
		models.ActionRestoreRideAccess:             RestoreRideAccessHandler(userState),
	}

	for t, h := range bindings {
		if err := r.Register(t, h); err != nil {
			return nil, err
		}
	}

	return r, nil
}
