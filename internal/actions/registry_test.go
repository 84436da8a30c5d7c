package actions

import (
	"context"
	"testing"

	"zibana-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopHandler struct{}

func (noopHandler) Capture(ctx context.Context, targetUserID string) (string, error) {
	return "{}", nil
}
func (noopHandler) Apply(ctx context.Context, targetUserID string) (string, error) {
	return "{}", nil
}
func (noopHandler) Restore(ctx context.Context, targetUserID, previousState string) (string, error) {
	return "{}", nil
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(models.ActionForceLogout, noopHandler{}))

	h, err := r.Resolve(models.ActionForceLogout)
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(models.ActionForceLogout, noopHandler{}))
	err := r.Register(models.ActionForceLogout, noopHandler{})
	assert.Error(t, err)
}

func TestRegistryRejectsUnknownActionType(t *testing.T) {
	r := NewRegistry()

	err := r.Register(models.ActionType("NOT_A_THING"), noopHandler{})
	assert.Error(t, err)

	_, err = r.Resolve(models.ActionType("NOT_A_THING"))
	assert.Error(t, err)
}

func TestDefaultRegistryCoversClosedSet(t *testing.T) {
	r, err := NewDefaultRegistry(newFakeSessionStore(), newFakeUserStateStore())
	require.NoError(t, err)

	for _, info := range models.AllActionTypes() {
		h, err := r.Resolve(info.Value)
		require.NoError(t, err, "no handler for %s", info.Value)
		assert.NotNil(t, h)
	}
}
