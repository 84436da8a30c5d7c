package services

import (
	"testing"
	"time"

	"zibana-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAuditPDF(t *testing.T) {
	overrideID := "ov-1"
	entries := []*models.AuditLogEntry{
		{
			OverrideID:     &overrideID,
			AdminActorID:   "admin-7",
			AffectedUserID: "user-42",
			ActionType:     models.ActionForceLogout,
			OverrideReason: "Account takeover report with a reason long enough to be truncated in the table",
			CreatedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	pdf, err := NewReportService().GenerateAuditPDF(entries, models.AuditLogFilter{AdminActorID: "admin-7"})
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestGenerateAuditPDFEmpty(t *testing.T) {
	pdf, err := NewReportService().GenerateAuditPDF(nil, models.AuditLogFilter{})
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}
