package services

import (
	"bytes"
	"fmt"
	"time"

	"zibana-backend/internal/models"

	"github.com/jung-kurt/gofpdf/v2"
)

// ReportService renders the audit trail as a tabular PDF for compliance
// review and record-keeping.
type ReportService struct{}

func NewReportService() *ReportService {
	return &ReportService{}
}

// GenerateAuditPDF renders the given audit entries (already filtered and
// ordered by the caller) into a landscape PDF.
func (s *ReportService) GenerateAuditPDF(entries []*models.AuditLogEntry, filter models.AuditLogFilter) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "") // Landscape for more columns
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, "Zibana Admin - Override Audit Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format("02-Jan-2006 15:04 UTC")), "", 1, "C", false, 0, "")

	if desc := filterDescription(filter); desc != "" {
		pdf.CellFormat(277, 6, desc, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	// Table header
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(35, 7, "Time (UTC)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Actor", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Affected User", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 7, "Action", "1", 0, "C", true, 0, "")
	pdf.CellFormat(77, 7, "Reason", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Override ID", "1", 1, "C", true, 0, "")

	// Table rows
	pdf.SetFont("Arial", "", 8)
	for _, e := range entries {
		overrideID := ""
		if e.OverrideID != nil {
			overrideID = truncate(*e.OverrideID, 20)
		}
		pdf.CellFormat(35, 6, e.CreatedAt.Format("02-Jan 15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, truncate(e.AdminActorID, 18), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, truncate(e.AffectedUserID, 18), "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 6, e.ActionType.Label(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(77, 6, truncate(e.OverrideReason, 48), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, overrideID, "1", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(277, 6, fmt.Sprintf("%d entries", len(entries)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func filterDescription(f models.AuditLogFilter) string {
	desc := ""
	if f.AdminActorID != "" {
		desc += fmt.Sprintf("Actor: %s  ", f.AdminActorID)
	}
	if f.AffectedUserID != "" {
		desc += fmt.Sprintf("User: %s  ", f.AffectedUserID)
	}
	if !f.From.IsZero() {
		desc += fmt.Sprintf("From: %s  ", f.From.Format("02-Jan-2006"))
	}
	if !f.To.IsZero() {
		desc += fmt.Sprintf("To: %s", f.To.Format("02-Jan-2006"))
	}
	return desc
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
