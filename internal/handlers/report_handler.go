package handlers

import (
	"net/http"

	"zibana-backend/internal/services"
	"zibana-backend/pkg/utils"
)

type ReportHandler struct {
	Reports *services.ReportService
	Queries OverrideQueries
}

func NewReportHandler(reports *services.ReportService, queries OverrideQueries) *ReportHandler {
	return &ReportHandler{Reports: reports, Queries: queries}
}

// AuditLogReport renders the (optionally filtered) audit log as a PDF
func (h *ReportHandler) AuditLogReport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAuditFilter(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.Queries.ListAuditLog(r.Context(), filter)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list audit log")
		return
	}

	pdf, err := h.Reports.GenerateAuditPDF(entries, filter)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="override-audit-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
