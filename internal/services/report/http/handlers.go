// Package http exposes the report job-control API: trigger a report, poll
// its status, and download the finished CSV.
package http

import (
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"storewatch/internal/modkit/httpkit"
	perr "storewatch/internal/platform/errors"
	"storewatch/internal/services/report/domain"
)

// Deps are the handler dependencies.
type Deps struct {
	Runner domain.RunnerPort
}

type handlers struct {
	deps Deps
}

// Register mounts the report routes.
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Post(r, "/trigger_report", h.trigger)
	httpkit.GetJSON[GetReportRequest](r, "/get_report", h.getReport)
	r.Get("/reports/{report_id}/download", h.download)
}

// TriggerReportResponse is returned by POST /trigger_report.
// swagger:model
type TriggerReportResponse struct {
	ReportID string `json:"report_id" example:"5b0e7e3a-3b1e-4f0a-9c2a-1f7b6c9d4e21"`
}

// GetReportRequest is the validated payload for GET /get_report.
type GetReportRequest struct {
	ReportID string `json:"report_id" validate:"required" example:"5b0e7e3a-3b1e-4f0a-9c2a-1f7b6c9d4e21"`
}

// GetReportResponse is returned by GET /get_report.
type GetReportResponse struct {
	Status          string `json:"status" example:"Running"` // NotFound, Running, Complete, Failed
	PercentComplete int    `json:"percent_complete,omitempty" example:"42"`
	CSVPath         string `json:"csv_path,omitempty" example:"./data/reports/5b0e7e3a.csv"`
}

// swagger:route POST /trigger_report Report triggerReport
// @Summary Start a new uptime/downtime report
// @Tags Report
// @Produce json
// @Success 200 type TriggerReportResponse ok
// @Router /trigger_report [post]
func (h *handlers) trigger(r *http.Request) (any, error) {
	reportID, err := h.deps.Runner.Trigger(r.Context())
	if err != nil {
		return nil, perr.Internalf("trigger report: %v", err)
	}
	return TriggerReportResponse{ReportID: reportID}, nil
}

// swagger:route GET /get_report Report getReport
// @Summary Poll a report's status
// @Tags Report
// @Accept json
// @Produce json
// @Param payload body GetReportRequest true "report id"
// @Success 200 type GetReportResponse ok
// @Router /get_report [get]
func (h *handlers) getReport(r *http.Request, in GetReportRequest) (any, error) {
	job, err := h.deps.Runner.Get(r.Context(), in.ReportID)
	if err != nil {
		return nil, perr.Internalf("get report: %v", err)
	}

	return GetReportResponse{
		Status:          string(job.Status),
		PercentComplete: job.PercentComplete,
		CSVPath:         job.CSVPath,
	}, nil
}

// swagger:route GET /reports/{report_id}/download Report downloadReport
// @Summary Download a completed report's CSV
// @Tags Report
// @Produce text/csv
// @Param report_id path string true "report id"
// @Success 200 {file} file "csv"
// @Router /reports/{report_id}/download [get]
func (h *handlers) download(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "report_id")

	job, err := h.deps.Runner.Get(r.Context(), reportID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	switch job.Status {
	case domain.JobNotFound:
		http.Error(w, "report not found", http.StatusNotFound)
		return
	case domain.JobRunning:
		http.Error(w, "report still running", http.StatusConflict)
		return
	case domain.JobFailed:
		http.Error(w, "report failed", http.StatusUnprocessableEntity)
		return
	}

	f, err := os.Open(job.CSVPath)
	if err != nil {
		http.Error(w, "report file unavailable", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+reportID+`.csv"`)
	_, _ = io.Copy(w, f)
}
