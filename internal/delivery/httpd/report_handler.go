package httpd

import (
	"net/http"
	"strings"

	"github.com/RubachokBoss/academic-records/internal/importer"
	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/service"
	"github.com/go-chi/chi/v5"
)

func reportScope(r *http.Request) service.ReportScope {
	q := r.URL.Query()
	return service.ReportScope{
		Level:        models.Level(strings.ToUpper(q.Get("level"))),
		Semester:     models.Semester(strings.ToUpper(q.Get("semester"))),
		AcademicYear: q.Get("academicYear"),
	}
}

func (h *Handler) DepartmentReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.DepartmentReport(r.Context(), mustActor(r), chi.URLParam(r, "departmentId"), reportScope(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Department report generated", report)
}

func (h *Handler) ExportDepartmentReport(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.reportService.ExportDepartmentReport(r.Context(), mustActor(r), chi.URLParam(r, "departmentId"), reportScope(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeFile(w, importer.ContentTypeXLSX, filename, data)
}

func (h *Handler) FacultyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reportService.FacultyStats(r.Context(), mustActor(r), r.URL.Query().Get("academicYear"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Faculty statistics retrieved", stats)
}

func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.reportService.Transcript(r.Context(), mustActor(r), chi.URLParam(r, "studentId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Transcript generated", transcript)
}
