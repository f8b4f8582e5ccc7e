package httpd

import (
	"net/http"
	"strings"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CalculateGPA(w http.ResponseWriter, r *http.Request) {
	var req models.CalculateGPARequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	outcome, err := h.gpaService.CalculateSemester(r.Context(), mustActor(r), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "GPA calculated successfully", outcome)
}

func (h *Handler) CalculateDepartmentGPA(w http.ResponseWriter, r *http.Request) {
	var req models.CalculateDepartmentGPARequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.gpaService.RecalculateDepartment(r.Context(), mustActor(r), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Department GPAs calculated", resp)
}

func (h *Handler) SemesterGPA(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := models.SemesterKey{
		StudentID:    chi.URLParam(r, "studentId"),
		Level:        models.Level(strings.ToUpper(q.Get("level"))),
		Semester:     models.Semester(strings.ToUpper(q.Get("semester"))),
		AcademicYear: q.Get("academicYear"),
	}
	if !key.Level.Valid() || !key.Semester.Valid() || key.AcademicYear == "" {
		writeError(w, http.StatusBadRequest, "Level, semester, and academic year are required")
		return
	}

	view, err := h.gpaService.SemesterGPA(r.Context(), mustActor(r), key)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "GPA retrieved", view)
}

func (h *Handler) GPAHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.gpaService.History(r.Context(), mustActor(r), chi.URLParam(r, "studentId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "GPA history retrieved", history)
}

func (h *Handler) DepartmentGPAStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	level, ok := optionalLevel(q.Get("level"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid level", "level must be one of: "+levelNames())
		return
	}
	semester, ok := optionalSemester(q.Get("semester"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid semester", "semester must be FIRST or SECOND")
		return
	}

	stats, err := h.gpaService.DepartmentStats(r.Context(), mustActor(r), chi.URLParam(r, "departmentId"), models.GPAFilter{
		Level:        level,
		Semester:     semester,
		AcademicYear: q.Get("academicYear"),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Department GPA statistics retrieved", stats)
}
