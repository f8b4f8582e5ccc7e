package httpd

import (
	"net/http"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) AddScore(w http.ResponseWriter, r *http.Request) {
	var req models.AddScoreRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.resultService.AddScore(r.Context(), mustActor(r), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeCreated(w, "Score added successfully", resp)
}

func (h *Handler) EnterScores(w http.ResponseWriter, r *http.Request) {
	var req models.EnterScoresRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.resultService.EnterScores(r.Context(), mustActor(r), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Scores processed", resp)
}

func (h *Handler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateScoreRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	result, err := h.resultService.UpdateScore(r.Context(), mustActor(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Score updated successfully", result)
}

func (h *Handler) DeleteScore(w http.ResponseWriter, r *http.Request) {
	resp, err := h.resultService.DeleteScore(r.Context(), mustActor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Score deleted successfully", resp)
}

func (h *Handler) StudentResults(w http.ResponseWriter, r *http.Request) {
	filter, ok := resultFilter(w, r)
	if !ok {
		return
	}

	results, err := h.resultService.StudentResults(r.Context(), mustActor(r), chi.URLParam(r, "studentId"), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Results retrieved", results)
}

func (h *Handler) StudentResultsWithGPA(w http.ResponseWriter, r *http.Request) {
	details, err := h.resultService.StudentResultsWithGPA(r.Context(), mustActor(r), chi.URLParam(r, "studentId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Results retrieved", details)
}

func (h *Handler) DepartmentResults(w http.ResponseWriter, r *http.Request) {
	filter, ok := resultFilter(w, r)
	if !ok {
		return
	}

	results, err := h.resultService.DepartmentResults(r.Context(), mustActor(r), chi.URLParam(r, "departmentId"), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Results retrieved", results)
}

func (h *Handler) CarryOvers(w http.ResponseWriter, r *http.Request) {
	results, err := h.resultService.CarryOvers(r.Context(), mustActor(r), chi.URLParam(r, "studentId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Carry-over courses retrieved", results)
}

func resultFilter(w http.ResponseWriter, r *http.Request) (models.ResultFilter, bool) {
	q := r.URL.Query()
	level, ok := optionalLevel(q.Get("level"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid level", "level must be one of: "+levelNames())
		return models.ResultFilter{}, false
	}
	semester, ok := optionalSemester(q.Get("semester"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid semester", "semester must be FIRST or SECOND")
		return models.ResultFilter{}, false
	}

	return models.ResultFilter{
		Level:        level,
		Semester:     semester,
		AcademicYear: q.Get("academicYear"),
	}, true
}
