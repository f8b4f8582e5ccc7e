package httpd

import (
	"net/http"
	"strings"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	course, err := h.courseService.Create(r.Context(), mustActor(r), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeCreated(w, "Course created successfully", course)
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
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

	courses, err := h.courseService.List(r.Context(), mustActor(r), models.CourseFilter{
		DepartmentID: q.Get("departmentId"),
		Level:        level,
		Semester:     semester,
		Search:       strings.TrimSpace(q.Get("search")),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Courses retrieved", courses)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseService.Get(r.Context(), mustActor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Course retrieved", course)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCourseRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	course, err := h.courseService.Update(r.Context(), mustActor(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Course updated successfully", course)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.courseService.Delete(r.Context(), mustActor(r), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Course deleted successfully", nil)
}

func (h *Handler) ListCoursesByDepartmentLevelSemester(w http.ResponseWriter, r *http.Request) {
	level, ok := requiredLevel(w, chi.URLParam(r, "level"))
	if !ok {
		return
	}
	semester, ok := requiredSemester(w, chi.URLParam(r, "semester"))
	if !ok {
		return
	}

	courses, err := h.courseService.ListByDepartmentLevelSemester(r.Context(), mustActor(r), chi.URLParam(r, "departmentId"), level, semester)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Courses retrieved", courses)
}
