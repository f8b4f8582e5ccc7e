package httpd

import (
	"net/http"
	"strings"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStudentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	student, err := h.studentService.Create(r.Context(), mustActor(r), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeCreated(w, "Student created successfully", student)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	level, ok := optionalLevel(q.Get("level"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid level", "level must be one of: "+levelNames())
		return
	}

	filter := models.StudentFilter{
		DepartmentID: q.Get("departmentId"),
		Level:        level,
		Search:       strings.TrimSpace(q.Get("search")),
	}
	resp, err := h.studentService.List(r.Context(), mustActor(r), filter,
		getIntQueryParam(r, "page", 1), getIntQueryParam(r, "limit", 20))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Students retrieved", resp)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.studentService.Get(r.Context(), mustActor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Student retrieved", student)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateStudentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	student, err := h.studentService.Update(r.Context(), mustActor(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Student updated successfully", student)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.studentService.Delete(r.Context(), mustActor(r), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Student deleted successfully", nil)
}

func (h *Handler) ListStudentsByDepartmentLevel(w http.ResponseWriter, r *http.Request) {
	level, ok := requiredLevel(w, chi.URLParam(r, "level"))
	if !ok {
		return
	}

	students, err := h.studentService.ListByDepartmentLevel(r.Context(), mustActor(r), chi.URLParam(r, "departmentId"), level)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Students retrieved", students)
}

func optionalLevel(raw string) (models.Level, bool) {
	if raw == "" {
		return "", true
	}
	level := models.Level(strings.ToUpper(raw))
	return level, level.Valid()
}

func optionalSemester(raw string) (models.Semester, bool) {
	if raw == "" {
		return "", true
	}
	semester := models.Semester(strings.ToUpper(raw))
	return semester, semester.Valid()
}

func requiredLevel(w http.ResponseWriter, raw string) (models.Level, bool) {
	level := models.Level(strings.ToUpper(raw))
	if !level.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid level", "level must be one of: "+levelNames())
		return "", false
	}
	return level, true
}

func requiredSemester(w http.ResponseWriter, raw string) (models.Semester, bool) {
	semester := models.Semester(strings.ToUpper(raw))
	if !semester.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid semester", "semester must be FIRST or SECOND")
		return "", false
	}
	return semester, true
}
