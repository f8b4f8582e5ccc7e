package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListPublicDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.departmentService.ListPublic(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Departments retrieved", departments)
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.departmentService.List(r.Context(), mustActor(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Departments retrieved", departments)
}

func (h *Handler) MyDepartment(w http.ResponseWriter, r *http.Request) {
	department, err := h.departmentService.MyDepartment(r.Context(), mustActor(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Department retrieved", department)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	department, err := h.departmentService.Get(r.Context(), mustActor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Department retrieved", department)
}

func (h *Handler) ListFaculties(w http.ResponseWriter, r *http.Request) {
	faculties, err := h.departmentService.ListFaculties(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Faculties retrieved", faculties)
}

func (h *Handler) MyFaculty(w http.ResponseWriter, r *http.Request) {
	faculty, err := h.departmentService.MyFaculty(r.Context(), mustActor(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Faculty retrieved", faculty)
}

func (h *Handler) GetFaculty(w http.ResponseWriter, r *http.Request) {
	faculty, err := h.departmentService.GetFaculty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Faculty retrieved", faculty)
}
