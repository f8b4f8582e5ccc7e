package httpd

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/RubachokBoss/academic-records/internal/importer"
)

const (
	uploadField = "file"

	headerImportSuccess = "X-Import-Success"
	headerTotalRows     = "X-Total-Rows"
	headerErrorCount    = "X-Error-Count"
	headerSkippedCount  = "X-Skipped-Count"
	headerJobID         = "X-Import-Job"

	multipartOverhead = 64 << 10
)

// readUpload pulls the multipart "file" field. maxUploadSize bounds the file
// itself; the body may exceed it by multipartOverhead for part headers.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeTooLarge(w)
			return "", nil, false
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return "", nil, false
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		h.writeTooLarge(w)
		return "", nil, false
	}

	if !importer.AllowedExtension(header.Filename) {
		writeError(w, http.StatusBadRequest, "Only Excel (.xlsx, .xls) and CSV files are allowed")
		return "", nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return "", nil, false
	}

	return header.Filename, data, true
}

func (h *Handler) ImportStudents(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	res, err := h.importService.ImportStudents(r.Context(), mustActor(r), filename, data)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set(headerJobID, res.JobID)
	if !res.Success() {
		setImportHeaders(w, res.Summary.TotalRows, res.Summary.ErrorCount)
		w.Header().Set(headerSkippedCount, strconv.Itoa(res.Summary.SkippedCount))
		writeFile(w, res.Report.ContentType, "student_import_errors"+res.Report.Extension, res.Report.Data)
		return
	}

	writeSuccess(w, "Students imported successfully", res.Summary)
}

func (h *Handler) ImportScores(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	res, err := h.importService.ImportScores(r.Context(), mustActor(r), filename, data)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set(headerJobID, res.JobID)
	if !res.Success() {
		setImportHeaders(w, res.Summary.TotalRows, res.Summary.ErrorCount)
		writeFile(w, res.Report.ContentType, "score_import_errors"+res.Report.Extension, res.Report.Data)
		return
	}

	writeSuccess(w, "Scores imported successfully", res.Summary)
}

func setImportHeaders(w http.ResponseWriter, total, errorCount int) {
	w.Header().Set(headerImportSuccess, "false")
	w.Header().Set(headerTotalRows, strconv.Itoa(total))
	w.Header().Set(headerErrorCount, strconv.Itoa(errorCount))
}

func (h *Handler) StudentTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := h.importService.StudentTemplate()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeFile(w, importer.ContentTypeXLSX, "student_upload_template.xlsx", data)
}

func (h *Handler) ScoreTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := h.importService.ScoreTemplate()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeFile(w, importer.ContentTypeXLSX, "score_upload_template.xlsx", data)
}

func (h *Handler) writeTooLarge(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "File too large",
		"maximum upload size is "+strconv.FormatInt(h.maxUploadSize>>20, 10)+"MB")
}
