package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dustin/go-humanize"

	"citizenpress/internal/storage"
)

const (
	FieldPostMedia = "image"
	FieldEPaperPDF = "pdfFile"

	// multipartMemory is kept in memory before parts spill to temp files.
	multipartMemory = 8 << 20
	// formOverhead allows for the non-file fields of a multipart body.
	formOverhead = 1 << 20
)

// parseForm reads a multipart or url-encoded body, capping it at the upload limit.
// It writes the error response itself and reports false on failure.
func (h *Handlers) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+formOverhead)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, fmt.Sprintf("request body exceeds the %s upload limit",
			humanize.IBytes(uint64(h.Cfg.MaxUploadSize))), http.StatusRequestEntityTooLarge)
		return false
	}

	WriteError(w, "invalid form data", http.StatusBadRequest)
	return false
}

// formFile returns the detected upload for field, or nil when the field is absent.
// The caller must call the returned close func once the upload is consumed.
func (h *Handlers) formFile(w http.ResponseWriter, r *http.Request, field string) (*storage.Upload, func(), bool) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, true
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, true
	}
	if err != nil {
		WriteError(w, "invalid file upload", http.StatusBadRequest)
		return nil, noop, false
	}

	upload, err := storage.DetectUpload(header.Filename, file, header.Size, h.Cfg.MaxUploadSize)
	if err != nil {
		file.Close()
		writeUploadError(w, err)
		return nil, noop, false
	}

	return upload, closer(file), true
}

func closer(f multipart.File) func() {
	return func() { f.Close() }
}

func writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		WriteError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, storage.ErrUnsupportedType):
		WriteError(w, "unsupported file type; allowed: jpg, jpeg, png, gif, mp4, mov, avi, webm, pdf", http.StatusBadRequest)
	case errors.Is(err, storage.ErrEmptyFile):
		WriteError(w, err.Error(), http.StatusBadRequest)
	default:
		WriteError(w, "could not read uploaded file", http.StatusBadRequest)
	}
}
