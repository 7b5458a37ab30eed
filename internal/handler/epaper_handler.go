package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"citizenpress/internal/utils"
)

func (h *Handlers) GetEPapers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := h.EPaperService.ListActive(r.Context(), utils.ParsePage(q.Get("page"), q.Get("limit"), 0))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, page, http.StatusOK)
}

func (h *Handlers) GetEPaperByDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		WriteError(w, "date query parameter is required", http.StatusBadRequest)
		return
	}

	epaper, err := h.EPaperService.GetByDate(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, epaper, http.StatusOK)
}

func (h *Handlers) GetLatestEPaper(w http.ResponseWriter, r *http.Request) {
	epaper, err := h.EPaperService.Latest(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, epaper, http.StatusOK)
}

func (h *Handlers) GetEPaper(w http.ResponseWriter, r *http.Request) {
	epaper, err := h.EPaperService.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, epaper, http.StatusOK)
}

func (h *Handlers) CreateEPaper(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	upload, done, ok := h.formFile(w, r, FieldEPaperPDF)
	if !ok {
		return
	}
	defer done()

	epaper, err := h.EPaperService.Publish(r.Context(), r.FormValue("date"), upload)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, epaper, http.StatusCreated)
}

func (h *Handlers) UpdateEPaper(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	upload, done, ok := h.formFile(w, r, FieldEPaperPDF)
	if !ok {
		return
	}
	defer done()

	date := formString(r, "date")
	if date != nil && *date == "" {
		date = nil
	}

	epaper, err := h.EPaperService.Replace(r.Context(), mux.Vars(r)["id"], date, upload)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, epaper, http.StatusOK)
}

// DeleteEPaper hides the issue, or removes it with its files when permanent=true.
func (h *Handlers) DeleteEPaper(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	permanent, _ := strconv.ParseBool(r.URL.Query().Get("permanent"))
	if permanent {
		if err := h.EPaperService.HardDelete(r.Context(), id); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, MessageResponse{Message: "e-paper permanently deleted"}, http.StatusOK)
		return
	}

	if err := h.EPaperService.SoftDelete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, MessageResponse{Message: "e-paper deleted"}, http.StatusOK)
}

func (h *Handlers) RestoreEPaper(w http.ResponseWriter, r *http.Request) {
	epaper, err := h.EPaperService.Restore(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, epaper, http.StatusOK)
}
