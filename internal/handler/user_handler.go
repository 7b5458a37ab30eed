package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"citizenpress/internal/models"
	"citizenpress/internal/service"
	"citizenpress/internal/utils"
)

type CreateReporterRequest struct {
	Name       string      `json:"name" validate:"required"`
	Email      string      `json:"email" validate:"required,email"`
	Mobile     string      `json:"mobile" validate:"required,len=10,numeric"`
	Password   string      `json:"password" validate:"required,min=6"`
	Role       models.Role `json:"role" validate:"omitempty,oneof=user reporter admin"`
	IsVerified bool        `json:"isVerified"`
}

type UpdateReporterRequest struct {
	Name       *string      `json:"name" validate:"omitempty,min=1"`
	Email      *string      `json:"email" validate:"omitempty,email"`
	Mobile     *string      `json:"mobile" validate:"omitempty,len=10,numeric"`
	Role       *models.Role `json:"role" validate:"omitempty,oneof=user reporter admin"`
	IsVerified *bool        `json:"isVerified"`
}

func (h *Handlers) GetReporters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := service.UserQuery{
		Search: q.Get("search"),
		Role:   models.Role(q.Get("role")),
		Page:   utils.ParsePage(q.Get("page"), q.Get("limit"), 0),
	}
	if raw := q.Get("isVerified"); raw != "" {
		verified, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, "isVerified must be true or false", http.StatusBadRequest)
			return
		}
		query.IsVerified = &verified
	}

	page, err := h.UserService.List(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, page, http.StatusOK)
}

func (h *Handlers) CreateReporter(w http.ResponseWriter, r *http.Request) {
	var req CreateReporterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.UserService.Create(r.Context(), service.CreateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Mobile:     req.Mobile,
		Password:   req.Password,
		Role:       req.Role,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, user, http.StatusCreated)
}

func (h *Handlers) GetReporter(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, user, http.StatusOK)
}

func (h *Handlers) UpdateReporter(w http.ResponseWriter, r *http.Request) {
	var req UpdateReporterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.UserService.Update(r.Context(), mux.Vars(r)["id"], service.UserPatch{
		Name:       req.Name,
		Email:      req.Email,
		Mobile:     req.Mobile,
		Role:       req.Role,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, user, http.StatusOK)
}

func (h *Handlers) DeleteReporter(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, MessageResponse{Message: "user deleted"}, http.StatusOK)
}
