package handlers

import (
	"net/http"

	"citizenpress/internal/requestctx"
	"citizenpress/internal/service"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"required,len=10,numeric"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type VerifyCodeResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, result, http.StatusCreated)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, result, http.StatusOK)
}

func (h *Handlers) RequestResetCode(w http.ResponseWriter, r *http.Request) {
	var req ResetCodeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.AuthService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, MessageResponse{Message: "a reset code has been sent to your email"}, http.StatusOK)
}

func (h *Handlers) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.AuthService.VerifyResetCode(r.Context(), req.Email, req.OTP)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, VerifyCodeResponse{Message: "code verified", ResetToken: token}, http.StatusOK)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.AuthService.CompletePasswordReset(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, MessageResponse{Message: "password has been reset"}, http.StatusOK)
}

func (h *Handlers) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := requestctx.User(r.Context())
	if !ok {
		WriteError(w, "authorization required", http.StatusUnauthorized)
		return
	}

	var req UpdatePasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.AuthService.ChangePassword(r.Context(), user.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, MessageResponse{Message: "password updated"}, http.StatusOK)
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := requestctx.User(r.Context())
	if !ok {
		WriteError(w, "authorization required", http.StatusUnauthorized)
		return
	}

	me, err := h.AuthService.Me(r.Context(), user.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, me, http.StatusOK)
}
