package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"citizenpress/internal/requestctx"
	"citizenpress/internal/service"
)

const CodePendingApproval = "PENDING_APPROVAL"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, ErrorResponse{Error: message}, statusCode)
}

// writeServiceError maps a service error to its status. Unexpected errors are logged and reported as 500
// without their text.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	message := service.PublicMessage(err)

	var status int
	var code string
	switch {
	case errors.Is(err, service.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidOrExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrPendingApproval):
		status, code = http.StatusForbidden, CodePendingApproval
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrStorage):
		status = http.StatusBadGateway
		h.Log.Error("storage failure", zap.String("request_id", requestctx.RequestID(r.Context())),
			zap.String("path", r.URL.Path), zap.Error(err))
	default:
		h.Log.Error("request failed", zap.String("request_id", requestctx.RequestID(r.Context())),
			zap.String("path", r.URL.Path), zap.Error(err))
		WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if message == "" {
		message = strings.ToLower(http.StatusText(status))
	}
	WriteJSON(w, ErrorResponse{Error: message, Code: code}, status)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage turns the first validator failure into a client message.
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "invalid request"
	}

	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "invalid email format"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain digits only", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// decodeAndValidate reads a JSON body into dst and runs struct validation. It writes the 400 itself.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decodeJSON(w, r, dst) {
		return false
	}

	if err := h.Validate.Struct(dst); err != nil {
		WriteError(w, validationMessage(err), http.StatusBadRequest)
		return false
	}

	return true
}

// maxJSONBody caps JSON request bodies; file uploads go through parseForm instead.
const maxJSONBody = 1 << 20

// decodeJSON reads a capped JSON body into dst. It writes the 400 or 413 itself.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, fmt.Sprintf("request body exceeds %s", humanize.IBytes(maxJSONBody)), http.StatusRequestEntityTooLarge)
		return false
	}

	WriteError(w, "invalid request body", http.StatusBadRequest)
	return false
}
