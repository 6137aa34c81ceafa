package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/FoodStore/pkg/errors"
	"github.com/utafrali/FoodStore/pkg/logger"
	"github.com/utafrali/FoodStore/pkg/validator"
)

// Response is the JSON envelope every endpoint answers with. Clients read
// success first and treat the remaining fields as optional.
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Token     string `json:"token,omitempty"`
	CartData  any    `json:"cartData,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 response with Success forced to true.
func OK(w http.ResponseWriter, resp Response) {
	resp.Success = true
	WriteJSON(w, http.StatusOK, resp)
}

// WriteError maps err to a status and a {success:false, message} body. 5xx
// errors are logged with the request-scoped logger when one is mounted,
// otherwise with fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	} else {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			code = "NOT_FOUND"
		case errors.Is(err, apperrors.ErrAlreadyExists):
			code = "ALREADY_EXISTS"
		case errors.Is(err, apperrors.ErrInvalidInput):
			code = "INVALID_INPUT"
		}
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{
		Success:   false,
		Message:   apperrors.PublicMessage(err),
		Code:      code,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	})
}

// WriteValidationError writes a 400 for a failed decode or validation.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Message: valErr.Message(),
			Code:    "VALIDATION_ERROR",
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Message: "invalid request body",
		Code:    "INVALID_INPUT",
	})
}
