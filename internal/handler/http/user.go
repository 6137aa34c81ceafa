package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/utafrali/FoodStore/internal/service"
	"github.com/utafrali/FoodStore/pkg/httputil"
)

const maxAuthBody = 64 << 10

// UserHandler handles the login and register endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  logger,
	}
}

// Login handles POST /api/user/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	token, err := h.service.Login(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.OK(w, httputil.Response{Token: token})
}

// Register handles POST /api/user/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	token, err := h.service.Register(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.OK(w, httputil.Response{Token: token})
}

// decodeJSON reads a small JSON body. Field validation is left to the
// service so its messages reach the client.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAuthBody)).Decode(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}
