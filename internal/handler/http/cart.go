package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/internal/service"
	apperrors "github.com/utafrali/FoodStore/pkg/errors"
	"github.com/utafrali/FoodStore/pkg/httputil"
	"github.com/utafrali/FoodStore/pkg/middleware"
	"github.com/utafrali/FoodStore/pkg/validator"
)

// CartHandler handles HTTP requests for the cart endpoints. Every route
// sits behind the auth middleware.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

type cartItemRequest struct {
	ItemID string `json:"itemId" validate:"notblank"`
}

// Get handles GET /api/cart/get.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.OK(w, httputil.Response{CartData: items})
}

// Add handles POST /api/cart/add.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	key, ok := h.decodeKey(w, r)
	if !ok {
		return
	}

	items, err := h.service.Add(r.Context(), middleware.UserIDFromContext(r.Context()), key)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.OK(w, httputil.Response{Message: service.MsgAddedToCart, CartData: items})
}

// Remove handles POST /api/cart/remove.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	key, ok := h.decodeKey(w, r)
	if !ok {
		return
	}

	items, err := h.service.Remove(r.Context(), middleware.UserIDFromContext(r.Context()), key)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.OK(w, httputil.Response{Message: service.MsgRemovedFromCart, CartData: items})
}

func (h *CartHandler) decodeKey(w http.ResponseWriter, r *http.Request) (domain.CartKey, bool) {
	var req cartItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return domain.CartKey{}, false
	}
	key, err := domain.ParseCartKey(req.ItemID)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("itemId must be \"productId|size\""), h.logger)
		return domain.CartKey{}, false
	}
	return key, true
}
