package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/internal/service"
	apperrors "github.com/utafrali/FoodStore/pkg/errors"
	"github.com/utafrali/FoodStore/pkg/httputil"
	"github.com/utafrali/FoodStore/pkg/validator"
)

// multipartMemory is the part of a multipart form kept in memory.
const multipartMemory = 1 << 20

// FoodHandler handles HTTP requests for the catalog endpoints.
type FoodHandler struct {
	service        *service.FoodService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewFoodHandler creates a new food HTTP handler.
func NewFoodHandler(svc *service.FoodService, maxUploadBytes int64, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{
		service:        svc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// --- Request DTOs ---

type removeFoodRequest struct {
	ID string `json:"id" validate:"notblank"`
}

type updateStockRequest struct {
	ID      string `json:"id" validate:"notblank"`
	InStock *bool  `json:"inStock" validate:"required"`
}

// --- Handlers ---

// List handles GET /api/food/list.
func (h *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	foods, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.OK(w, httputil.Response{Data: foods})
}

// Add handles POST /api/food/add (multipart/form-data).
func (h *FoodHandler) Add(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, r, apperrors.InvalidInput("image is too large"), h.logger)
			return
		}
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid multipart form"), h.logger)
		return
	}
	defer r.MultipartForm.RemoveAll()

	input := &service.AddFoodInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}
	if raw := r.FormValue("packingSizes"); raw != "" {
		var sizes []domain.PackingSize
		if err := json.Unmarshal([]byte(raw), &sizes); err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("packingSizes must be a JSON array"), h.logger)
			return
		}
		input.PackingSizes = sizes
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		input.ImageName = header.Filename
		input.ContentType = header.Header.Get("Content-Type")
		input.ImageSize = header.Size
		input.Image = file
	}

	if _, err := h.service.Add(r.Context(), input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.OK(w, httputil.Response{Message: service.MsgFoodAdded})
}

// Remove handles POST /api/food/remove.
func (h *FoodHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req removeFoodRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.Remove(r.Context(), req.ID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.OK(w, httputil.Response{Message: service.MsgFoodRemoved})
}

// UpdateStock handles POST /api/food/update-stock.
func (h *FoodHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req updateStockRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.UpdateStock(r.Context(), req.ID, *req.InStock); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.OK(w, httputil.Response{Message: service.MsgStockUpdated})
}
