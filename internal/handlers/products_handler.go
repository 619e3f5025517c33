package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"catalog-service/internal/events"
	"catalog-service/internal/models"
	"catalog-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProductsHandler exposes the authenticated single-record CRUD endpoints.
type ProductsHandler struct {
	service   *services.ProductService
	publisher *events.Publisher
	logger    *logrus.Logger
}

func NewProductsHandler(service *services.ProductService, publisher *events.Publisher, logger *logrus.Logger) *ProductsHandler {
	return &ProductsHandler{
		service:   service,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateProduct creates a single product (Admin only). The authenticated
// user's email is recorded as the sourceEmail.
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param product body models.UpsertProductRequest true "Product data"
// @Success 201 {object} models.Product
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products [post]
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.UpsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_BODY", err.Error(), "")
		return
	}

	userEmail := c.GetString("user_email")

	product, err := h.service.CreateProduct(req, userEmail)
	if err != nil {
		h.handleWriteError(c, err)
		return
	}

	if h.publisher != nil {
		h.publisher.PublishProductCreated(c.Request.Context(), product)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Product created successfully",
		"data":    product,
	})
}

// GetProducts lists products, newest first.
// @Summary List products
// @Tags products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.ProductListResponse
// @Security BearerAuth
// @Router /products [get]
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.service.ListProducts(page, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetProduct fetches one product by id.
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Product
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found", "")
		return
	}

	product, err := h.service.GetProduct(id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found", "")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch product")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// UpdateProduct updates one product (Admin only).
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body models.UpsertProductRequest true "Product data"
// @Success 200 {object} models.Product
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found", "")
		return
	}

	var req models.UpsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_BODY", err.Error(), "")
		return
	}

	product, err := h.service.UpdateProduct(id, req)
	if err != nil {
		h.handleWriteError(c, err)
		return
	}

	if h.publisher != nil {
		h.publisher.PublishProductUpdated(c.Request.Context(), product)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product updated successfully",
		"data":    product,
	})
}

// DeleteProduct removes one product (Admin or Staff).
// @Summary Delete a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found", "")
		return
	}

	if err := h.service.DeleteProduct(id); err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found", "")
			return
		}
		h.logger.WithError(err).Error("Failed to delete product")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", "")
		return
	}

	if h.publisher != nil {
		h.publisher.PublishProductDeleted(c.Request.Context(), id)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted successfully",
	})
}

func (h *ProductsHandler) handleWriteError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Message, verr.Field)
	case errors.Is(err, models.ErrProductExists):
		respondError(c, http.StatusConflict, "PRODUCT_EXISTS", "Product with this code or name already exists", "")
	case errors.Is(err, models.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found", "")
	default:
		h.logger.WithError(err).Error("Product write failed")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", "")
	}
}
