package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-service/internal/models"
	"catalog-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductsRouter(products *mockProductsRepo, userEmail string) *gin.Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := services.NewProductService(products, new(mockUsersRepo), logger)
	handler := NewProductsHandler(svc, nil, logger)

	router := gin.New()
	group := router.Group("/api/products")
	group.Use(func(c *gin.Context) {
		c.Set("user_email", userEmail)
	})
	{
		group.GET("", handler.GetProducts)
		group.GET("/:id", handler.GetProduct)
		group.POST("", handler.CreateProduct)
		group.PUT("/:id", handler.UpdateProduct)
		group.DELETE("/:id", handler.DeleteProduct)
	}
	return router
}

func TestCreateProductEndpoint(t *testing.T) {
	products := new(mockProductsRepo)
	products.On("ExistsByCodeOrName", "WID-1", "widget", (*uuid.UUID)(nil)).Return(false, nil)
	products.On("Insert", mock.MatchedBy(func(p *models.Product) bool {
		return p.SourceEmail == "admin@example.com" && p.ProductCode == "WID-1"
	})).Return(nil)

	router := newProductsRouter(products, "admin@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"name":"Widget","productCode":"wid-1","price":9.99}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	products.AssertExpectations(t)
}

func TestCreateProductEndpointConflict(t *testing.T) {
	products := new(mockProductsRepo)
	products.On("ExistsByCodeOrName", "WID-1", "widget", (*uuid.UUID)(nil)).Return(true, nil)

	router := newProductsRouter(products, "admin@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"name":"Widget","productCode":"WID-1","price":9.99}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "PRODUCT_EXISTS", errObj["code"])
}

func TestCreateProductEndpointValidation(t *testing.T) {
	products := new(mockProductsRepo)
	router := newProductsRouter(products, "admin@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"name":"Widget","productCode":"WID-1","price":-1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Equal(t, "price", errObj["field"])
}

func TestGetProductsEndpoint(t *testing.T) {
	products := new(mockProductsRepo)
	products.On("List", 2, 5).Return(make([]models.Product, 5), int64(12), nil)

	router := newProductsRouter(products, "admin@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/products?page=2&limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["totalPages"])
	assert.Equal(t, float64(2), data["currentPage"])
	assert.Equal(t, float64(12), data["total"])
}

func TestGetProductEndpointNotFound(t *testing.T) {
	products := new(mockProductsRepo)
	id := uuid.New()
	products.On("GetByID", id).Return(nil, models.ErrProductNotFound)

	router := newProductsRouter(products, "admin@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+id.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProductEndpointMalformedID(t *testing.T) {
	products := new(mockProductsRepo)
	router := newProductsRouter(products, "admin@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	products.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestUpdateProductEndpoint(t *testing.T) {
	products := new(mockProductsRepo)
	id := uuid.New()
	products.On("ExistsByCodeOrName", "WID-1", "widget", &id).Return(false, nil)
	products.On("Update", mock.Anything).Return(nil)

	router := newProductsRouter(products, "admin@example.com")

	req := httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(),
		strings.NewReader(`{"name":"Widget","productCode":"WID-1","price":12.5}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteProductEndpoint(t *testing.T) {
	products := new(mockProductsRepo)
	id := uuid.New()
	products.On("Delete", id).Return(nil)

	router := newProductsRouter(products, "admin@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+id.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Product deleted successfully", body["message"])
}

func TestDeleteProductEndpointNotFound(t *testing.T) {
	products := new(mockProductsRepo)
	id := uuid.New()
	products.On("Delete", id).Return(models.ErrProductNotFound)

	router := newProductsRouter(products, "admin@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+id.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
