package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"catalog-service/internal/events"
	"catalog-service/internal/models"
	"catalog-service/internal/parser"
	"catalog-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EmailHandler exposes the unauthenticated ingestion endpoint used by
// registered-email senders.
type EmailHandler struct {
	service   *services.ProductService
	publisher *events.Publisher
	logger    *logrus.Logger
}

func NewEmailHandler(service *services.ProductService, publisher *events.Publisher, logger *logrus.Logger) *EmailHandler {
	return &EmailHandler{
		service:   service,
		publisher: publisher,
		logger:    logger,
	}
}

// EmailProducts ingests products from a JSON payload or an uploaded file.
// @Summary Ingest a product batch from a registered email sender
// @Tags ingestion
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body models.EmailIngestRequest false "JSON batch"
// @Param file formData file false "CSV or Excel file"
// @Param sourceEmail formData string false "Sender email (required with file)"
// @Success 201 {object} models.IngestionReport
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /email/products [post]
func (h *EmailHandler) EmailProducts(c *gin.Context) {
	var (
		inputs      []models.ProductInput
		sourceEmail string
	)

	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()

		sourceEmail = c.PostForm("sourceEmail")
		if sourceEmail == "" {
			sourceEmail = c.Query("sourceEmail")
		}
		if sourceEmail == "" {
			respondError(c, http.StatusBadRequest, "MISSING_SOURCE_EMAIL", "sourceEmail is required when uploading a file", "")
			return
		}

		if header.Filename == "" {
			respondError(c, http.StatusBadRequest, "MISSING_FILENAME", "File name is required to determine file type", "")
			return
		}

		if !isAllowedUpload(header) {
			respondError(c, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "Only Excel (.xlsx, .xls) and CSV (.csv) files are allowed", "")
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_FILE", "Failed to read uploaded file", "")
			return
		}

		// Binary dispatch: explicit CSV goes to the CSV parser, everything
		// else the boundary let through is treated as a workbook.
		format := parser.FormatExcel
		if strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
			format = parser.FormatCSV
		}

		inputs, err = parser.Parse(data, format)
		if err != nil {
			respondError(c, http.StatusBadRequest, "PARSE_ERROR", err.Error(), "")
			return
		}
	} else {
		var req models.EmailIngestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_BODY", "sourceEmail and products array are required", "")
			return
		}
		if req.SourceEmail == "" || len(req.Products) == 0 {
			respondError(c, http.StatusBadRequest, "INVALID_BODY", "sourceEmail and products array are required", "")
			return
		}
		sourceEmail = req.SourceEmail
		inputs = req.Products
	}

	report, err := h.service.IngestProducts(inputs, sourceEmail)
	if err != nil {
		h.handleIngestError(c, err)
		return
	}

	if h.publisher != nil {
		h.publisher.PublishBatchIngested(c.Request.Context(), strings.ToLower(sourceEmail), report)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": fmt.Sprintf("%d products successfully ingested from %s", report.TotalProcessed, strings.ToLower(sourceEmail)),
		"data":    report,
	})
}

func (h *EmailHandler) handleIngestError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, models.ErrSenderNotRegistered):
		respondError(c, http.StatusForbidden, "EMAIL_NOT_REGISTERED",
			"Email not registered. Only registered emails are allowed to submit products.", "")
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("Invalid product data: %s", verr.Message), verr.Field)
	default:
		h.logger.WithError(err).Error("Failed to process ingestion batch")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Error processing products", "")
	}
}

// isAllowedUpload enforces the boundary allowlist before any parsing.
func isAllowedUpload(header *multipart.FileHeader) bool {
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	switch header.Header.Get("Content-Type") {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel",
		"text/csv",
		"application/csv":
		return true
	}
	return false
}

func respondError(c *gin.Context, status int, code, message, field string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
			Field:   field,
		},
	})
}
