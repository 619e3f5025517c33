package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog entry contributed by a registered sender.
// ProductCode is stored uppercase and carries the unique constraint; name
// uniqueness is enforced case-insensitively at write time, not by the schema.
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null"`
	ProductCode string    `json:"productCode" gorm:"not null;uniqueIndex:idx_products_product_code"`
	Price       float64   `json:"price" gorm:"not null"`
	SourceEmail string    `json:"sourceEmail" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// User mirrors the registry of accounts allowed to submit products.
// The table is owned by the auth service; this service only reads it.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductInput is a candidate record from a JSON payload or a parsed file,
// not yet validated or deduplicated.
type ProductInput struct {
	Name        string  `json:"name"`
	ProductCode string  `json:"productCode"`
	Price       float64 `json:"price"`
}

// IngestionReport summarizes the outcome of one ingestion batch.
type IngestionReport struct {
	TotalReceived      int `json:"totalReceived"`
	TotalProcessed     int `json:"totalProcessed"`
	DuplicatesFiltered int `json:"duplicatesFiltered"`
}

// CodeName is the projection used by the dedup snapshot scan.
type CodeName struct {
	ProductCode string
	Name        string
}

// EmailIngestRequest is the JSON body of POST /api/email/products.
type EmailIngestRequest struct {
	SourceEmail string         `json:"sourceEmail"`
	Products    []ProductInput `json:"products"`
}

// UpsertProductRequest is the body of single-record create and update.
type UpsertProductRequest struct {
	Name        string  `json:"name"`
	ProductCode string  `json:"productCode"`
	Price       float64 `json:"price"`
}

// ProductListResponse is the payload of GET /api/products.
type ProductListResponse struct {
	Products    []Product `json:"products"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
	Total       int64     `json:"total"`
}

// Error carries a machine-readable code plus a human message.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}
