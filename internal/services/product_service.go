package services

import (
	"strings"

	"catalog-service/internal/models"
	"github.com/google/uuid"
)

// CreateProduct creates one product on behalf of an authenticated user.
// Duplicates are pre-checked against normalized code OR name; the check is
// racy against concurrent writers, which the unique constraint backstops.
func (s *ProductService) CreateProduct(req models.UpsertProductRequest, sourceEmail string) (*models.Product, error) {
	input := models.ProductInput{Name: req.Name, ProductCode: req.ProductCode, Price: req.Price}
	if verr := ValidateProduct(input); verr != nil {
		return nil, verr
	}

	name := strings.TrimSpace(req.Name)
	code := strings.ToUpper(strings.TrimSpace(req.ProductCode))

	exists, err := s.products.ExistsByCodeOrName(code, strings.ToLower(name), nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrProductExists
	}

	product := &models.Product{
		Name:        name,
		ProductCode: code,
		Price:       req.Price,
		SourceEmail: strings.ToLower(strings.TrimSpace(sourceEmail)),
	}
	if err := s.products.Insert(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies the same pre-check as create, excluding the record's
// own id.
func (s *ProductService) UpdateProduct(id uuid.UUID, req models.UpsertProductRequest) (*models.Product, error) {
	input := models.ProductInput{Name: req.Name, ProductCode: req.ProductCode, Price: req.Price}
	if verr := ValidateProduct(input); verr != nil {
		return nil, verr
	}

	name := strings.TrimSpace(req.Name)
	code := strings.ToUpper(strings.TrimSpace(req.ProductCode))

	exists, err := s.products.ExistsByCodeOrName(code, strings.ToLower(name), &id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrProductExists
	}

	product := &models.Product{
		ID:          id,
		Name:        name,
		ProductCode: code,
		Price:       req.Price,
	}
	if err := s.products.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	return s.products.GetByID(id)
}

func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	return s.products.Delete(id)
}

// ListProducts returns one page, newest first. Requesting a page beyond the
// range yields an empty list with the correct total.
func (s *ProductService) ListProducts(page, limit int) (*models.ProductListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	products, total, err := s.products.List(page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &models.ProductListResponse{
		Products:    products,
		TotalPages:  totalPages,
		CurrentPage: page,
		Total:       total,
	}, nil
}
