package services

import (
	"math"
	"strings"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// ProductService implements catalog ingestion and single-record CRUD on top
// of the products repository and the read-only user registry.
type ProductService struct {
	products repository.ProductsRepositoryInterface
	users    repository.UsersRepositoryInterface
	logger   *logrus.Logger
}

func NewProductService(products repository.ProductsRepositoryInterface, users repository.UsersRepositoryInterface, logger *logrus.Logger) *ProductService {
	return &ProductService{
		products: products,
		users:    users,
		logger:   logger,
	}
}

// ValidateProduct enforces the per-record constraints shared by the JSON and
// file ingestion paths: non-empty name and code after trimming, positive price.
func ValidateProduct(input models.ProductInput) *models.ValidationError {
	if strings.TrimSpace(input.Name) == "" {
		return &models.ValidationError{Field: "name", Message: "name is required and must be a non-empty string"}
	}
	if strings.TrimSpace(input.ProductCode) == "" {
		return &models.ValidationError{Field: "productCode", Message: "productCode is required and must be a non-empty string"}
	}
	if math.IsNaN(input.Price) || input.Price <= 0 {
		return &models.ValidationError{Field: "price", Message: "price must be a positive number"}
	}
	return nil
}

// IngestProducts runs one ingestion batch: sender eligibility, per-record
// validation (whole batch rejected on first failure), deduplication against
// the live catalog, and bulk persistence. Past validation a record is either
// persisted or silently dropped as a duplicate, never reported individually.
func (s *ProductService) IngestProducts(inputs []models.ProductInput, sourceEmail string) (*models.IngestionReport, error) {
	email := strings.ToLower(strings.TrimSpace(sourceEmail))

	registered, err := s.isEmailRegistered(email)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, models.ErrSenderNotRegistered
	}

	for _, input := range inputs {
		if verr := ValidateProduct(input); verr != nil {
			return nil, verr
		}
	}

	inserted, err := s.createProducts(inputs, email)
	if err != nil {
		return nil, err
	}

	report := &models.IngestionReport{
		TotalReceived:      len(inputs),
		TotalProcessed:     len(inserted),
		DuplicatesFiltered: len(inputs) - len(inserted),
	}

	s.logger.WithFields(logrus.Fields{
		"sourceEmail":        email,
		"totalReceived":      report.TotalReceived,
		"totalProcessed":     report.TotalProcessed,
		"duplicatesFiltered": report.DuplicatesFiltered,
	}).Info("Ingestion batch processed")

	return report, nil
}

// isEmailRegistered checks the sender against the external user registry.
func (s *ProductService) isEmailRegistered(email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	user, err := s.users.FindActiveByEmail(email)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// createProducts is the deduplication and bulk-insert engine. It filters
// candidates against a snapshot of existing codes and names, then attempts a
// single bulk insert, degrading to per-record inserts when the bulk write
// hits a uniqueness conflict. It returns the records actually written.
//
// Candidates within the same batch are not deduplicated against each other;
// the snapshot only covers pre-existing rows. Intra-batch collisions surface
// as uniqueness conflicts and are resolved by the fallback path.
func (s *ProductService) createProducts(inputs []models.ProductInput, sourceEmail string) ([]*models.Product, error) {
	pairs, err := s.products.GetAllCodesAndNames()
	if err != nil {
		return nil, err
	}

	existingCodes := make(map[string]struct{}, len(pairs))
	existingNames := make(map[string]struct{}, len(pairs))
	for _, pair := range pairs {
		existingCodes[strings.ToUpper(pair.ProductCode)] = struct{}{}
		existingNames[strings.ToLower(pair.Name)] = struct{}{}
	}

	toInsert := make([]*models.Product, 0, len(inputs))
	for _, input := range inputs {
		name := strings.TrimSpace(input.Name)
		code := strings.TrimSpace(input.ProductCode)
		if name == "" || code == "" {
			continue
		}

		normalizedCode := strings.ToUpper(code)
		if _, dup := existingCodes[normalizedCode]; dup {
			continue
		}
		if _, dup := existingNames[strings.ToLower(name)]; dup {
			continue
		}

		toInsert = append(toInsert, &models.Product{
			Name:        name,
			ProductCode: normalizedCode,
			Price:       input.Price,
			SourceEmail: sourceEmail,
		})
	}

	if len(toInsert) == 0 {
		return []*models.Product{}, nil
	}

	err = s.products.BulkInsert(toInsert)
	if err == nil {
		return toInsert, nil
	}
	if !repository.IsUniqueViolation(err) {
		return nil, err
	}

	// Bulk write collided with the unique constraint, typically because two
	// candidates in the batch normalize to the same key or a concurrent
	// batch won the race. Retry one record at a time, keeping the survivors.
	inserted := make([]*models.Product, 0, len(toInsert))
	for _, product := range toInsert {
		if err := s.products.Insert(product); err != nil {
			if !repository.IsUniqueViolation(err) {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"productCode": product.ProductCode,
					"sourceEmail": sourceEmail,
				}).Error("Failed to insert product during fallback, skipping record")
			}
			continue
		}
		inserted = append(inserted, product)
	}

	return inserted, nil
}
