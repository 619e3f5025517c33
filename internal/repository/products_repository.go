package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog-service/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Cache TTL constants
const (
	ProductCacheTTL     = 5 * time.Minute // Single product cache
	ProductListCacheTTL = 2 * time.Minute // List cache (shorter due to frequent changes)
)

// ProductsRepositoryInterface is the persistence contract consumed by the
// service layer. The dedup snapshot (GetAllCodesAndNames) sits behind this
// interface so a transactional membership check could replace it without
// touching the ingestion flow.
type ProductsRepositoryInterface interface {
	GetAllCodesAndNames() ([]models.CodeName, error)
	BulkInsert(products []*models.Product) error
	Insert(product *models.Product) error
	GetByID(id uuid.UUID) (*models.Product, error)
	Update(product *models.Product) error
	Delete(id uuid.UUID) error
	List(page, limit int) ([]models.Product, int64, error)
	ExistsByCodeOrName(code, name string, excludeID *uuid.UUID) (bool, error)
}

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

var _ ProductsRepositoryInterface = (*ProductsRepository)(nil)

func NewProductsRepository(db *gorm.DB, redisClient *redis.Client) *ProductsRepository {
	return &ProductsRepository{
		db:    db,
		redis: redisClient,
	}
}

// IsUniqueViolation reports whether err was caused by a unique constraint,
// either as translated by gorm or as the driver's native error.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetAllCodesAndNames loads the (productCode, name) projection of the whole
// catalog in one scan. Deliberately uncached: the ingestion flow needs the
// freshest snapshot it can get.
func (r *ProductsRepository) GetAllCodesAndNames() ([]models.CodeName, error) {
	var pairs []models.CodeName
	err := r.db.Model(&models.Product{}).
		Select("product_code", "name").
		Find(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan product codes and names: %w", err)
	}
	return pairs, nil
}

// BulkInsert writes all products in a single multi-row insert.
func (r *ProductsRepository) BulkInsert(products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}
	if err := r.db.Create(&products).Error; err != nil {
		return err
	}
	r.invalidateListCaches(context.Background())
	return nil
}

// Insert writes one product. Used for single-record create and for the
// per-record fallback after a bulk uniqueness conflict.
func (r *ProductsRepository) Insert(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return err
	}
	r.invalidateListCaches(context.Background())
	return nil
}

// GetByID retrieves a product with read-through caching.
func (r *ProductsRepository) GetByID(id uuid.UUID) (*models.Product, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("catalog:product:%s", id.String())

	if r.redis != nil {
		if cached, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var product models.Product
			if json.Unmarshal([]byte(cached), &product) == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	err := r.db.First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(&product); err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductCacheTTL)
		}
	}

	return &product, nil
}

// Update persists changed fields of an existing product.
func (r *ProductsRepository) Update(product *models.Product) error {
	result := r.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":         product.Name,
			"product_code": product.ProductCode,
			"price":        product.Price,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrProductNotFound
	}

	ctx := context.Background()
	r.invalidateProductCache(ctx, product.ID)
	r.invalidateListCaches(ctx)
	return r.db.First(product, "id = ?", product.ID).Error
}

// Delete removes a product permanently. No soft delete on this table.
func (r *ProductsRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrProductNotFound
	}

	ctx := context.Background()
	r.invalidateProductCache(ctx, id)
	r.invalidateListCaches(ctx)
	return nil
}

// List returns one page of products, newest first, plus the total count.
func (r *ProductsRepository) List(page, limit int) ([]models.Product, int64, error) {
	ctx := context.Background()
	cacheKey := generateListCacheKey("catalog:products:list", map[string]int{"page": page, "limit": limit})

	if r.redis != nil {
		if cached, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var entry listCacheEntry
			if json.Unmarshal([]byte(cached), &entry) == nil {
				return entry.Products, entry.Total, nil
			}
		}
	}

	var total int64
	if err := r.db.Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	products := make([]models.Product, 0, limit)
	err := r.db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(listCacheEntry{Products: products, Total: total}); err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductListCacheTTL)
		}
	}

	return products, total, nil
}

// ExistsByCodeOrName runs the combined duplicate pre-check used by
// single-record create and update. Code is compared as stored (uppercase),
// name case-insensitively.
func (r *ProductsRepository) ExistsByCodeOrName(code, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.Model(&models.Product{}).
		Where("product_code = ? OR LOWER(name) = ?", code, name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type listCacheEntry struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

// generateListCacheKey creates a deterministic cache key for list queries
func generateListCacheKey(prefix string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

func (r *ProductsRepository) invalidateProductCache(ctx context.Context, id uuid.UUID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, fmt.Sprintf("catalog:product:%s", id.String())).Err()
}

// invalidateListCaches drops every cached list page via SCAN + DEL.
func (r *ProductsRepository) invalidateListCaches(ctx context.Context) {
	if r.redis == nil {
		return
	}
	iter := r.redis.Scan(ctx, 0, "catalog:products:list:*", 100).Iterator()
	for iter.Next(ctx) {
		_ = r.redis.Del(ctx, iter.Val()).Err()
	}
}
