package repository

import (
	"errors"

	"catalog-service/internal/models"
	"gorm.io/gorm"
)

// UsersRepositoryInterface is the read-only view of the user registry used
// for sender eligibility checks.
type UsersRepositoryInterface interface {
	FindActiveByEmail(email string) (*models.User, error)
}

type UsersRepository struct {
	db *gorm.DB
}

var _ UsersRepositoryInterface = (*UsersRepository)(nil)

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// FindActiveByEmail looks up an active account by its lowercased email.
// Returns (nil, nil) when no matching active account exists.
func (r *UsersRepository) FindActiveByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "email = ? AND is_active = ?", email, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
