package handlers

import (
	"catalog-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockProductsRepo struct {
	mock.Mock
}

func (m *mockProductsRepo) GetAllCodesAndNames() ([]models.CodeName, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CodeName), args.Error(1)
}

func (m *mockProductsRepo) BulkInsert(products []*models.Product) error {
	args := m.Called(products)
	return args.Error(0)
}

func (m *mockProductsRepo) Insert(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *mockProductsRepo) GetByID(id uuid.UUID) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductsRepo) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *mockProductsRepo) Delete(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *mockProductsRepo) List(page, limit int) ([]models.Product, int64, error) {
	args := m.Called(page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductsRepo) ExistsByCodeOrName(code, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(code, name, excludeID)
	return args.Bool(0), args.Error(1)
}

type mockUsersRepo struct {
	mock.Mock
}

func (m *mockUsersRepo) FindActiveByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
