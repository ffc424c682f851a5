package repositories

import (
	"errors"

	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for account lookups the inbound
// pipeline needs. Account provisioning itself lives outside this service.
type AccountRepository interface {
	GetByID(id uint) (*models.Account, error)
	GetByURI(uri string) (*models.Account, error)
	CreateAccount(account *models.Account) error
}

// PostgresAccountRepository implements AccountRepository for PostgreSQL
type PostgresAccountRepository struct {
	db *gorm.DB
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository
func NewPostgresAccountRepository(db *gorm.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// GetByID retrieves an account by its primary key
func (r *PostgresAccountRepository) GetByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByURI retrieves an account by its ActivityPub actor URI; returns
// (nil, nil) when no such actor is known locally
func (r *PostgresAccountRepository) GetByURI(uri string) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("uri = ?", uri).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccount creates a new account row
func (r *PostgresAccountRepository) CreateAccount(account *models.Account) error {
	return r.db.Create(account).Error
}
