package repositories

import (
	"errors"

	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"gorm.io/gorm"
)

// StatusRepository defines the interface for status lookups
type StatusRepository interface {
	GetByID(id uint) (*models.Status, error)
	GetByURI(uri string) (*models.Status, error)
	CreateStatus(status *models.Status) error
}

// PostgresStatusRepository implements StatusRepository for PostgreSQL
type PostgresStatusRepository struct {
	db *gorm.DB
}

// NewPostgresStatusRepository creates a new PostgresStatusRepository
func NewPostgresStatusRepository(db *gorm.DB) *PostgresStatusRepository {
	return &PostgresStatusRepository{db: db}
}

// GetByID retrieves a status with its owning account preloaded
func (r *PostgresStatusRepository) GetByID(id uint) (*models.Status, error) {
	var status models.Status
	if err := r.db.Preload("Account").First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// GetByURI retrieves a status by its ActivityPub object URI with its owning
// account preloaded; returns (nil, nil) when the object is not known locally
func (r *PostgresStatusRepository) GetByURI(uri string) (*models.Status, error) {
	var status models.Status
	err := r.db.Preload("Account").Where("uri = ?", uri).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// CreateStatus creates a new status row
func (r *PostgresStatusRepository) CreateStatus(status *models.Status) error {
	return r.db.Create(status).Error
}
