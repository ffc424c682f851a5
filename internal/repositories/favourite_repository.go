package repositories

import (
	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"gorm.io/gorm"
)

// FavouriteRepository defines the interface for favourite data operations
type FavouriteRepository interface {
	CreateFavourite(favourite *models.Favourite) error
	HasFavourited(accountID, statusID uint) (bool, error)
	CountByStatus(statusID uint) (int64, error)
}

// PostgresFavouriteRepository implements FavouriteRepository for PostgreSQL
type PostgresFavouriteRepository struct {
	db *gorm.DB
}

// NewPostgresFavouriteRepository creates a new PostgresFavouriteRepository
func NewPostgresFavouriteRepository(db *gorm.DB) *PostgresFavouriteRepository {
	return &PostgresFavouriteRepository{db: db}
}

// CreateFavourite creates a new favourite row
func (r *PostgresFavouriteRepository) CreateFavourite(favourite *models.Favourite) error {
	return r.db.Create(favourite).Error
}

// HasFavourited checks whether the account already favourited the status
func (r *PostgresFavouriteRepository) HasFavourited(accountID, statusID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Favourite{}).
		Where("account_id = ? AND status_id = ?", accountID, statusID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByStatus retrieves the number of favourites on a status
func (r *PostgresFavouriteRepository) CountByStatus(statusID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Favourite{}).Where("status_id = ?", statusID).Count(&count).Error
	return count, err
}
