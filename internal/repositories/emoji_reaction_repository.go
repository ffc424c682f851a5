package repositories

import (
	"errors"

	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"gorm.io/gorm"
)

// EmojiReactionRepository defines the interface for emoji reaction data
// operations. The count/find/create triple is always executed under the
// caller's per-status lock.
type EmojiReactionRepository interface {
	CreateEmojiReaction(reaction *models.EmojiReaction) error
	DestroyEmojiReaction(id uint) error
	FindByID(id uint) (*models.EmojiReaction, error)
	CountByAccountAndStatus(accountID, statusID uint) (int64, error)
	FindByAccountStatusName(accountID, statusID uint, name string) (*models.EmojiReaction, error)
	ListByStatus(statusID uint) ([]models.EmojiReaction, error)
}

// PostgresEmojiReactionRepository implements EmojiReactionRepository for PostgreSQL
type PostgresEmojiReactionRepository struct {
	db *gorm.DB
}

// NewPostgresEmojiReactionRepository creates a new PostgresEmojiReactionRepository
func NewPostgresEmojiReactionRepository(db *gorm.DB) *PostgresEmojiReactionRepository {
	return &PostgresEmojiReactionRepository{db: db}
}

// CreateEmojiReaction creates a new emoji reaction row
func (r *PostgresEmojiReactionRepository) CreateEmojiReaction(reaction *models.EmojiReaction) error {
	return r.db.Create(reaction).Error
}

// DestroyEmojiReaction deletes an emoji reaction row
func (r *PostgresEmojiReactionRepository) DestroyEmojiReaction(id uint) error {
	res := r.db.Delete(&models.EmojiReaction{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID retrieves a reaction by primary key, or (nil, nil) when it does
// not exist
func (r *PostgresEmojiReactionRepository) FindByID(id uint) (*models.EmojiReaction, error) {
	var reaction models.EmojiReaction
	err := r.db.First(&reaction, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// CountByAccountAndStatus retrieves how many reactions the account holds on
// the status
func (r *PostgresEmojiReactionRepository) CountByAccountAndStatus(accountID, statusID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.EmojiReaction{}).
		Where("account_id = ? AND status_id = ?", accountID, statusID).
		Count(&count).Error
	return count, err
}

// FindByAccountStatusName retrieves the reaction with the given name, or
// (nil, nil) when the account has not reacted with it
func (r *PostgresEmojiReactionRepository) FindByAccountStatusName(accountID, statusID uint, name string) (*models.EmojiReaction, error) {
	var reaction models.EmojiReaction
	err := r.db.Where("account_id = ? AND status_id = ? AND name = ?", accountID, statusID, name).
		First(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// ListByStatus retrieves every reaction on the status with custom emojis
// preloaded, oldest first, for grouped-view rebuilds
func (r *PostgresEmojiReactionRepository) ListByStatus(statusID uint) ([]models.EmojiReaction, error) {
	var reactions []models.EmojiReaction
	err := r.db.Preload("CustomEmoji").
		Where("status_id = ?", statusID).
		Order("id ASC").
		Find(&reactions).Error
	return reactions, err
}
