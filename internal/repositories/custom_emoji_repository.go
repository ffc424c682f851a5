package repositories

import (
	"errors"

	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"gorm.io/gorm"
)

// CustomEmojiRepository defines the interface for the custom emoji cache
type CustomEmojiRepository interface {
	FindByShortcodeAndDomain(shortcode string, domain *string) (*models.CustomEmoji, error)
	SaveCustomEmoji(emoji *models.CustomEmoji) error
}

// PostgresCustomEmojiRepository implements CustomEmojiRepository for PostgreSQL
type PostgresCustomEmojiRepository struct {
	db *gorm.DB
}

// NewPostgresCustomEmojiRepository creates a new PostgresCustomEmojiRepository
func NewPostgresCustomEmojiRepository(db *gorm.DB) *PostgresCustomEmojiRepository {
	return &PostgresCustomEmojiRepository{db: db}
}

// FindByShortcodeAndDomain retrieves the cache entry identified by the
// (shortcode, domain) pair; domain is nil for local emojis. Returns (nil, nil)
// on a cache miss.
func (r *PostgresCustomEmojiRepository) FindByShortcodeAndDomain(shortcode string, domain *string) (*models.CustomEmoji, error) {
	var emoji models.CustomEmoji
	query := r.db.Where("shortcode = ?", shortcode)
	if domain == nil {
		query = query.Where("domain IS NULL")
	} else {
		query = query.Where("domain = ?", *domain)
	}
	err := query.First(&emoji).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &emoji, nil
}

// SaveCustomEmoji creates or updates a cache entry
func (r *PostgresCustomEmojiRepository) SaveCustomEmoji(emoji *models.CustomEmoji) error {
	return r.db.Save(emoji).Error
}
