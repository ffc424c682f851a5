package repositories

import (
	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"gorm.io/gorm"
)

// RelayRepository defines the interface for relay directory lookups
type RelayRepository interface {
	ListEnabledInboxURLs() ([]string, error)
	CreateRelay(relay *models.Relay) error
}

// PostgresRelayRepository implements RelayRepository for PostgreSQL
type PostgresRelayRepository struct {
	db *gorm.DB
}

// NewPostgresRelayRepository creates a new PostgresRelayRepository
func NewPostgresRelayRepository(db *gorm.DB) *PostgresRelayRepository {
	return &PostgresRelayRepository{db: db}
}

// ListEnabledInboxURLs retrieves the inbox URLs of every enabled relay
func (r *PostgresRelayRepository) ListEnabledInboxURLs() ([]string, error) {
	var urls []string
	err := r.db.Model(&models.Relay{}).
		Where("enabled = ?", true).
		Pluck("inbox_url", &urls).Error
	return urls, err
}

// CreateRelay creates a new relay row
func (r *PostgresRelayRepository) CreateRelay(relay *models.Relay) error {
	return r.db.Create(relay).Error
}
