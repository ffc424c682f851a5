package repositories

import (
	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"gorm.io/gorm"
)

// FriendDomainRepository defines the interface for friend instance lookups
type FriendDomainRepository interface {
	ListDistributableInboxURLs() ([]string, error)
	CreateFriendDomain(friend *models.FriendDomain) error
}

// PostgresFriendDomainRepository implements FriendDomainRepository for PostgreSQL
type PostgresFriendDomainRepository struct {
	db *gorm.DB
}

// NewPostgresFriendDomainRepository creates a new PostgresFriendDomainRepository
func NewPostgresFriendDomainRepository(db *gorm.DB) *PostgresFriendDomainRepository {
	return &PostgresFriendDomainRepository{db: db}
}

// ListDistributableInboxURLs retrieves the inbox URLs of every active friend
// instance flagged for distribution
func (r *PostgresFriendDomainRepository) ListDistributableInboxURLs() ([]string, error) {
	var urls []string
	err := r.db.Model(&models.FriendDomain{}).
		Where("active = ? AND distributable = ?", true, true).
		Pluck("inbox_url", &urls).Error
	return urls, err
}

// CreateFriendDomain creates a new friend domain row
func (r *PostgresFriendDomainRepository) CreateFriendDomain(friend *models.FriendDomain) error {
	return r.db.Create(friend).Error
}
