package repositories

import (
	"errors"

	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"gorm.io/gorm"
)

// DomainBlockRepository exposes the moderation predicates the pipeline
// consults. An empty domain is a local sender and never matches a block.
type DomainBlockRepository interface {
	Blocked(domain string) (bool, error)
	RejectFavourite(domain string) (bool, error)
	RejectMedia(domain string) (bool, error)
	CreateDomainBlock(block *models.DomainBlock) error
}

// PostgresDomainBlockRepository implements DomainBlockRepository for PostgreSQL
type PostgresDomainBlockRepository struct {
	db *gorm.DB
}

// NewPostgresDomainBlockRepository creates a new PostgresDomainBlockRepository
func NewPostgresDomainBlockRepository(db *gorm.DB) *PostgresDomainBlockRepository {
	return &PostgresDomainBlockRepository{db: db}
}

func (r *PostgresDomainBlockRepository) find(domain string) (*models.DomainBlock, error) {
	if domain == "" {
		return nil, nil
	}
	var block models.DomainBlock
	err := r.db.Where("domain = ?", domain).First(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// Blocked checks whether all activity from the domain is dropped
func (r *PostgresDomainBlockRepository) Blocked(domain string) (bool, error) {
	block, err := r.find(domain)
	if err != nil || block == nil {
		return false, err
	}
	return block.Blocked(), nil
}

// RejectFavourite checks whether plain favourites from the domain are dropped
func (r *PostgresDomainBlockRepository) RejectFavourite(domain string) (bool, error) {
	block, err := r.find(domain)
	if err != nil || block == nil {
		return false, err
	}
	return block.RejectFavourite, nil
}

// RejectMedia checks whether remote media from the domain is never fetched
func (r *PostgresDomainBlockRepository) RejectMedia(domain string) (bool, error) {
	block, err := r.find(domain)
	if err != nil || block == nil {
		return false, err
	}
	return block.RejectMedia, nil
}

// CreateDomainBlock creates a new domain block row
func (r *PostgresDomainBlockRepository) CreateDomainBlock(block *models.DomainBlock) error {
	return r.db.Create(block).Error
}
