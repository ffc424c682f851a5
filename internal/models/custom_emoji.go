package models

import (
	"time"

	"gorm.io/gorm"
)

// CustomEmoji is a cached descriptor of a custom emoji, local or remote.
// A (shortcode, domain) pair identifies exactly one entry; Domain is nil for
// emojis owned by this server.
type CustomEmoji struct {
	gorm.Model     `json:"-"`
	ID             uint    `json:"id" gorm:"primaryKey"`
	Shortcode      string  `json:"shortcode" gorm:"uniqueIndex:idx_custom_emojis_shortcode_domain"`
	Domain         *string `json:"domain,omitempty" gorm:"uniqueIndex:idx_custom_emojis_shortcode_domain"`
	URI            string  `json:"uri,omitempty"`
	ImageRemoteURL string  `json:"image_remote_url,omitempty"`
	License        string  `json:"license,omitempty"`
	IsSensitive    bool    `json:"is_sensitive"`
	UpdatedAt      time.Time
}

// DomainOrEmpty flattens the nullable domain for payloads that omit it when
// the emoji is local
func (e *CustomEmoji) DomainOrEmpty() string {
	if e.Domain == nil {
		return ""
	}
	return *e.Domain
}
