package models

import "gorm.io/gorm"

// EmojiReactionPerAccountLimit caps how many distinct emoji reactions one
// account may hold on one status.
const EmojiReactionPerAccountLimit = 3

// EmojiReactionNameLimit bounds the shortcode length accepted from remote
// servers.
const EmojiReactionNameLimit = 100

// EmojiReaction represents a named reaction on a status, optionally backed by
// a custom emoji. Uniqueness is (account, status, name).
type EmojiReaction struct {
	gorm.Model    `json:"-"`
	ID            uint         `json:"id" gorm:"primaryKey"`
	AccountID     uint         `json:"account_id" gorm:"uniqueIndex:idx_emoji_reactions_account_status_name"`
	StatusID      uint         `json:"status_id" gorm:"uniqueIndex:idx_emoji_reactions_account_status_name"`
	Name          string       `json:"name" gorm:"size:100;default:'';uniqueIndex:idx_emoji_reactions_account_status_name"`
	CustomEmojiID *uint        `json:"custom_emoji_id,omitempty"`
	CustomEmoji   *CustomEmoji `json:"-"`
	URI           string       `json:"uri,omitempty"` // id of the activity that carried the reaction
}
