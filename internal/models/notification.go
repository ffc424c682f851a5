package models

import "time"

// Notification types produced by the reaction pipeline
const (
	NotificationFavourite     = "favourite"
	NotificationEmojiReaction = "emoji_reaction"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Type         string    `json:"type" gorm:"size:30;index"` // favourite, emoji_reaction
	ActorID      uint      `json:"actor_id" gorm:"index"`
	RecipientID  uint      `json:"recipient_id" gorm:"index"`
	ActivityID   uint      `json:"activity_id"`                  // favourite ID or emoji reaction ID
	ActivityType string    `json:"activity_type" gorm:"size:30"` // Favourite, EmojiReaction
	IsRead       bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}
