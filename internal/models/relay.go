package models

import "gorm.io/gorm"

// Relay is a registered third-party server that rebroadcasts public
// activities to a wider set of servers
type Relay struct {
	gorm.Model `json:"-"`
	ID         uint   `json:"id" gorm:"primaryKey"`
	InboxURL   string `json:"inbox_url" gorm:"uniqueIndex"`
	Enabled    bool   `json:"enabled" gorm:"index"`
}

// FriendDomain is a trusted peer server eligible for the narrower
// friend-network distribution channel
type FriendDomain struct {
	gorm.Model    `json:"-"`
	ID            uint   `json:"id" gorm:"primaryKey"`
	Domain        string `json:"domain" gorm:"uniqueIndex"`
	InboxURL      string `json:"inbox_url"`
	Active        bool   `json:"active" gorm:"index"`
	Distributable bool   `json:"distributable"` // eligible to receive friend-channel rebroadcasts
}
