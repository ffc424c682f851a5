package models

import "gorm.io/gorm"

// Account represents a local or remote federation actor
type Account struct {
	gorm.Model     `json:"-"`
	ID             uint   `json:"id" gorm:"primaryKey"`
	Username       string `json:"username" gorm:"uniqueIndex:idx_accounts_username_domain"`
	Domain         string `json:"domain,omitempty" gorm:"uniqueIndex:idx_accounts_username_domain"` // empty for local accounts
	URI            string `json:"uri" gorm:"uniqueIndex"`                                           // ActivityPub actor URI
	InboxURL       string `json:"inbox_url,omitempty"`
	SharedInboxURL string `json:"shared_inbox_url,omitempty"`
	DeviceToken    string `json:"-"` // FCM registration token for push, local accounts only
}

// Local reports whether the account lives on this server
func (a *Account) Local() bool {
	return a.Domain == ""
}

// PreferredInboxURL returns the shared inbox when the peer advertises one,
// falling back to the personal inbox
func (a *Account) PreferredInboxURL() string {
	if a.SharedInboxURL != "" {
		return a.SharedInboxURL
	}
	return a.InboxURL
}
