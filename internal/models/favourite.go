package models

import "gorm.io/gorm"

// Favourite represents a plain, unnamed positive reaction to a status.
// At most one exists per (account, status) pair.
type Favourite struct {
	gorm.Model `json:"-"`
	ID         uint `json:"id" gorm:"primaryKey"`
	AccountID  uint `json:"account_id" gorm:"uniqueIndex:idx_favourites_account_status"`
	StatusID   uint `json:"status_id" gorm:"uniqueIndex:idx_favourites_account_status"`
}
