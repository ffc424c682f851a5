package models

import "gorm.io/gorm"

// Status visibility levels, mirroring the ActivityPub audience the status was
// addressed to when it was created.
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
	VisibilityDirect   = "direct"
)

// Status represents a piece of content a reaction can target
type Status struct {
	gorm.Model `json:"-"`
	ID         uint    `json:"id" gorm:"primaryKey"`
	AccountID  uint    `json:"account_id" gorm:"index"`
	Account    Account `json:"-"`
	URI        string  `json:"uri" gorm:"uniqueIndex"` // ActivityPub object URI
	Visibility string  `json:"visibility" gorm:"size:20;default:'public'"`
}

// Local reports whether the status was authored on this server
func (s *Status) Local() bool {
	return s.Account.Local()
}

// PublicVisibility reports whether the status may be relayed to open relays
func (s *Status) PublicVisibility() bool {
	return s.Visibility == VisibilityPublic
}

// DistributableFriend reports whether the status may be distributed over the
// friend-instance channel (anything publicly browsable qualifies)
func (s *Status) DistributableFriend() bool {
	return s.Visibility == VisibilityPublic || s.Visibility == VisibilityUnlisted
}
