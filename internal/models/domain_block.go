package models

import "gorm.io/gorm"

// Domain block severities
const (
	SeveritySilence = "silence"
	SeveritySuspend = "suspend"
)

// DomainBlock holds the moderation policy applied to a remote domain
type DomainBlock struct {
	gorm.Model      `json:"-"`
	ID              uint   `json:"id" gorm:"primaryKey"`
	Domain          string `json:"domain" gorm:"uniqueIndex"`
	Severity        string `json:"severity" gorm:"size:20;default:'silence'"`
	RejectFavourite bool   `json:"reject_favourite"` // drop plain favourites from this domain
	RejectMedia     bool   `json:"reject_media"`     // never materialize remote media (incl. custom emojis)
}

// Blocked reports whether all activity from the domain is dropped
func (b *DomainBlock) Blocked() bool {
	return b.Severity == SeveritySuspend
}
