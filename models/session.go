package models

import "time"

// SessionRecord is the server-side half of a login session: a snapshot of
// the client taken at login and refreshed by profile edits.
type SessionRecord struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"not null"`
	Nom          string    `gorm:"not null"`
	Prenom       string    `gorm:"not null"`
	ProfileImage *string
	ExpiresAt    time.Time `gorm:"index;not null"`
	CreatedAt    time.Time
}

func (SessionRecord) TableName() string {
	return "sessions"
}
