package models

import (
	"time"
)

// Client is a registered account. Credentials are stored as submitted.
type Client struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Nom          string    `gorm:"not null" json:"nom"`
	Prenom       string    `gorm:"not null" json:"prenom"`
	Email        string    `gorm:"index;not null" json:"email"`
	Password     string    `gorm:"not null" json:"-"` // hide from JSON response
	ProfileImage *string   `json:"profile_image"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// ImagePath returns the stored profile image reference or "".
func (c Client) ImagePath() string {
	if c.ProfileImage == nil {
		return ""
	}
	return *c.ProfileImage
}
