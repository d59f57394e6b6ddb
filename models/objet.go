package models

// Objet is a catalog entry. Rows are addressed by their (objet, prix) pair;
// the surrogate ID is never exposed.
type Objet struct {
	ID    uint   `gorm:"primaryKey" json:"-"`
	Objet string `gorm:"not null" json:"objet"`
	Prix  string `gorm:"type:decimal(10,2);not null" json:"prix"`
}
