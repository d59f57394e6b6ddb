package db

import (
	"context"
	"errors"

	"github.com/sidhant-sriv/db-auth/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Store is the persistence gateway shared by every handler. Each method
// issues a single statement.
type Store struct {
	db *gorm.DB
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateClient inserts a new client row.
func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	return s.db.WithContext(ctx).Create(c).Error
}

// FindClientByCredentials returns the client whose email and password both
// match, or ErrNotFound.
func (s *Store) FindClientByCredentials(ctx context.Context, email, password string) (*models.Client, error) {
	var c models.Client
	err := s.db.WithContext(ctx).
		Where("email = ? AND password = ?", email, password).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateClientNames rewrites nom and prenom of the client with this email.
func (s *Store) UpdateClientNames(ctx context.Context, email, nom, prenom string) error {
	return s.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("email = ?", email).
		Updates(map[string]any{"nom": nom, "prenom": prenom}).Error
}

// UpdateClientImage stores a new profile image reference.
func (s *Store) UpdateClientImage(ctx context.Context, email, path string) error {
	return s.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("email = ?", email).
		Update("profile_image", path).Error
}

// CreateObjet inserts a catalog row.
func (s *Store) CreateObjet(ctx context.Context, o *models.Objet) error {
	return s.db.WithContext(ctx).Create(o).Error
}

// ListObjets returns every catalog row. Never nil.
func (s *Store) ListObjets(ctx context.Context) ([]models.Objet, error) {
	objets := []models.Objet{}
	if err := s.db.WithContext(ctx).Order("id").Find(&objets).Error; err != nil {
		return nil, err
	}
	return objets, nil
}

// DeleteObjets removes every row with exactly this name and price and
// reports how many went away.
func (s *Store) DeleteObjets(ctx context.Context, objet, prix string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("objet = ? AND prix = ?", objet, prix).
		Delete(&models.Objet{})
	return res.RowsAffected, res.Error
}
