package db

import (
	"context"
	"errors"
	"time"

	"github.com/sidhant-sriv/db-auth/models"
	"gorm.io/gorm"
)

func (s *Store) CreateSession(ctx context.Context, rec *models.SessionRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

// FindSession returns the session row with this id, or ErrNotFound.
func (s *Store) FindSession(ctx context.Context, id string) (*models.SessionRecord, error) {
	var rec models.SessionRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveSession writes the snapshot fields back. Expiry is left alone.
func (s *Store) SaveSession(ctx context.Context, rec *models.SessionRecord) error {
	return s.db.WithContext(ctx).
		Model(&models.SessionRecord{ID: rec.ID}).
		Select("email", "nom", "prenom", "profile_image").
		Updates(rec).Error
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SessionRecord{}).Error
}

// DeleteExpiredSessions drops every row whose expiry is not after now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.SessionRecord{})
	return res.RowsAffected, res.Error
}
