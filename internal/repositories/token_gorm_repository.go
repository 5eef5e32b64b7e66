package repositories

import (
	"fmt"

	"sbf/internal/models"

	"gorm.io/gorm"
)

// GORMTokenRepository is a GORM implementation of TokenRepository.
type GORMTokenRepository struct {
	db *gorm.DB
}

// NewGORMTokenRepository creates a new instance of GORMTokenRepository.
func NewGORMTokenRepository(db *gorm.DB) *GORMTokenRepository {
	return &GORMTokenRepository{db: db}
}

// Create inserts a token row. The unique index on user_id makes issuance
// race-safe: the loser of a concurrent issue gets ErrDuplicate and re-reads.
func (r *GORMTokenRepository) Create(token *models.AuthToken) error {
	if err := r.db.Create(token).Error; err != nil {
		if terr := translate(err); terr == ErrDuplicate {
			return terr
		}
		return fmt.Errorf("failed to create auth token: %w", err)
	}
	return nil
}

// GetByToken looks up a token by its opaque value.
func (r *GORMTokenRepository) GetByToken(token string) (*models.AuthToken, error) {
	var t models.AuthToken
	if err := r.db.First(&t, "token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// GetByUser returns the user's token, if any.
func (r *GORMTokenRepository) GetByUser(userID string) (*models.AuthToken, error) {
	var t models.AuthToken
	if err := r.db.First(&t, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// DeleteByUser removes the user's token. No error when none exists.
func (r *GORMTokenRepository) DeleteByUser(userID string) error {
	if err := r.db.Delete(&models.AuthToken{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete auth token: %w", err)
	}
	return nil
}
