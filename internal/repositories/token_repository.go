package repositories

import "sbf/internal/models"

// TokenRepository defines the interface for auth token data access.
type TokenRepository interface {
	Create(token *models.AuthToken) error
	GetByToken(token string) (*models.AuthToken, error)
	GetByUser(userID string) (*models.AuthToken, error)
	DeleteByUser(userID string) error
}
