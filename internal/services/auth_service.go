package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"sbf/internal/models"
	"sbf/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and opaque bearer tokens.
//
// Tokens are random 48-byte strings persisted per user (one token per user,
// get-or-create). A token older than tokenTTL is treated as unknown and
// replaced on the next issue.
type AuthService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.TokenRepository
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService. A tokenTTL of zero disables
// expiry.
func NewAuthService(userRepo repositories.UserRepository, tokenRepo repositories.TokenRepository, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a new user with a bcrypt-hashed password and immediately
// issues a token. Returns ErrUsernameTaken when the username exists
// (case-sensitive match, backed by the unique index).
func (s *AuthService) Register(username, password, picture string) (*models.User, *models.AuthToken, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Password: string(hashed),
		Picture:  picture,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, nil, ErrUsernameTaken
		}
		return nil, nil, fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Login verifies the credentials and returns the user with an issued (or
// reused) token. An unknown username and a wrong password produce the same
// ErrInvalidCredentials.
func (s *AuthService) Login(username, password string) (*models.User, *models.AuthToken, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// IssueToken returns the user's current token, creating one if absent.
// Idempotent for an unexpired token; an expired token is rotated.
func (s *AuthService) IssueToken(user *models.User) (*models.AuthToken, error) {
	existing, err := s.tokenRepo.GetByUser(user.ID)
	switch {
	case err == nil:
		if !s.expired(existing) {
			return existing, nil
		}
		if err := s.tokenRepo.DeleteByUser(user.ID); err != nil {
			return nil, err
		}
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	value, err := newTokenValue()
	if err != nil {
		return nil, err
	}
	token := &models.AuthToken{UserID: user.ID, Token: value}
	if err := s.tokenRepo.Create(token); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// Another request issued a token for this user first; use theirs.
			return s.tokenRepo.GetByUser(user.ID)
		}
		return nil, err
	}
	return token, nil
}

// Authenticate resolves a request's credentials into a user and token. The
// Authorization header ("Token <value>") takes precedence over the cookie
// value. Any miss, malformed value or expired token yields
// ErrUnauthenticated.
func (s *AuthService) Authenticate(headerValue, cookieValue string) (*models.User, *models.AuthToken, error) {
	value := cookieValue
	if headerValue != "" {
		parts := strings.SplitN(headerValue, " ", 2)
		if len(parts) != 2 || parts[0] != "Token" || parts[1] == "" {
			return nil, nil, ErrUnauthenticated
		}
		value = parts[1]
	}
	if value == "" {
		return nil, nil, ErrUnauthenticated
	}

	token, err := s.tokenRepo.GetByToken(value)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if s.expired(token) {
		return nil, nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(token.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("failed to look up token owner: %w", err)
	}
	return user, token, nil
}

func (s *AuthService) expired(token *models.AuthToken) bool {
	return s.tokenTTL > 0 && time.Since(token.CreatedAt) > s.tokenTTL
}

// newTokenValue returns 48 random bytes as a 64-character URL-safe string.
func newTokenValue() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
