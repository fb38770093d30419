//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"fmt"
	"time"

	"ghostsnap/auth"
	"ghostsnap/domain"
	"ghostsnap/errors"
	"ghostsnap/repositories"

	"github.com/google/uuid"
)

type IAuthService interface {
	Register(email, password, handle, displayName string) (Token, error)
	Login(email, password string) (Token, error)
	CurrentUser(userID string) (domain.Profile, error)
}

type AuthService struct {
	users         repositories.IUserRepository
	tokenDuration time.Duration
}

type Token string

func NewAuthService(users repositories.IUserRepository, tokenDuration time.Duration) IAuthService {
	return &AuthService{users: users, tokenDuration: tokenDuration}
}

func (s *AuthService) Register(email, password, handle, displayName string) (Token, error) {
	req := auth.RegisterRequest{
		Email:       email,
		Password:    password,
		Handle:      handle,
		DisplayName: displayName,
	}

	// Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateRegister(req); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hashing stays in the service layer so the repository never sees a
	// plain password.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.users.CreateUser(email, hashedPassword, handle, displayName)
	if err != nil {
		return "", err // Propagates ErrUserAlreadyExists / ErrHandleTaken
	}

	token, err := auth.GenerateToken(user.ID.String(), s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Login(email, password string) (Token, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks.
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID.String(), s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

// CurrentUser resolves a token's user id to the public profile.
func (s *AuthService) CurrentUser(userID string) (domain.Profile, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return domain.Profile{}, errors.ErrInvalidCredentials
	}
	user, err := s.users.GetUserByID(id)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}
