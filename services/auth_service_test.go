package services

import (
	"testing"
	"time"

	"ghostsnap/auth"
	"ghostsnap/errors"
	"ghostsnap/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) IAuthService {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAuthService(repositories.NewUserRepository(db), 24*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		svc := newAuthService(t)

		token, err := svc.Register("alice@example.com", "ComplexPass123!", "alice", "Alice")
		req.NoError(err)
		req.NotEmpty(token)

		claims, err := auth.ValidateToken(string(token))
		req.NoError(err)
		req.NotEmpty(claims.UserID)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)
		svc := newAuthService(t)

		token, err := svc.Register("alice@example.com", "simplebutlongenough", "alice", "Alice")
		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(token)
	})

	t.Run("should fail when the email is taken", func(t *testing.T) {
		req := require.New(t)
		svc := newAuthService(t)

		_, err := svc.Register("alice@example.com", "ComplexPass123!", "alice", "Alice")
		req.NoError(err)

		_, err = svc.Register("alice@example.com", "ComplexPass123!", "alice2", "Alice Two")
		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})

	t.Run("should fail when the handle is taken", func(t *testing.T) {
		req := require.New(t)
		svc := newAuthService(t)

		_, err := svc.Register("alice@example.com", "ComplexPass123!", "alice", "Alice")
		req.NoError(err)

		_, err = svc.Register("other@example.com", "ComplexPass123!", "alice", "Other")
		req.ErrorIs(err, errors.ErrHandleTaken)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		svc := newAuthService(t)

		_, err := svc.Register("alice@example.com", "ComplexPass123!", "alice", "Alice")
		req.NoError(err)

		token, err := svc.Login("alice@example.com", "ComplexPass123!")
		req.NoError(err)
		req.NotEmpty(token)

		claims, err := auth.ValidateToken(string(token))
		req.NoError(err)

		profile, err := svc.CurrentUser(claims.UserID)
		req.NoError(err)
		req.Equal("alice", profile.Handle)
	})

	t.Run("should return invalid credentials for a wrong password", func(t *testing.T) {
		req := require.New(t)
		svc := newAuthService(t)

		_, err := svc.Register("alice@example.com", "ComplexPass123!", "alice", "Alice")
		req.NoError(err)

		_, err = svc.Login("alice@example.com", "WrongPass123!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials for an unknown email", func(t *testing.T) {
		req := require.New(t)
		svc := newAuthService(t)

		_, err := svc.Login("nobody@example.com", "ComplexPass123!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
