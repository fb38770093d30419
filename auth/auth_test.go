package auth

import (
	"testing"
	"time"

	"ghostsnap/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Hash_And_Compare_Password(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("Sup3r$ecretPass!")
	req.NoError(err)
	req.Contains(hash, "$argon2id$")

	match, err := ComparePassword("Sup3r$ecretPass!", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrong password", hash)
	req.NoError(err)
	req.False(match)
}

func Test_Hashes_Are_Salted(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("Sup3r$ecretPass!")
	req.NoError(err)
	second, err := HashPassword("Sup3r$ecretPass!")
	req.NoError(err)
	req.NotEqual(first, second)
}

func Test_Generate_And_Validate_Token(t *testing.T) {
	req := require.New(t)
	userID := uuid.New().String()

	token, err := GenerateToken(userID, 1*time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal(userID, claims.UserID)
}

func Test_Validate_Garbage_Token(t *testing.T) {
	req := require.New(t)

	_, err := ValidateToken("not.a.token")
	req.Error(err)
}

func Test_Validate_Register(t *testing.T) {
	req := require.New(t)

	valid := RegisterRequest{
		Email:       "alice@example.com",
		Password:    "Sup3r$ecretPass!",
		Handle:      "alice",
		DisplayName: "Alice",
	}
	req.NoError(ValidateRegister(valid))

	tooSimple := valid
	tooSimple.Password = "alllowercasebutlong"
	req.ErrorIs(ValidateRegister(tooSimple), errors.ErrInvalidPassword)

	tooShort := valid
	tooShort.Password = "Ab1!"
	req.Error(ValidateRegister(tooShort))

	badHandle := valid
	badHandle.Handle = "not a handle"
	req.Error(ValidateRegister(badHandle))
}
