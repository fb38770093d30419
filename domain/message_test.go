package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_EffectiveStatus_Derives_Expiry(t *testing.T) {
	req := require.New(t)
	revealedAt := time.Now().UTC()
	expiry := revealedAt.Add(10 * time.Second)
	message := Message{
		Kind:            KindImage,
		Status:          StatusRead,
		ImgRevealed:     true,
		RevealExpiresAt: &expiry,
	}

	req.Equal(StatusRead, message.EffectiveStatus(revealedAt))
	req.Equal(StatusRead, message.EffectiveStatus(expiry))
	req.Equal(StatusExpired, message.EffectiveStatus(expiry.Add(1*time.Nanosecond)))
	req.True(message.Expired(expiry.Add(1*time.Minute)))
}

func Test_EffectiveStatus_Ignores_Unrevealed_Images(t *testing.T) {
	req := require.New(t)
	message := Message{Kind: KindImage, Status: StatusSent}

	req.Equal(StatusSent, message.EffectiveStatus(time.Now().Add(24*time.Hour)))
}

func Test_EffectiveStatus_Never_Expires_Text(t *testing.T) {
	req := require.New(t)
	expiry := time.Now().UTC()
	message := Message{
		Kind:            KindText,
		Status:          StatusRead,
		ImgRevealed:     true,
		RevealExpiresAt: &expiry,
	}

	req.Equal(StatusRead, message.EffectiveStatus(expiry.Add(1*time.Hour)))
}

func Test_PairKey_Is_Order_Independent(t *testing.T) {
	req := require.New(t)
	a, b := uuid.New(), uuid.New()

	req.Equal(PairKey(a, b), PairKey(b, a))
	req.NotEqual(PairKey(a, b), PairKey(a, uuid.New()))
}

func Test_Counterpart(t *testing.T) {
	req := require.New(t)
	alice, bob := uuid.New(), uuid.New()
	message := Message{SenderID: alice, RecipientID: bob}

	req.Equal(bob, message.Counterpart(alice))
	req.Equal(alice, message.Counterpart(bob))
	req.True(message.Involves(alice))
	req.False(message.Involves(uuid.New()))
}
