package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Censor_Blocked_Word(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"spam"}, '*')
	req.NoError(err)

	sanitized, found := moderator.Censor("pure spam here")
	req.Equal("pure **** here", sanitized)
	req.Len(found, 1)
	req.Equal("spam", found[0])
}

func Test_Censor_Leet_Speak(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"spam"}, '*')
	req.NoError(err)

	sanitized, found := moderator.Censor("buy 5p4m now")
	req.NotContains(sanitized, "5p4m")
	req.Len(found, 1)
}

func Test_Censor_Punctuated_Evasion(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"spam"}, '*')
	req.NoError(err)

	sanitized, found := moderator.Censor("s.p-a.m alert")
	req.NotContains(sanitized, "s.p-a.m")
	req.Len(found, 1)
}

func Test_Censor_Clean_Content(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"spam"}, '*')
	req.NoError(err)

	original := "a perfectly fine message"
	sanitized, found := moderator.Censor(original)
	req.Equal(original, sanitized)
	req.Empty(found)
}

func Test_Detect_Language(t *testing.T) {
	req := require.New(t)
	req.Equal("en", DetectLanguage("the quick brown fox jumps over the lazy dog"))
	req.Equal("fr", DetectLanguage("le renard brun rapide saute par-dessus le chien paresseux"))
}
