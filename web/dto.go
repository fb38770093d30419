package web

import (
	"time"

	"ghostsnap/domain"
	"ghostsnap/projection"

	"github.com/samber/lo"
)

type profileResponse struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"name"`
}

type messageResponse struct {
	ID              string     `json:"id"`
	SenderID        string     `json:"sender_id"`
	RecipientID     string     `json:"recipient_id"`
	Content         string     `json:"content"`
	Kind            string     `json:"type"`
	ImageID         *string    `json:"image_id,omitempty"`
	IsRead          bool       `json:"is_read"`
	Status          string     `json:"status"`
	ImgRevealed     bool       `json:"img_viewed"`
	RevealExpiresAt *time.Time `json:"expiry_timestamp,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type friendshipResponse struct {
	ID           string          `json:"id"`
	FriendUserID string          `json:"friend_user_id"`
	Friend       profileResponse `json:"friend"`
	CreatedAt    time.Time       `json:"created_at"`
}

type imageResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size"`
	Width     *int      `json:"width,omitempty"`
	Height    *int      `json:"height,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type previewResponse struct {
	Friend      profileResponse `json:"friend"`
	LastMessage messageResponse `json:"last_message"`
}

func toProfileResponse(p domain.Profile) profileResponse {
	return profileResponse{ID: p.ID.String(), Handle: p.Handle, DisplayName: p.DisplayName}
}

func toMessageResponse(m domain.Message) messageResponse {
	resp := messageResponse{
		ID:              m.ID.String(),
		SenderID:        m.SenderID.String(),
		RecipientID:     m.RecipientID.String(),
		Content:         m.Content,
		Kind:            string(m.Kind),
		IsRead:          m.IsRead,
		Status:          string(m.Status),
		ImgRevealed:     m.ImgRevealed,
		RevealExpiresAt: m.RevealExpiresAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.ImageID != nil {
		id := m.ImageID.String()
		resp.ImageID = &id
	}
	return resp
}

func toMessageResponses(messages []domain.Message) []messageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return toMessageResponse(m)
	})
}

func toFriendshipResponse(f domain.FriendshipWithProfile) friendshipResponse {
	return friendshipResponse{
		ID:           f.ID.String(),
		FriendUserID: f.FriendUserID.String(),
		Friend:       toProfileResponse(f.Friend),
		CreatedAt:    f.CreatedAt,
	}
}

func toImageResponse(i domain.Image) imageResponse {
	return imageResponse{
		ID:        i.ID.String(),
		URL:       i.URL,
		MimeType:  i.MimeType,
		SizeBytes: i.SizeBytes,
		Width:     i.Width,
		Height:    i.Height,
		CreatedAt: i.CreatedAt,
	}
}

func toPreviewResponse(p projection.Preview) previewResponse {
	return previewResponse{
		Friend:      toProfileResponse(p.Friend),
		LastMessage: toMessageResponse(p.LastMessage),
	}
}
