package web

import (
	"net/http"
	"strconv"

	"ghostsnap/auth"
	"ghostsnap/domain"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type sendMessageRequest struct {
	RecipientID string  `json:"recipient_id" validate:"required,uuid"`
	Content     string  `json:"content"`
	Kind        string  `json:"type" validate:"omitempty,oneof=text image"`
	ImageID     *string `json:"image_id" validate:"omitempty,uuid"`
}

type updateMessageRequest struct {
	Content *string `json:"content"`
	Status  *string `json:"status" validate:"omitempty,oneof=sent delivered read expired"`
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	var req sendMessageRequest
	if !s.decode(w, r, &req) {
		return
	}
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody("invalid recipient_id"))
		return
	}

	kind := domain.KindText
	if req.Kind == string(domain.KindImage) {
		kind = domain.KindImage
	}
	var imageID *uuid.UUID
	if req.ImageID != nil {
		parsed, err := uuid.Parse(*req.ImageID)
		if err != nil {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorBody("invalid image_id"))
			return
		}
		imageID = &parsed
	}

	message, err := s.messageService.Send(r.Context(), callerID, recipientID, req.Content, kind, imageID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.monitor.IncrMessagesSent()
	s.writeJSON(w, http.StatusCreated, toMessageResponse(message))
}

func (s *Server) getMessage(w http.ResponseWriter, r *http.Request) {
	callerID, messageID, ok := s.messageCall(w, r)
	if !ok {
		return
	}
	message, err := s.messageService.Get(callerID, messageID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if message.Status == domain.StatusExpired {
		s.monitor.IncrExpiredServed()
	}
	s.writeJSON(w, http.StatusOK, toMessageResponse(message))
}

func (s *Server) updateMessage(w http.ResponseWriter, r *http.Request) {
	callerID, messageID, ok := s.messageCall(w, r)
	if !ok {
		return
	}
	var req updateMessageRequest
	if !s.decode(w, r, &req) {
		return
	}
	var status *domain.Status
	if req.Status != nil {
		parsed := domain.Status(*req.Status)
		status = &parsed
	}
	message, err := s.messageService.UpdateContent(callerID, messageID, req.Content, status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMessageResponse(message))
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	callerID, messageID, ok := s.messageCall(w, r)
	if !ok {
		return
	}
	if err := s.messageService.Delete(callerID, messageID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "message deleted"})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	callerID, messageID, ok := s.messageCall(w, r)
	if !ok {
		return
	}
	message, err := s.messageService.MarkRead(callerID, messageID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMessageResponse(message))
}

func (s *Server) markViewed(w http.ResponseWriter, r *http.Request) {
	callerID, messageID, ok := s.messageCall(w, r)
	if !ok {
		return
	}
	message, err := s.messageService.RevealImage(callerID, messageID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.monitor.IncrRevealsServed()
	s.writeJSON(w, http.StatusOK, toMessageResponse(message))
}

func (s *Server) allMessages(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	messages, next, err := s.conversations.AllMessages(callerID, cursorParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writePage(w, messages, next)
}

func (s *Server) conversation(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	friendID, err := uuid.Parse(mux.Vars(r)["friendId"])
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	messages, next, err := s.conversations.Conversation(callerID, friendID, cursorParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writePage(w, messages, next)
}

func (s *Server) chats(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	previews, err := s.conversations.Previews(callerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]previewResponse, 0, len(previews))
	for _, p := range previews {
		out = append(out, toPreviewResponse(p))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) searchMessages(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	terms := r.URL.Query().Get("q")
	if terms == "" {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody("missing query parameter q"))
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	messages, err := s.messageService.Search(r.Context(), callerID, terms, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

// messageCall extracts the caller and the {id} path variable shared by the
// per-message routes.
func (s *Server) messageCall(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return uuid.Nil, uuid.Nil, false
	}
	messageID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return uuid.Nil, uuid.Nil, false
	}
	return callerID, messageID, true
}

func (s *Server) writePage(w http.ResponseWriter, messages []domain.Message, next *string) {
	body := struct {
		Messages   []messageResponse `json:"messages"`
		NextCursor *string           `json:"next_cursor,omitempty"`
	}{
		Messages:   toMessageResponses(messages),
		NextCursor: next,
	}
	s.writeJSON(w, http.StatusOK, body)
}

func cursorParam(r *http.Request) *string {
	raw := r.URL.Query().Get("cursor")
	if raw == "" {
		return nil
	}
	return &raw
}
