package web

import (
	"net/http"
	"strconv"

	"ghostsnap/auth"
	"ghostsnap/domain"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

type addFriendRequest struct {
	FriendUserID string `json:"friend_user_id" validate:"required,uuid"`
}

func (s *Server) listFriends(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	friends, err := s.friendService.ListFriends(callerID, perPage(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lo.Map(friends,
		func(f domain.FriendshipWithProfile, _ int) friendshipResponse { return toFriendshipResponse(f) }))
}

// friendsList is the flat variant: just the friends' public profiles.
func (s *Server) friendsList(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	friends, err := s.friendService.ListFriends(callerID, perPage(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lo.Map(friends,
		func(f domain.FriendshipWithProfile, _ int) profileResponse { return toProfileResponse(f.Friend) }))
}

func (s *Server) addFriend(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	var req addFriendRequest
	if !s.decode(w, r, &req) {
		return
	}
	friendUserID, err := uuid.Parse(req.FriendUserID)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody("invalid friend_user_id"))
		return
	}
	friendship, err := s.friendService.AddFriend(callerID, friendUserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{
		"id":             friendship.ID.String(),
		"friend_user_id": friendship.FriendUserID.String(),
	})
}

func (s *Server) removeFriend(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	friendshipID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	if err := s.friendService.RemoveFriend(callerID, friendshipID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "friend removed"})
}

// perPage parses the optional page-size query parameter; nil means the full
// unpaginated set.
func perPage(r *http.Request) *int {
	raw := r.URL.Query().Get("per_page")
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
