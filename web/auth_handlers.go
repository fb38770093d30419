package web

import (
	"net/http"

	"ghostsnap/auth"
)

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Handle      string `json:"handle" validate:"required"`
	DisplayName string `json:"name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}
	token, err := s.authService.Register(req.Email, req.Password, req.Handle, req.DisplayName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	token, err := s.authService.Login(req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	profile, err := s.authService.CurrentUser(callerID.String())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toProfileResponse(profile))
}
