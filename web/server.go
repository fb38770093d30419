// Package web is the thin HTTP front over the messaging core. It owns JSON
// shapes, request validation and the sentinel-to-status mapping; every rule
// that matters lives in the services behind it.
package web

import (
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"

	"ghostsnap/auth"
	"ghostsnap/errors"
	"ghostsnap/observability"
	"ghostsnap/projection"
	"ghostsnap/services"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type Server struct {
	authService    services.IAuthService
	friendService  services.IFriendService
	imageService   services.IImageService
	messageService services.IMessageService
	conversations  *projection.Conversations
	monitor        *observability.Monitor
	log            *slog.Logger
	validate       *validator.Validate
	mediaDir       string
}

func NewServer(
	authService services.IAuthService,
	friendService services.IFriendService,
	imageService services.IImageService,
	messageService services.IMessageService,
	conversations *projection.Conversations,
	monitor *observability.Monitor,
	log *slog.Logger,
	mediaDir string,
) *Server {
	return &Server{
		authService:    authService,
		friendService:  friendService,
		imageService:   imageService,
		messageService: messageService,
		conversations:  conversations,
		monitor:        monitor,
		log:            log,
		validate:       validator.New(),
		mediaDir:       mediaDir,
	}
}

// Router wires the route table. The layout mirrors a conventional REST API:
// public auth endpoints, a bearer-protected /api subtree and the media
// file server for uploaded blobs.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.countRequests)

	r.HandleFunc("/api/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/api/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/api/stats", s.stats).Methods(http.MethodGet)
	r.PathPrefix("/media/").Handler(
		http.StripPrefix("/media/", http.FileServer(http.Dir(s.mediaDir))))

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware)

	api.HandleFunc("/user", s.currentUser).Methods(http.MethodGet)

	api.HandleFunc("/friends", s.listFriends).Methods(http.MethodGet)
	api.HandleFunc("/friends", s.addFriend).Methods(http.MethodPost)
	api.HandleFunc("/friends/{id}", s.removeFriend).Methods(http.MethodDelete)
	api.HandleFunc("/friends-list", s.friendsList).Methods(http.MethodGet)

	api.HandleFunc("/messages", s.allMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages", s.sendMessage).Methods(http.MethodPost)
	api.HandleFunc("/messages/search", s.searchMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages/{id}", s.getMessage).Methods(http.MethodGet)
	api.HandleFunc("/messages/{id}", s.updateMessage).Methods(http.MethodPut)
	api.HandleFunc("/messages/{id}", s.deleteMessage).Methods(http.MethodDelete)
	api.HandleFunc("/messages/{id}/mark-read", s.markRead).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}/mark-viewed", s.markViewed).Methods(http.MethodPost)

	api.HandleFunc("/conversations/{friendId}", s.conversation).Methods(http.MethodGet)
	api.HandleFunc("/chats", s.chats).Methods(http.MethodGet)

	api.HandleFunc("/images/upload", s.uploadImage).Methods(http.MethodPost)
	api.HandleFunc("/images", s.listImages).Methods(http.MethodGet)

	return r
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.monitor.IncrRequestCount()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.monitor.Snapshot())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.log.Error("Encoding response failed", "error", err)
		}
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return false
	}
	return true
}

// writeError maps domain sentinels onto HTTP statuses. The merged
// not-found/unauthorized sentinel intentionally comes out as a plain 404.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case goerrors.Is(err, errors.ErrNotFound),
		goerrors.Is(err, errors.ErrNotFoundOrUnauthorized):
		status = http.StatusNotFound
	case goerrors.Is(err, errors.ErrAlreadyFriends),
		goerrors.Is(err, errors.ErrUserAlreadyExists),
		goerrors.Is(err, errors.ErrHandleTaken):
		status = http.StatusConflict
	case goerrors.Is(err, errors.ErrSelfFriend),
		goerrors.Is(err, errors.ErrInvalidRecipient),
		goerrors.Is(err, errors.ErrImageNotOwned),
		goerrors.Is(err, errors.ErrNotAnImageMessage),
		goerrors.Is(err, errors.ErrInvalidPassword),
		goerrors.Is(err, errors.ErrEmptyLocator):
		status = http.StatusUnprocessableEntity
	case goerrors.Is(err, errors.ErrMessageExpired):
		status = http.StatusGone
	case goerrors.Is(err, errors.ErrStorageUnavailable):
		status = http.StatusBadGateway
	case goerrors.Is(err, errors.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		s.monitor.IncrErrorCount()
		s.log.Error("Request failed", "error", err)
		s.writeJSON(w, status, errorBody("internal error"))
		return
	}
	s.writeJSON(w, status, errorBody(err.Error()))
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
