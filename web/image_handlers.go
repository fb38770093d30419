package web

import (
	"io"
	"net/http"

	"ghostsnap/auth"
	"ghostsnap/domain"

	"github.com/samber/lo"
)

// maxUploadBytes caps image uploads at 10 MiB.
const maxUploadBytes = 10 << 20

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody("invalid multipart payload"))
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody("missing image field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody("reading upload failed"))
		return
	}

	img, err := s.imageService.Upload(callerID, data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toImageResponse(img))
}

func (s *Server) listImages(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	images, err := s.imageService.ListForOwner(callerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lo.Map(images,
		func(i domain.Image, _ int) imageResponse { return toImageResponse(i) }))
}
