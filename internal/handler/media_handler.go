package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"recell-store/internal/media"
	"recell-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxUploadSize caps product media uploads at 20 MiB.
const maxUploadSize = 20 << 20

var allowedMediaTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
}

// MediaHandler handles product media uploads. Binaries go to the object
// store; only the returned URL is persisted on the product.
type MediaHandler struct {
	store  media.Store
	logger zerolog.Logger
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(store media.Store, logger zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		store:  store,
		logger: logger.With().Str("handler", "media").Logger(),
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload handles POST /api/admin/media requests with a multipart "file" part.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "Upload too large or malformed.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "A file part named \"file\" is required.")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedMediaTypes[contentType]
	if !ok {
		// Fall back to the filename extension for clients that send
		// application/octet-stream.
		ext = strings.ToLower(filepath.Ext(header.Filename))
		if _, found := extContentType(ext); !found {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "Unsupported media type.")
			return
		}
		contentType, _ = extContentType(ext)
	}

	key := fmt.Sprintf("products/%s%s", uuid.New(), ext)
	url, err := h.store.Upload(r.Context(), key, contentType, file)
	if err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("media upload failed")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "Upload failed. Please try again.")
		return
	}

	h.logger.Info().Str("key", key).Str("url", url).Msg("media uploaded")

	writeJSON(w, http.StatusCreated, uploadResponse{URL: url})
}

func extContentType(ext string) (string, bool) {
	for ct, e := range allowedMediaTypes {
		if e == ext {
			return ct, true
		}
	}
	if ext == ".jpeg" {
		return "image/jpeg", true
	}
	return "", false
}
