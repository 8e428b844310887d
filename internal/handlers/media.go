package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"reachmesh-bknd/internal/storage"

	"go.uber.org/zap"
)

type MediaHandler struct {
	uploader storage.ImageUploader
	maxBytes int64
	logr     *zap.Logger
}

// NewMediaHandler returns a handler that answers 503 when uploader is nil.
func NewMediaHandler(uploader storage.ImageUploader, maxBytes int64, logr *zap.Logger) *MediaHandler {
	return &MediaHandler{uploader: uploader, maxBytes: maxBytes, logr: logr}
}

// UploadImage handles POST /media/images (multipart: file, folder)
func (h *MediaHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	if h.uploader == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{Success: false, Message: "Image storage is not configured"})
		return
	}

	// allow some room for the multipart envelope
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		h.logr.Warn("failed to parse upload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "Invalid multipart form or file too large"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "file is required"})
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, Response{Success: false, Message: "File too large"})
		return
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeError(w, h.logr, err, "Failed to read upload")
		return
	}
	if !strings.HasPrefix(http.DetectContentType(sniff[:n]), "image/") {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "File is not an image"})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, h.logr, err, "Failed to read upload")
		return
	}

	folder := strings.TrimSpace(r.FormValue("folder"))
	res, err := h.uploader.UploadImage(r.Context(), file, header.Size, folder, userID.String(), header.Filename)
	if errors.Is(err, storage.ErrUnknownFolder) || errors.Is(err, storage.ErrUnsupportedType) {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: err.Error()})
		return
	}
	if err != nil {
		writeError(w, h.logr, err, "Failed to upload image")
		return
	}

	h.logr.Info("image uploaded",
		zap.String("user_id", userID.String()),
		zap.String("key", res.Key),
		zap.Int64("size", res.Size))

	writeData(w, http.StatusCreated, res)
}
