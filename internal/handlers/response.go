package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/geo"
	mdlwr "reachmesh-bknd/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Response is the body of write endpoints and of every error.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(data)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

// writeError maps err to a status. Client errors carry the error text,
// server errors only the fallback message.
func writeError(w http.ResponseWriter, logr *zap.Logger, err error, fallback string) {
	status := apperr.Status(err)
	msg := fallback
	if status < http.StatusInternalServerError {
		msg = err.Error()
		logr.Warn(fallback, zap.Error(err), zap.Int("status", status))
	} else {
		logr.Error(fallback, zap.Error(err))
	}
	writeJSON(w, status, Response{Success: false, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Invalid("invalid request body")
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid %s", name)
	}
	return id, nil
}

func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Invalid("invalid %s", name)
	}
	return &id, nil
}

// currentUser returns the authenticated user id set by the auth middleware.
func currentUser(r *http.Request) (uuid.UUID, error) {
	id, ok := mdlwr.UserID(r.Context())
	if !ok {
		return uuid.Nil, apperr.ErrUnauthorized
	}
	return id, nil
}

func optionalUser(r *http.Request) *uuid.UUID {
	id, ok := mdlwr.UserID(r.Context())
	if !ok {
		return nil
	}
	return &id
}

func parsePagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 0 // service default
	}
	offset, err = strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func parseBool(input string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "1" || input == "true"
}

const coordinatesMsg = "lat and lon must be valid numbers given together"

// parseViewer reads lat/lon from the query. Both absent yields nil.
func parseViewer(r *http.Request) (*geo.Point, error) {
	q := r.URL.Query()
	latRaw, lonRaw := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))
	if latRaw == "" && lonRaw == "" {
		return nil, nil
	}
	lat, err1 := strconv.ParseFloat(latRaw, 64)
	lon, err2 := strconv.ParseFloat(lonRaw, 64)
	if err1 != nil || err2 != nil {
		return nil, apperr.Invalid(coordinatesMsg)
	}
	p := geo.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return nil, apperr.Invalid(coordinatesMsg)
	}
	return &p, nil
}
