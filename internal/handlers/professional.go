package handlers

import (
	"net/http"

	"reachmesh-bknd/internal/geo"
	"reachmesh-bknd/internal/models"
	"reachmesh-bknd/internal/services"

	"go.uber.org/zap"
)

type ProfessionalHandler struct {
	service *services.ProfessionalService
	feed    *services.FeedService
	logr    *zap.Logger
}

func NewProfessionalHandler(svc *services.ProfessionalService, feed *services.FeedService, logr *zap.Logger) *ProfessionalHandler {
	return &ProfessionalHandler{service: svc, feed: feed, logr: logr}
}

// ListProfessionals handles GET /professionals
func (h *ProfessionalHandler) ListProfessionals(w http.ResponseWriter, r *http.Request) {
	req, err := listingRequest(r, h.feed)
	if err != nil {
		writeError(w, h.logr, err, "Invalid query")
		return
	}
	items, counts, err := h.feed.Professionals(r.Context(), req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch professionals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
		"count":   len(items),
		"counts":  counts,
	})
}

// ListMine handles GET /professionals/mine
func (h *ProfessionalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	limit, offset := parsePagination(r)
	items, err := h.service.ListProfessionals(r.Context(), models.ListingQueryParams{UserID: &userID, Limit: limit, Offset: offset})
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch professionals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}

// GetProfessional handles GET /professionals/{id}
func (h *ProfessionalHandler) GetProfessional(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid professional ID")
		return
	}
	viewer, err := parseViewer(r)
	if err != nil {
		writeError(w, h.logr, err, "Invalid coordinates")
		return
	}
	p, err := h.service.GetProfessional(r.Context(), id)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch professional")
		return
	}
	viewer = h.feed.ResolveViewer(r.Context(), viewer, optionalUser(r))
	writeData(w, http.StatusOK, models.ProfessionalListing{Professional: p, DistanceKM: geo.DistanceBetween(viewer, p.Location())})
}

// CreateProfessional handles POST /professionals
func (h *ProfessionalHandler) CreateProfessional(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	var req models.ProfessionalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr, err, "Invalid request body")
		return
	}
	p, err := h.service.CreateProfessional(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to create professional")
		return
	}
	h.logr.Info("professional created", zap.String("id", p.ID.String()), zap.String("user_id", userID.String()))
	writeData(w, http.StatusCreated, p)
}

// UpdateProfessional handles PUT /professionals/{id}
func (h *ProfessionalHandler) UpdateProfessional(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid professional ID")
		return
	}
	var req models.ProfessionalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr, err, "Invalid request body")
		return
	}
	p, err := h.service.UpdateProfessional(r.Context(), userID, id, req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to update professional")
		return
	}
	writeData(w, http.StatusOK, p)
}

// DeleteProfessional handles DELETE /professionals/{id}
func (h *ProfessionalHandler) DeleteProfessional(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid professional ID")
		return
	}
	if err := h.service.DeleteProfessional(r.Context(), userID, id); err != nil {
		writeError(w, h.logr, err, "Failed to delete professional")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Professional deleted"})
}
