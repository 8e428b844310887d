package handlers

import (
	"net/http"
	"strings"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/geo"
	"reachmesh-bknd/internal/models"
	"reachmesh-bknd/internal/services"
	"reachmesh-bknd/internal/utils"

	"go.uber.org/zap"
)

type FeedHandler struct {
	service *services.FeedService
	stats   *services.StatsService
	logr    *zap.Logger
}

func NewFeedHandler(svc *services.FeedService, stats *services.StatsService, logr *zap.Logger) *FeedHandler {
	return &FeedHandler{service: svc, stats: stats, logr: logr}
}

// listingRequest reads q, type, mode, lat/lon, limit and offset. The mode
// token is only lowercased; unknown tokens are left to the filter.
func listingRequest(r *http.Request, feed *services.FeedService) (models.ListingRequest, error) {
	q := r.URL.Query()
	limit, offset := parsePagination(r)

	typeIDs, err := utils.ParseUUIDList(q, "type")
	if err != nil {
		return models.ListingRequest{}, apperr.Invalid("%s", err.Error())
	}

	viewer, err := parseViewer(r)
	if err != nil {
		return models.ListingRequest{}, err
	}

	return models.ListingRequest{
		ListingQueryParams: models.ListingQueryParams{
			Query:   strings.TrimSpace(q.Get("q")),
			TypeIDs: typeIDs,
			Limit:   limit,
			Offset:  offset,
		},
		Mode:   geo.Mode(strings.ToLower(strings.TrimSpace(q.Get("mode")))),
		Viewer: feed.ResolveViewer(r.Context(), viewer, optionalUser(r)),
	}, nil
}

// GetFeed handles GET /feed
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	req, err := listingRequest(r, h.service)
	if err != nil {
		writeError(w, h.logr, err, "Invalid feed query")
		return
	}

	res, err := h.service.Feed(r.Context(), req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to load feed")
		return
	}

	h.logr.Debug("feed served",
		zap.String("mode", string(req.Mode)),
		zap.Bool("viewer_known", req.Viewer != nil),
		zap.Int("businesses", len(res.Businesses)),
		zap.Int("professionals", len(res.Professionals)))

	writeData(w, http.StatusOK, res)
}

// Search handles GET /search: professionals matching q.
func (h *FeedHandler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := listingRequest(r, h.service)
	if err != nil {
		writeError(w, h.logr, err, "Invalid search query")
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "q is required"})
		return
	}

	items, counts, err := h.service.Professionals(r.Context(), req)
	if err != nil {
		writeError(w, h.logr, err, "Search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
		"count":   len(items),
		"counts":  counts,
	})
}

// GetStats handles GET /stats: totals per type and per mode for the viewer,
// over every matching listing. limit and offset are accepted but ignored.
func (h *FeedHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	req, err := listingRequest(r, h.service)
	if err != nil {
		writeError(w, h.logr, err, "Invalid stats query")
		return
	}

	stats, err := h.stats.Stats(r.Context(), req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to retrieve statistics")
		return
	}
	writeData(w, http.StatusOK, stats)
}

type modeView struct {
	Mode        geo.Mode `json:"mode"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	LowerKM     float64  `json:"lower_km"`
	UpperKM     *float64 `json:"upper_km"` // null when unbounded
}

// ListModes handles GET /modes
func (h *FeedHandler) ListModes(w http.ResponseWriter, r *http.Request) {
	modes := geo.Modes()
	out := make([]modeView, 0, len(modes))
	for _, m := range modes {
		b, _ := m.Bounds()
		v := modeView{Mode: m, Label: m.Label(), Description: m.Description(), LowerKM: b.Lower}
		if !b.Unbounded() {
			upper := b.Upper
			v.UpperKM = &upper
		}
		out = append(out, v)
	}
	writeData(w, http.StatusOK, out)
}
