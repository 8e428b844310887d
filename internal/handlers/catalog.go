package handlers

import (
	"net/http"

	"reachmesh-bknd/internal/services"

	"go.uber.org/zap"
)

type CatalogHandler struct {
	service *services.CatalogService
	logr    *zap.Logger
}

func NewCatalogHandler(svc *services.CatalogService, logr *zap.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logr: logr}
}

func (h *CatalogHandler) BusinessTypes(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.BusinessTypes(r.Context())
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch business types")
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *CatalogHandler) ProfessionTypes(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ProfessionTypes(r.Context())
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch profession types")
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *CatalogHandler) Plans(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Plans(r.Context())
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch plans")
		return
	}
	writeData(w, http.StatusOK, items)
}
