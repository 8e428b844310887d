package handlers

import (
	"net/http"

	"reachmesh-bknd/internal/geo"
	"reachmesh-bknd/internal/models"
	"reachmesh-bknd/internal/services"

	"go.uber.org/zap"
)

type BusinessHandler struct {
	service  *services.BusinessService
	products *services.ProductService
	feed     *services.FeedService
	logr     *zap.Logger
}

func NewBusinessHandler(svc *services.BusinessService, products *services.ProductService, feed *services.FeedService, logr *zap.Logger) *BusinessHandler {
	return &BusinessHandler{service: svc, products: products, feed: feed, logr: logr}
}

// ListBusinesses handles GET /businesses
func (h *BusinessHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	req, err := listingRequest(r, h.feed)
	if err != nil {
		writeError(w, h.logr, err, "Invalid query")
		return
	}
	items, counts, err := h.feed.Businesses(r.Context(), req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch businesses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
		"count":   len(items),
		"counts":  counts,
	})
}

// ListMine handles GET /businesses/mine
func (h *BusinessHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	limit, offset := parsePagination(r)
	items, err := h.service.ListBusinesses(r.Context(), models.ListingQueryParams{UserID: &userID, Limit: limit, Offset: offset})
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch businesses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}

// GetBusiness handles GET /businesses/{id}. The distance is included when
// the viewer location is known.
func (h *BusinessHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid business ID")
		return
	}
	viewer, err := parseViewer(r)
	if err != nil {
		writeError(w, h.logr, err, "Invalid coordinates")
		return
	}
	b, err := h.service.GetBusiness(r.Context(), id)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch business")
		return
	}
	viewer = h.feed.ResolveViewer(r.Context(), viewer, optionalUser(r))
	writeData(w, http.StatusOK, models.BusinessListing{Business: b, DistanceKM: geo.DistanceBetween(viewer, b.Location())})
}

// CreateBusiness handles POST /businesses
func (h *BusinessHandler) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	var req models.BusinessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr, err, "Invalid request body")
		return
	}
	b, err := h.service.CreateBusiness(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to create business")
		return
	}
	h.logr.Info("business created", zap.String("id", b.ID.String()), zap.String("user_id", userID.String()))
	writeData(w, http.StatusCreated, b)
}

// UpdateBusiness handles PUT /businesses/{id}
func (h *BusinessHandler) UpdateBusiness(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid business ID")
		return
	}
	var req models.BusinessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr, err, "Invalid request body")
		return
	}
	b, err := h.service.UpdateBusiness(r.Context(), userID, id, req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to update business")
		return
	}
	writeData(w, http.StatusOK, b)
}

// DeleteBusiness handles DELETE /businesses/{id}
func (h *BusinessHandler) DeleteBusiness(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid business ID")
		return
	}
	if err := h.service.DeleteBusiness(r.Context(), userID, id); err != nil {
		writeError(w, h.logr, err, "Failed to delete business")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Business deleted"})
}

// ListProducts handles GET /businesses/{id}/products
func (h *BusinessHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid business ID")
		return
	}
	categoryID, err := queryUUID(r, "category_id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid category")
		return
	}
	items, err := h.products.ListProducts(r.Context(), id, categoryID)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch products")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}

// CreateProduct handles POST /businesses/{id}/products
func (h *BusinessHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid business ID")
		return
	}
	var req models.ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr, err, "Invalid request body")
		return
	}
	p, err := h.products.CreateProduct(r.Context(), userID, id, req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to create product")
		return
	}
	writeData(w, http.StatusCreated, p)
}

// DeleteProduct handles DELETE /businesses/{id}/products/{productID}
func (h *BusinessHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid business ID")
		return
	}
	productID, err := pathUUID(r, "productID")
	if err != nil {
		writeError(w, h.logr, err, "Invalid product ID")
		return
	}
	if err := h.products.DeleteProduct(r.Context(), userID, id, productID); err != nil {
		writeError(w, h.logr, err, "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Product deleted"})
}

// ListCategories handles GET /businesses/{id}/categories
func (h *BusinessHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid business ID")
		return
	}
	items, err := h.products.ListCategories(r.Context(), id)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch categories")
		return
	}
	writeData(w, http.StatusOK, items)
}

type categoryReq struct {
	Name string `json:"name"`
}

// CreateCategory handles POST /businesses/{id}/categories
func (h *BusinessHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid business ID")
		return
	}
	var req categoryReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr, err, "Invalid request body")
		return
	}
	c, err := h.products.CreateCategory(r.Context(), userID, id, req.Name)
	if err != nil {
		writeError(w, h.logr, err, "Failed to create category")
		return
	}
	writeData(w, http.StatusCreated, c)
}
