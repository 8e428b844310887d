package services

import (
	"strings"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/geo"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// ClampLimit is the page size a list query actually uses for limit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// likePattern builds a case-insensitive substring pattern with LIKE
// metacharacters escaped.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}

// validateCoordinates accepts both-or-neither within WGS 84 ranges.
func validateCoordinates(lat, lon *float64) error {
	if lat == nil && lon == nil {
		return nil
	}
	if lat == nil || lon == nil {
		return apperr.Invalid("latitude and longitude must be provided together")
	}
	if !(geo.Point{Lat: *lat, Lon: *lon}).Valid() {
		return apperr.Invalid("coordinates out of range")
	}
	return nil
}

func requireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return apperr.Invalid("%s is required", field)
	}
	return nil
}
