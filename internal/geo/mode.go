package geo

import (
	"errors"
	"math"
	"strings"
)

// Mode is the distance scope a viewer selects for the feed.
type Mode string

const (
	ModeLocal         Mode = "local"
	ModeRegional      Mode = "regional"
	ModeNational      Mode = "national"
	ModeInternational Mode = "international"
	ModeGlobal        Mode = "global"
)

var ErrInvalidMode = errors.New("invalid distance mode")

// Bounds is a distance interval in kilometers. Upper is always inclusive;
// Lower is exclusive unless LowerInclusive is set.
type Bounds struct {
	Lower          float64 `json:"lower_km"`
	Upper          float64 `json:"-"`
	LowerInclusive bool    `json:"lower_inclusive"`
}

// Contains reports whether d lies inside b.
func (b Bounds) Contains(d float64) bool {
	if b.LowerInclusive {
		if d < b.Lower {
			return false
		}
	} else if d <= b.Lower {
		return false
	}
	return d <= b.Upper
}

// Unbounded reports whether the interval has no upper limit.
func (b Bounds) Unbounded() bool {
	return math.IsInf(b.Upper, 1)
}

type modeInfo struct {
	label       string
	description string
	bounds      Bounds
}

var modeTable = map[Mode]modeInfo{
	ModeLocal:         {"Local", "0-50 km", Bounds{Lower: 0, Upper: 50, LowerInclusive: true}},
	ModeRegional:      {"Regional", "50-500 km", Bounds{Lower: 50, Upper: 500}},
	ModeNational:      {"National", "500-2500 km", Bounds{Lower: 500, Upper: 2500}},
	ModeInternational: {"International", "2500-10000 km", Bounds{Lower: 2500, Upper: 10000}},
	ModeGlobal:        {"Global", "10000+ km", Bounds{Lower: 10000, Upper: math.Inf(1)}},
}

// Modes returns every mode from nearest to farthest.
func Modes() []Mode {
	return []Mode{ModeLocal, ModeRegional, ModeNational, ModeInternational, ModeGlobal}
}

// ParseMode accepts a token case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", ErrInvalidMode
	}
	return m, nil
}

func (m Mode) Valid() bool {
	_, ok := modeTable[m]
	return ok
}

func (m Mode) Label() string       { return modeTable[m].label }
func (m Mode) Description() string { return modeTable[m].description }

// Bounds returns the interval for m. ok is false for unknown tokens.
func (m Mode) Bounds() (b Bounds, ok bool) {
	info, ok := modeTable[m]
	return info.bounds, ok
}

// Contains reports whether a distance (after normalization) belongs to m.
// Unknown modes contain nothing.
func (m Mode) Contains(distanceKM float64) bool {
	b, ok := m.Bounds()
	if !ok {
		return false
	}
	return b.Contains(NormalizeDistance(distanceKM))
}

// Classify returns the single mode whose interval holds the distance.
func Classify(distanceKM float64) Mode {
	d := NormalizeDistance(distanceKM)
	for _, m := range Modes() {
		if modeTable[m].bounds.Contains(d) {
			return m
		}
	}
	return ModeGlobal
}

// NormalizeDistance maps NaN and negative values to 0.
func NormalizeDistance(d float64) float64 {
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}
