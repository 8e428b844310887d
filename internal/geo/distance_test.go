package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKM(t *testing.T) {
	accra := Point{Lat: 5.6037, Lon: -0.1870}
	kumasi := Point{Lat: 6.6885, Lon: -1.6244}
	london := Point{Lat: 51.5074, Lon: -0.1278}

	assert.InDelta(t, 0, DistanceKM(accra, accra), 1e-9)
	assert.InDelta(t, 200, DistanceKM(accra, kumasi), 5)
	assert.InDelta(t, 5100, DistanceKM(accra, london), 30)
	assert.InDelta(t, DistanceKM(accra, london), DistanceKM(london, accra), 1e-9)

	// antipodes: half the circumference
	assert.InDelta(t, math.Pi*EarthRadiusKM, DistanceKM(Point{0, 0}, Point{0, 180}), 1e-6)
}

func TestOffsetRoundTrip(t *testing.T) {
	origin := Point{Lat: 5.6037, Lon: -0.1870}
	for _, d := range []float64{1, 49, 320, 1800, 7000, 15000} {
		p := Offset(origin, d, 73)
		require.True(t, p.Valid())
		assert.InDelta(t, d, DistanceKM(origin, p), d*1e-6+1e-6, "distance %v", d)
	}
}

func TestPointFrom(t *testing.T) {
	lat, lon := 10.0, 20.0
	bad := 200.0

	assert.Nil(t, PointFrom(nil, &lon))
	assert.Nil(t, PointFrom(&lat, nil))
	assert.Nil(t, PointFrom(&bad, &lon))
	assert.Equal(t, &Point{Lat: 10, Lon: 20}, PointFrom(&lat, &lon))
}

func TestDistanceBetween(t *testing.T) {
	p := &Point{Lat: 1, Lon: 1}
	assert.Nil(t, DistanceBetween(nil, p))
	assert.Nil(t, DistanceBetween(p, nil))

	d := DistanceBetween(p, p)
	require.NotNil(t, d)
	assert.InDelta(t, 0, *d, 1e-9)
}
