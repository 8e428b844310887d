package geo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID int
	Km *float64
}

func (i item) Distance() *float64 { return i.Km }

func at(id int, d float64) item { return item{ID: id, Km: &d} }

func ids(items []item) []int {
	out := make([]int, 0, len(items))
	for _, i := range items {
		out = append(out, i.ID)
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		distance float64
		want     Mode
	}{
		{0, ModeLocal},
		{0.0001, ModeLocal},
		{49.99, ModeLocal},
		{50, ModeLocal},
		{50.0001, ModeRegional},
		{500, ModeRegional},
		{500.5, ModeNational},
		{2500, ModeNational},
		{2500.1, ModeInternational},
		{10000, ModeInternational},
		{10000.1, ModeGlobal},
		{20037, ModeGlobal},
		{math.Inf(1), ModeGlobal},
		{-3, ModeLocal},
		{math.NaN(), ModeLocal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.distance), "distance %v", tt.distance)
	}
}

func TestFilterByMode_Scenario(t *testing.T) {
	items := []item{at(1, 10), at(2, 60), at(3, 5000), at(4, 20000)}

	tests := []struct {
		mode Mode
		want []int
	}{
		{ModeLocal, []int{1}},
		{ModeRegional, []int{2}},
		{ModeNational, []int{}},
		{ModeInternational, []int{3}},
		{ModeGlobal, []int{4}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterByMode(items, tt.mode)))
		})
	}
}

func TestFilterByMode_MissingDistanceIsLocal(t *testing.T) {
	items := []item{{ID: 1}, at(2, 75)}

	assert.Equal(t, []int{1}, ids(FilterByMode(items, ModeLocal)))
	assert.Equal(t, []int{2}, ids(FilterByMode(items, ModeRegional)))
}

func TestFilterByMode_UnknownModePassesThrough(t *testing.T) {
	items := []item{at(1, 10), at(2, 600), at(3, 30000)}

	got := FilterByMode(items, Mode("galactic"))
	assert.Equal(t, []int{1, 2, 3}, ids(got))
	assert.Equal(t, items, FilterByMode(items, Mode("")))
}

func TestFilterByMode_EmptyInput(t *testing.T) {
	for _, m := range Modes() {
		assert.Empty(t, FilterByMode([]item{}, m))
		assert.Empty(t, FilterByMode[item](nil, m))
	}
}

func TestFilterByMode_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	items := make([]item, 0, 500)
	for i := 0; i < 500; i++ {
		// bias toward the interval edges
		edges := []float64{0, 50, 500, 2500, 10000}
		var d float64
		if i%5 == 0 {
			d = edges[rng.Intn(len(edges))]
		} else {
			d = rng.Float64() * 25000
		}
		items = append(items, at(i, d))
	}

	seen := make(map[int]int)
	for _, m := range Modes() {
		once := FilterByMode(items, m)
		twice := FilterByMode(once, m)
		assert.Equal(t, once, twice, "idempotent for %s", m)

		// order preserved
		prev := -1
		for _, it := range once {
			require.Greater(t, it.ID, prev)
			prev = it.ID
			seen[it.ID]++
		}
	}

	// partition: every item appears exactly once across the five modes
	require.Len(t, seen, len(items))
	for id, n := range seen {
		assert.Equal(t, 1, n, "item %d", id)
	}
}

func TestCountByMode(t *testing.T) {
	items := []item{at(1, 10), at(2, 60), {ID: 3}, at(4, 20000)}

	counts := CountByMode(items)
	assert.Equal(t, map[Mode]int{
		ModeLocal:         2,
		ModeRegional:      1,
		ModeNational:      0,
		ModeInternational: 0,
		ModeGlobal:        1,
	}, counts)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Regional ")
	require.NoError(t, err)
	assert.Equal(t, ModeRegional, m)

	_, err = ParseMode("nearby")
	assert.ErrorIs(t, err, ErrInvalidMode)

	assert.Equal(t, "Local", ModeLocal.Label())
	assert.Equal(t, "10000+ km", ModeGlobal.Description())
}

func TestBounds(t *testing.T) {
	b, ok := ModeGlobal.Bounds()
	require.True(t, ok)
	assert.True(t, b.Unbounded())

	_, ok = Mode("x").Bounds()
	assert.False(t, ok)
	assert.False(t, Mode("x").Contains(1))
	assert.True(t, ModeLocal.Contains(0))
	assert.False(t, ModeRegional.Contains(50))
}
