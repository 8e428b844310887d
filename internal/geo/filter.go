package geo

// Located is anything the mode filter can place. A nil distance means the
// distance is unknown and is treated as 0.
type Located interface {
	Distance() *float64
}

func distanceOf(item Located) float64 {
	d := item.Distance()
	if d == nil {
		return 0
	}
	return NormalizeDistance(*d)
}

// FilterByMode keeps the items whose distance falls in mode's interval,
// preserving order. An unrecognized mode returns items unchanged.
func FilterByMode[T Located](items []T, mode Mode) []T {
	b, ok := mode.Bounds()
	if !ok {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if b.Contains(distanceOf(item)) {
			out = append(out, item)
		}
	}
	return out
}

// CountByMode tallies items per mode. Every mode is present in the result.
func CountByMode[T Located](items []T) map[Mode]int {
	counts := make(map[Mode]int, len(modeTable))
	for _, m := range Modes() {
		counts[m] = 0
	}
	for _, item := range items {
		counts[Classify(distanceOf(item))]++
	}
	return counts
}
