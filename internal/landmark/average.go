package landmark

import (
	"fmt"
	"math"
)

// DefaultWeight blends start and end evenly.
const DefaultWeight = 0.5

// Average computes the elementwise mean of several aligned point sets.
// Coordinates are truncated toward zero.
func Average(sets []PointSet) (PointSet, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("average of zero point sets: %w", ErrInvalidInput)
	}

	n := len(sets[0])
	for i, s := range sets[1:] {
		if len(s) != n {
			return nil, fmt.Errorf("point set %d has %d points, want %d: %w", i+1, len(s), n, ErrInvalidInput)
		}
	}

	count := float64(len(sets))
	out := make(PointSet, n)
	for i := 0; i < n; i++ {
		var sumX, sumY float64
		for _, s := range sets {
			sumX += float64(s[i].X)
			sumY += float64(s[i].Y)
		}
		out[i] = Point{X: int(sumX / count), Y: int(sumY / count)}
	}
	return out, nil
}

// WeightedAverage blends two aligned point sets; percent is the weight
// given to start.
//
// percent <= 0 returns a copy of end and percent >= 1 returns a copy of
// start, so the endpoints carry no interpolation rounding.
func WeightedAverage(start, end PointSet, percent float64) (PointSet, error) {
	if len(start) != len(end) {
		return nil, fmt.Errorf("start has %d points, end has %d: %w", len(start), len(end), ErrInvalidInput)
	}
	if math.IsNaN(percent) {
		return nil, fmt.Errorf("weight is NaN: %w", ErrInvalidInput)
	}

	if percent <= 0 {
		return end.Clone(), nil
	}
	if percent >= 1 {
		return start.Clone(), nil
	}

	out := make(PointSet, len(start))
	for i := range start {
		out[i] = Point{
			X: int(float64(start[i].X)*percent + float64(end[i].X)*(1-percent)),
			Y: int(float64(start[i].Y)*percent + float64(end[i].Y)*(1-percent)),
		}
	}
	return out, nil
}
