package cal

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

var (
	ErrNotEnoughPoints = errors.New("cal: at least two points are required")
	ErrDegenerate      = errors.New("cal: raw values do not vary")
	ErrInvalidPoint    = errors.New("cal: point is not a finite number")
)

// Point is a raw sensor reading paired with the reference instrument value
// recorded at the same moment.
type Point struct {
	Raw       float32 `yaml:"raw" json:"raw"`
	Reference float32 `yaml:"reference" json:"reference"`
}

// Fit computes the least squares slope and intercept mapping raw readings to
// reference values.
func Fit(points []Point) (Pair, error) {
	if len(points) < 2 {
		return Pair{}, ErrNotEnoughPoints
	}

	// Accumulate in float64.
	var sumX, sumY float64
	for i, p := range points {
		if !finite(p.Raw) || !finite(p.Reference) {
			return Pair{}, fmt.Errorf("point %d: %w", i, ErrInvalidPoint)
		}
		sumX += float64(p.Raw)
		sumY += float64(p.Reference)
	}

	n := float64(len(points))
	meanX := sumX / n
	meanY := sumY / n

	var sxx, sxy float64
	for _, p := range points {
		dx := float64(p.Raw) - meanX
		sxx += dx * dx
		sxy += dx * (float64(p.Reference) - meanY)
	}
	if sxx == 0 {
		return Pair{}, ErrDegenerate
	}

	slope := sxy / sxx
	return Pair{
		Slope:     float32(slope),
		Intercept: float32(meanY - slope*meanX),
	}, nil
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
