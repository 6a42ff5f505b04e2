package feature

import (
	"math"

	"github.com/edulens/screening/internal/domain/trace"
)

// PathLength sums the euclidean distances between consecutive points.
func PathLength(pts []trace.Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += distance(pts[i-1], pts[i])
	}
	return total
}

// TurnAngles returns the absolute angles between consecutive path segments,
// each in [0, pi]. Degenerate zero-length segments are skipped.
func TurnAngles(pts []trace.Point) []float64 {
	if len(pts) < 3 {
		return nil
	}
	angles := make([]float64, 0, len(pts)-2)
	for i := 2; i < len(pts); i++ {
		v1x, v1y := pts[i-1].X-pts[i-2].X, pts[i-1].Y-pts[i-2].Y
		v2x, v2y := pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y
		mag1 := math.Hypot(v1x, v1y)
		mag2 := math.Hypot(v2x, v2y)
		if mag1 == 0 || mag2 == 0 {
			continue
		}
		cos := Clip((v1x*v2x+v1y*v2y)/(mag1*mag2), -1, 1)
		angles = append(angles, math.Acos(cos))
	}
	return angles
}

// TurnSmoothness measures how gently turn angles vary along a set of angle
// samples: one minus their variance scaled by a right angle, floored at zero.
func TurnSmoothness(angles []float64) float64 {
	if len(angles) == 0 {
		return Neutral
	}
	return math.Max(0, 1-Variance(angles)/(math.Pi/2))
}

// LineDeviation fits a least-squares line through the path and returns the
// mean absolute residual normalized by the vertical extent. Straight paths
// approach zero. Paths with fewer than three points report false.
func LineDeviation(pts []trace.Point) (float64, bool) {
	if len(pts) < 3 {
		return 0, false
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	minY, maxY := pts[0].Y, pts[0].Y
	for i, p := range pts {
		xs[i] = p.X
		ys[i] = p.Y
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	var dev float64
	slope, intercept, ok := fitLine(xs, ys)
	if ok {
		sum := 0.0
		for i := range xs {
			sum += math.Abs(ys[i] - (slope*xs[i] + intercept))
		}
		dev = sum / float64(len(xs))
	} else {
		// Vertical path, spread of y stands in for the residual.
		dev = Std(ys, 0)
	}
	span := maxY - minY
	if span < 1 {
		span = 1
	}
	return dev / span, true
}

// SecondDiffVariance measures tremor as the variance of the path's second
// differences, averaged over both axes. Paths with fewer than five points
// report false.
func SecondDiffVariance(pts []trace.Point) (float64, bool) {
	if len(pts) < 5 {
		return 0, false
	}
	ddx := make([]float64, 0, len(pts)-2)
	ddy := make([]float64, 0, len(pts)-2)
	for i := 2; i < len(pts); i++ {
		ddx = append(ddx, pts[i].X-2*pts[i-1].X+pts[i-2].X)
		ddy = append(ddy, pts[i].Y-2*pts[i-1].Y+pts[i-2].Y)
	}
	return (Variance(ddx) + Variance(ddy)) / 2, true
}

// BoundsDiagonal returns the diagonal of the path's bounding box.
func BoundsDiagonal(pts []trace.Point) float64 {
	if len(pts) == 0 {
		return 0
	}
	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return math.Hypot(maxX-minX, maxY-minY)
}

// StrokeGap returns the distance from the end of one stroke to the start of
// the next, and false when either path is empty.
func StrokeGap(a, b trace.Stroke) (float64, bool) {
	if len(a.Points) == 0 || len(b.Points) == 0 {
		return 0, false
	}
	return distance(a.Points[len(a.Points)-1], b.Points[0]), true
}

// SegmentDistances returns the euclidean length of each path segment.
func SegmentDistances(pts []trace.Point) []float64 {
	if len(pts) < 2 {
		return nil
	}
	out := make([]float64, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		out = append(out, distance(pts[i-1], pts[i]))
	}
	return out
}

func distance(a, b trace.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func fitLine(xs, ys []float64) (slope, intercept float64, ok bool) {
	n := float64(len(xs))
	if n < 2 {
		return 0, 0, false
	}
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return 0, 0, false
	}
	slope = (n*sumXY - sumX*sumY) / den
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}
