package feature

import "math"

// Clip01 clamps x to the unit interval.
func Clip01(x float64) float64 {
	return Clip(x, 0, 1)
}

// Clip clamps x to [lo, hi].
func Clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Normalize maps x from [min, max] onto [0, 1], clamped.
func Normalize(x, min, max float64) float64 {
	if max <= min {
		return Neutral
	}
	return Clip01((x - min) / (max - min))
}

// Ratio divides num by den with the denominator floored at one, so empty
// counts yield zero instead of NaN.
func Ratio(num, den float64) float64 {
	if den < 1 {
		den = 1
	}
	return num / den
}

// Mean returns the arithmetic mean of vals, or def when vals is empty.
func Mean(vals []float64, def float64) float64 {
	if len(vals) == 0 {
		return def
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Variance returns the population variance of vals, zero when fewer than two
// samples are present.
func Variance(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := Mean(vals, 0)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vals))
}

// Std returns the population standard deviation of vals, or def when fewer
// than two samples are present.
func Std(vals []float64, def float64) float64 {
	if len(vals) < 2 {
		return def
	}
	return math.Sqrt(Variance(vals))
}

// CoefVar returns the coefficient of variation std/(mean+eps). The epsilon
// keeps near-zero means from exploding the ratio.
func CoefVar(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return Std(vals, 0) / (Mean(vals, 0) + 0.1)
}

// TrendSlope fits a degree-one least-squares line through vals against their
// indices and returns its slope. Fewer than two samples yield zero.
func TrendSlope(vals []float64) float64 {
	n := len(vals)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range vals {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	den := fn*sumXX - sumX*sumX
	if den == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / den
}
