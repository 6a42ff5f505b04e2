package trace

// Point is one sampled pen position.
type Point struct {
	X float64
	Y float64
}

// Stroke is one pen-down path. Capture clients send it in one of two shapes:
// a raw point path (optionally with a duration), or a compact summary carrying
// precomputed per-stroke metrics. Exactly one of the two is populated.
type Stroke struct {
	Points     []Point
	DurationMS float64
	Metrics    map[string]float64
}

// HasPath reports whether the stroke carries raw point data.
func (s Stroke) HasPath() bool { return len(s.Points) > 0 }

// Metric returns a precomputed per-stroke metric, or def when absent.
func (s Stroke) Metric(name string, def float64) float64 {
	if v, ok := s.Metrics[name]; ok {
		return v
	}
	return def
}

// Summary metric names carried by the compact stroke form.
const (
	MetricSmoothness   = "smoothness"
	MetricStraightness = "straightness"
	MetricPressure     = "pressure"
	MetricTremor       = "tremor"
)

var summaryMetricNames = []string{
	MetricSmoothness, MetricStraightness, MetricPressure, MetricTremor,
}

// Strokes parses the record's "strokes" field. Malformed elements are
// dropped; anything that is not a list yields nil.
func (r Record) Strokes() []Stroke {
	raw, ok := r["strokes"].([]any)
	if !ok {
		return nil
	}
	out := make([]Stroke, 0, len(raw))
	for _, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := parseStroke(Record(m)); ok {
			out = append(out, s)
		}
	}
	return out
}

// parseStroke resolves the tagged variant: a "points" list marks the raw path
// form; otherwise any recognized summary metric marks the compact form.
func parseStroke(m Record) (Stroke, bool) {
	if m.Has("points") {
		pts := parsePoints(m["points"])
		if len(pts) == 0 {
			return Stroke{}, false
		}
		return Stroke{Points: pts, DurationMS: m.Float("duration_ms", 0)}, true
	}

	metrics := make(map[string]float64)
	for _, name := range summaryMetricNames {
		if m.Has(name) {
			metrics[name] = m.Float(name, 0.5)
		}
	}
	if len(metrics) == 0 {
		return Stroke{}, false
	}
	return Stroke{Metrics: metrics}, true
}

// parsePoints accepts both point encodings seen in captures: [x, y] pairs and
// {"x": ..., "y": ...} maps. Unparseable entries are skipped.
func parsePoints(v any) []Point {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	pts := make([]Point, 0, len(list))
	for _, el := range list {
		switch p := el.(type) {
		case []any:
			if len(p) < 2 {
				continue
			}
			x, okX := toFloat(p[0])
			y, okY := toFloat(p[1])
			if okX && okY {
				pts = append(pts, Point{X: x, Y: y})
			}
		case map[string]any:
			rec := Record(p)
			if rec.Has("x") && rec.Has("y") {
				pts = append(pts, Point{X: rec.Float("x", 0), Y: rec.Float("y", 0)})
			}
		}
	}
	return pts
}
