package contracts

import "time"

// IndicatorSpec describes one indicator to compute: which formula, with
// which parameters, and which other indicators it consumes. Specs come from
// configuration, are immutable, and together form an acyclic dependency
// graph.
type IndicatorSpec struct {
	Name      string             `yaml:"name" json:"name"`
	Formula   string             `yaml:"formula" json:"formula"`
	Params    map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	DependsOn []string           `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
}

// Param returns the named parameter or def when absent.
func (s IndicatorSpec) Param(key string, def float64) float64 {
	if v, ok := s.Params[key]; ok {
		return v
	}
	return def
}

// Window returns the "window" parameter rounded to an int, or def.
func (s IndicatorSpec) Window(def int) int {
	if v, ok := s.Params["window"]; ok {
		return int(v)
	}
	return def
}

// IndicatorPoint is one (timestamp, value) entry of an indicator series.
// Valid is false while the formula's window exceeds the available history;
// the Value of an invalid point is meaningless and must not be consumed.
type IndicatorPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Valid     bool      `json:"valid"`
}

// IndicatorSeries is the output of one indicator over one validated series.
// It always carries exactly one point per input session, aligned by
// timestamp, and is never mutated after creation.
type IndicatorSeries struct {
	Name   string           `json:"name"`
	Symbol string           `json:"symbol"`
	Points []IndicatorPoint `json:"points"`
}

// Len returns the number of points.
func (s *IndicatorSeries) Len() int {
	return len(s.Points)
}

// Last returns the most recent valid point, or ok=false when the series
// holds no valid point at all.
func (s *IndicatorSeries) Last() (IndicatorPoint, bool) {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Valid {
			return s.Points[i], true
		}
	}
	return IndicatorPoint{}, false
}

// ValidFrom returns the index of the first valid point, or -1.
func (s *IndicatorSeries) ValidFrom() int {
	for i, p := range s.Points {
		if p.Valid {
			return i
		}
	}
	return -1
}
