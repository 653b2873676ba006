package indicator

import (
	"fmt"

	"stocklens/internal/contracts"
	"stocklens/pkg/logger"
)

// Calculator evaluates a set of indicator specs over one validated series,
// resolving inter-indicator dependencies in topological order. It holds no
// per-run state and is safe for concurrent use across symbol pipelines.
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a calculator.
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{logger: log}
}

// Outcome is the calculation result for one symbol. Failures holds
// per-indicator annotations (formula errors, skipped dependents, market
// inapplicability); every series present has all its dependencies present.
type Outcome struct {
	Series   map[string]*contracts.IndicatorSeries
	Failures map[string]string
	Order    []string // evaluation order actually used
}

// Evaluate runs every spec against the series. A cycle fails the whole
// call before any computation; a single formula failure is isolated to
// that indicator and its dependents.
func (c *Calculator) Evaluate(series *contracts.ValidatedSeries, profile contracts.MarketProfile, specs []contracts.IndicatorSpec) (*Outcome, error) {
	graph, err := buildGraph(specs)
	if err != nil {
		return nil, err
	}
	order, err := graph.topoOrder()
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Series:   make(map[string]*contracts.IndicatorSeries, len(specs)),
		Failures: make(map[string]string),
		Order:    make([]string, 0, len(specs)),
	}

	for _, idx := range order {
		spec := specs[idx]
		out.Order = append(out.Order, spec.Name)

		def, ok := Lookup(spec.Formula)
		if !ok {
			// Unknown formula ids are rejected at config load; reaching
			// this path means the spec bypassed the loader.
			out.Failures[spec.Name] = fmt.Sprintf("unknown formula %q", spec.Formula)
			continue
		}
		if !def.AppliesTo(series.MarketID) {
			out.Failures[spec.Name] = fmt.Sprintf("formula %q not applicable to market %s", spec.Formula, series.MarketID)
			continue
		}

		deps, blocked := c.collectDeps(spec, out)
		if blocked != "" {
			out.Failures[spec.Name] = blocked
			continue
		}

		in := Input{
			Series:  series,
			Profile: profile,
			Spec:    spec,
			Deps:    deps,
		}

		result, err := def.Compute(in)
		if err != nil {
			ferr := &FormulaError{Indicator: spec.Name, Err: err}
			out.Failures[spec.Name] = ferr.Error()
			c.logger.WithFields(map[string]interface{}{
				"symbol":    series.Symbol,
				"indicator": spec.Name,
				"error":     err.Error(),
			}).Warn("Indicator formula failed, removed from bundle")
			continue
		}

		if err := c.publish(series, spec.Name, result, out); err != nil {
			out.Failures[spec.Name] = err.Error()
		}
	}

	return out, nil
}

// collectDeps resolves the declared dependencies of a spec against the
// already-computed series. A failed dependency blocks the dependent with
// an annotation instead of evaluating it against missing inputs.
func (c *Calculator) collectDeps(spec contracts.IndicatorSpec, out *Outcome) ([]*contracts.IndicatorSeries, string) {
	deps := make([]*contracts.IndicatorSeries, 0, len(spec.DependsOn))
	for _, name := range spec.DependsOn {
		s, ok := out.Series[name]
		if !ok {
			return nil, fmt.Sprintf("skipped: dependency %q failed or missing", name)
		}
		deps = append(deps, s)
	}
	return deps, ""
}

// publish attaches timestamps to the result columns and stores them. The
// primary column takes the spec name; components are suffixed.
func (c *Calculator) publish(series *contracts.ValidatedSeries, name string, result Result, out *Outcome) error {
	primary, err := toSeries(series, name, result.Primary)
	if err != nil {
		return fmt.Errorf("indicator %q: %w", name, err)
	}

	components := make(map[string]*contracts.IndicatorSeries, len(result.Components))
	for comp, col := range result.Components {
		compName := name + "_" + comp
		s, err := toSeries(series, compName, col)
		if err != nil {
			return fmt.Errorf("indicator %q component %q: %w", name, comp, err)
		}
		components[compName] = s
	}

	// All columns aligned; publish atomically so a component error never
	// leaves a partial bundle.
	out.Series[name] = primary
	for compName, s := range components {
		out.Series[compName] = s
	}
	return nil
}

// toSeries aligns a column to the input timestamps, enforcing the
// one-point-per-session invariant.
func toSeries(series *contracts.ValidatedSeries, name string, col Column) (*contracts.IndicatorSeries, error) {
	if len(col.Values) != series.Len() || len(col.Valid) != series.Len() {
		return nil, fmt.Errorf("column length %d does not match series length %d", len(col.Values), series.Len())
	}

	points := make([]contracts.IndicatorPoint, series.Len())
	for i := range points {
		points[i] = contracts.IndicatorPoint{
			Timestamp: series.Bars[i].Timestamp,
			Value:     col.Values[i],
			Valid:     col.Valid[i],
		}
	}
	return &contracts.IndicatorSeries{
		Name:   name,
		Symbol: series.Symbol,
		Points: points,
	}, nil
}
