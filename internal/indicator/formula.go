package indicator

import (
	"fmt"

	"stocklens/internal/contracts"
)

// Input is everything a formula may read: the validated bars, the market
// profile, its own spec (for parameters), and the already-computed series
// of its declared dependencies, in declaration order. Formulas are pure
// functions of this input; identical inputs yield bit-identical outputs.
type Input struct {
	Series  *contracts.ValidatedSeries
	Profile contracts.MarketProfile
	Spec    contracts.IndicatorSpec
	Deps    []*contracts.IndicatorSeries
}

// Column is one value sequence aligned to the input bars. Valid is false
// where the formula's window exceeds the available history.
type Column struct {
	Values []float64
	Valid  []bool
}

// newColumn allocates an all-invalid column of length n.
func newColumn(n int) Column {
	return Column{
		Values: make([]float64, n),
		Valid:  make([]bool, n),
	}
}

// set marks index i valid with value v.
func (c Column) set(i int, v float64) {
	c.Values[i] = v
	c.Valid[i] = true
}

// Result is a formula's output: a primary column plus optional named
// component columns (e.g. MACD emits signal and histogram alongside the
// MACD line). Component series are published as "<name>_<component>".
type Result struct {
	Primary    Column
	Components map[string]Column
}

// FormulaError is a per-indicator evaluation failure. It removes only the
// failing indicator from the result bundle; sibling indicators are
// unaffected.
type FormulaError struct {
	Indicator string
	Err       error
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("formula evaluation failed for %q: %v", e.Indicator, e.Err)
}

func (e *FormulaError) Unwrap() error {
	return e.Err
}

// ParamSpec declares one parameter a formula accepts.
type ParamSpec struct {
	Name     string
	Required bool
	Min      float64 // inclusive lower bound, checked when the param is set
}

// Definition is the static description of one formula id: its parameter
// surface, how many dependencies it consumes, which markets it applies to
// (nil = all), and the compute function itself.
type Definition struct {
	ID      string
	Params  []ParamSpec
	NumDeps int      // exact declared-dependency count the formula expects
	Markets []string // restrict to these market ids; nil means any
	Compute func(in Input) (Result, error)
}

// AppliesTo reports whether the formula is defined for the market.
func (d Definition) AppliesTo(marketID string) bool {
	if len(d.Markets) == 0 {
		return true
	}
	for _, m := range d.Markets {
		if m == marketID {
			return true
		}
	}
	return false
}

// Lookup resolves a formula id against the catalog.
func Lookup(formulaID string) (Definition, bool) {
	d, ok := catalog[formulaID]
	return d, ok
}

// FormulaIDs returns every registered formula id (unordered).
func FormulaIDs() []string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	return ids
}

// dep returns the i-th dependency series or an error naming the gap. The
// config loader guarantees the count statically; this guards direct API use.
func (in Input) dep(i int) (*contracts.IndicatorSeries, error) {
	if i >= len(in.Deps) || in.Deps[i] == nil {
		return nil, fmt.Errorf("missing dependency %d of %d declared", i, len(in.Deps))
	}
	if len(in.Deps[i].Points) != in.Series.Len() {
		return nil, fmt.Errorf("dependency %q not aligned to series", in.Deps[i].Name)
	}
	return in.Deps[i], nil
}
