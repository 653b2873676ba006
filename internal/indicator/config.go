package indicator

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stocklens/internal/contracts"
)

// ErrInvalidConfig marks indicator configuration rejected at load time,
// before any pipeline run starts.
var ErrInvalidConfig = fmt.Errorf("invalid indicator config")

// Config is the indicator battery plus the capital-flow settings, loaded
// from YAML. Immutable after Load.
type Config struct {
	Meta        Meta                      `yaml:"meta" json:"meta"`
	CapitalFlow CapitalFlowConfig         `yaml:"capital_flow" json:"capital_flow"`
	Indicators  []contracts.IndicatorSpec `yaml:"indicators" json:"indicators"`
}

// Meta identifies a config revision.
type Meta struct {
	ConfigID string `yaml:"config_id" json:"config_id"`
	Version  string `yaml:"version" json:"version"`
}

// CapitalFlowConfig holds the capital-flow analyzer parameters.
type CapitalFlowConfig struct {
	Threshold        float64 `yaml:"threshold" json:"threshold"`                 // relative move below this is neutral
	MomentumPeriod   int     `yaml:"momentum_period" json:"momentum_period"`     // sessions for flow momentum
	DivergenceWindow int     `yaml:"divergence_window" json:"divergence_window"` // sessions for price/flow divergence
}

// ValidationError is a fatal config finding.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a non-fatal config lint finding.
type Warning struct {
	Code    string
	Message string
}

// Load reads and validates the indicator config. Unknown YAML fields fail
// immediately so typos never silently drop an indicator.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return cfg, data, nil
}

// Parse decodes and validates raw YAML config bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Validate checks every spec against the formula catalog and the static
// dependency graph. Any failure rejects the whole config.
func Validate(cfg *Config) error {
	if len(cfg.Indicators) == 0 {
		return ValidationError{"indicators", "at least one indicator is required"}
	}
	if cfg.CapitalFlow.Threshold < 0 || cfg.CapitalFlow.Threshold >= 1 {
		return ValidationError{"capital_flow.threshold", "must be in [0, 1)"}
	}
	if cfg.CapitalFlow.MomentumPeriod < 1 {
		return ValidationError{"capital_flow.momentum_period", "must be >= 1"}
	}
	if cfg.CapitalFlow.DivergenceWindow < 1 {
		return ValidationError{"capital_flow.divergence_window", "must be >= 1"}
	}

	for i, spec := range cfg.Indicators {
		field := fmt.Sprintf("indicators[%d]", i)
		if spec.Name == "" {
			return ValidationError{field + ".name", "required"}
		}

		def, ok := Lookup(spec.Formula)
		if !ok {
			return ValidationError{field + ".formula", fmt.Sprintf("unknown formula %q", spec.Formula)}
		}

		for _, p := range def.Params {
			v, set := spec.Params[p.Name]
			if p.Required && !set {
				return ValidationError{
					Field:   fmt.Sprintf("%s.params.%s", field, p.Name),
					Message: fmt.Sprintf("required by formula %q", spec.Formula),
				}
			}
			if set && v < p.Min {
				return ValidationError{
					Field:   fmt.Sprintf("%s.params.%s", field, p.Name),
					Message: fmt.Sprintf("must be >= %g", p.Min),
				}
			}
		}
		for name := range spec.Params {
			if !knownParam(def, name) {
				return ValidationError{
					Field:   fmt.Sprintf("%s.params.%s", field, name),
					Message: fmt.Sprintf("not accepted by formula %q", spec.Formula),
				}
			}
		}

		if len(spec.DependsOn) != def.NumDeps {
			return ValidationError{
				Field:   field + ".depends_on",
				Message: fmt.Sprintf("formula %q takes exactly %d dependencies, got %d", spec.Formula, def.NumDeps, len(spec.DependsOn)),
			}
		}
	}

	// Unknown dependency names and statically declared cycles both reject
	// the config here, so a run never sees them.
	graph, err := buildGraph(cfg.Indicators)
	if err != nil {
		return ValidationError{"indicators", err.Error()}
	}
	if _, err := graph.topoOrder(); err != nil {
		return ValidationError{"indicators", err.Error()}
	}

	return nil
}

// Warn reports non-fatal lints on an already-valid config.
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	for _, spec := range cfg.Indicators {
		if w := spec.Window(0); w > 120 {
			warnings = append(warnings, Warning{
				Code:    "LONG_WINDOW",
				Message: fmt.Sprintf("%s: window %d needs %d+ sessions of history", spec.Name, w, w),
			})
		}
		if def, ok := Lookup(spec.Formula); ok && len(def.Markets) > 0 {
			warnings = append(warnings, Warning{
				Code:    "MARKET_RESTRICTED",
				Message: fmt.Sprintf("%s: formula %q only applies to markets %v and is skipped elsewhere", spec.Name, spec.Formula, def.Markets),
			})
		}
	}

	if cfg.CapitalFlow.Threshold == 0 {
		warnings = append(warnings, Warning{
			Code:    "ZERO_THRESHOLD",
			Message: "capital_flow.threshold 0 classifies every non-flat session as inflow/outflow",
		})
	}

	return warnings
}

// Hash returns the SHA256 of the canonical JSON form so batch results can
// be tied to the exact config revision. Structs, not maps, keep the JSON
// order deterministic.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

func knownParam(def Definition, name string) bool {
	for _, p := range def.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}
