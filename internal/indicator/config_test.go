package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
meta:
  config_id: test
  version: "1.0.0"
capital_flow:
  threshold: 0.005
  momentum_period: 5
  divergence_window: 20
indicators:
  - name: sma_20
    formula: sma
    params:
      window: 20
  - name: ema_12
    formula: ema
    params:
      window: 12
  - name: ema_26
    formula: ema
    params:
      window: 26
  - name: macd
    formula: macd
    params:
      signal: 9
    depends_on: [ema_12, ema_26]
`

func TestParseValidConfig(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Meta.ConfigID)
	assert.Equal(t, 0.005, cfg.CapitalFlow.Threshold)
	assert.Equal(t, 5, cfg.CapitalFlow.MomentumPeriod)
	require.Len(t, cfg.Indicators, 4)
	assert.Equal(t, []string{"ema_12", "ema_26"}, cfg.Indicators[3].DependsOn)
}

func TestParseRejectsUnknownYAMLField(t *testing.T) {
	bad := `
meta:
  config_id: test
capital_flow:
  treshold: 0.005
  momentum_period: 5
  divergence_window: 20
indicators:
  - name: sma_20
    formula: sma
    params:
      window: 20
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateRejections(t *testing.T) {
	base := func() *Config {
		cfg, err := Parse([]byte(validYAML))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "unknown formula",
			mutate:  func(c *Config) { c.Indicators[0].Formula = "vortex" },
			wantMsg: "unknown formula",
		},
		{
			name:    "missing required param",
			mutate:  func(c *Config) { delete(c.Indicators[0].Params, "window") },
			wantMsg: "required by formula",
		},
		{
			name:    "param below minimum",
			mutate:  func(c *Config) { c.Indicators[0].Params["window"] = 0 },
			wantMsg: "must be >=",
		},
		{
			name:    "unaccepted param",
			mutate:  func(c *Config) { c.Indicators[0].Params["smooth"] = 3 },
			wantMsg: "not accepted",
		},
		{
			name:    "wrong dependency count",
			mutate:  func(c *Config) { c.Indicators[3].DependsOn = []string{"ema_12"} },
			wantMsg: "exactly 2 dependencies",
		},
		{
			name:    "unknown dependency",
			mutate:  func(c *Config) { c.Indicators[3].DependsOn = []string{"ema_12", "ema_99"} },
			wantMsg: "unknown indicator",
		},
		{
			name:    "missing name",
			mutate:  func(c *Config) { c.Indicators[0].Name = "" },
			wantMsg: "required",
		},
		{
			name:    "threshold out of range",
			mutate:  func(c *Config) { c.CapitalFlow.Threshold = 1.5 },
			wantMsg: "must be in [0, 1)",
		},
		{
			name:    "no indicators",
			mutate:  func(c *Config) { c.Indicators = nil },
			wantMsg: "at least one indicator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateRejectsDependencyCycle(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	// Rewire macd's dependency chain into a loop through ema_12.
	cfg.Indicators[1].Formula = "macd"
	cfg.Indicators[1].Params = map[string]float64{"signal": 9}
	cfg.Indicators[1].DependsOn = []string{"macd", "ema_26"}

	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic")
}

func TestHashIsStableAndSensitive(t *testing.T) {
	cfg1, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	cfg2, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	h1, err := Hash(cfg1)
	require.NoError(t, err)
	h2, err := Hash(cfg2)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	cfg2.Indicators[0].Params["window"] = 30
	h3, err := Hash(cfg2)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestWarnLints(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	assert.Empty(t, Warn(cfg))

	cfg.Indicators[0].Params["window"] = 200
	cfg.Indicators = append(cfg.Indicators, spec("limit", "price_limit"))
	cfg.CapitalFlow.Threshold = 0

	codes := make(map[string]bool)
	for _, w := range Warn(cfg) {
		codes[w.Code] = true
	}
	assert.True(t, codes["LONG_WINDOW"])
	assert.True(t, codes["MARKET_RESTRICTED"])
	assert.True(t, codes["ZERO_THRESHOLD"])
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load("testdata/does_not_exist.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
