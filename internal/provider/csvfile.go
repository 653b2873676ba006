package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"stocklens/internal/contracts"
	"stocklens/pkg/logger"
)

// CSVProvider reads daily bars from local snapshot files, one file per
// symbol named <MARKET>_<SYMBOL>.csv with a header row and
// date,open,high,low,close,volume columns. Used for offline runs and
// deterministic fixtures.
type CSVProvider struct {
	dir    string
	logger *logger.Logger
}

// NewCSVProvider creates a CSV snapshot provider rooted at dir.
func NewCSVProvider(dir string, log *logger.Logger) *CSVProvider {
	return &CSVProvider{dir: dir, logger: log}
}

// Name implements BarProvider.
func (p *CSVProvider) Name() string { return "csv" }

// Fetch implements BarProvider.
func (p *CSVProvider) Fetch(ctx context.Context, symbol, marketID string, from, to time.Time) ([]contracts.RawBar, Metadata, error) {
	meta := Metadata{Source: p.Name()}

	path := filepath.Join(p.dir, fmt.Sprintf("%s_%s.csv", marketID, sanitizeSymbol(symbol)))
	f, err := os.Open(path)
	if err != nil {
		return nil, meta, fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		meta.LastUpdated = info.ModTime().UTC()
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, meta, fmt.Errorf("%w: %s: parse csv: %v", ErrUnavailable, symbol, err)
	}

	var bars []contracts.RawBar
	for i, rec := range records {
		if i == 0 || len(rec) < 6 {
			continue // header or truncated row
		}
		ts, err := time.Parse("2006-01-02", strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, meta, fmt.Errorf("%w: %s: row %d: bad date %q", ErrUnavailable, symbol, i, rec[0])
		}
		if ts.Before(from) || ts.After(to) {
			continue
		}

		bar := contracts.RawBar{Timestamp: ts}
		if bar.Open, err = parseField(rec[1]); err != nil {
			return nil, meta, rowErr(symbol, i, "open", err)
		}
		if bar.High, err = parseField(rec[2]); err != nil {
			return nil, meta, rowErr(symbol, i, "high", err)
		}
		if bar.Low, err = parseField(rec[3]); err != nil {
			return nil, meta, rowErr(symbol, i, "low", err)
		}
		if bar.Close, err = parseField(rec[4]); err != nil {
			return nil, meta, rowErr(symbol, i, "close", err)
		}
		vol, err := parseField(rec[5])
		if err != nil {
			return nil, meta, rowErr(symbol, i, "volume", err)
		}
		bar.Volume = int64(vol)
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, meta, fmt.Errorf("%w: %s: no bars in range", ErrUnavailable, symbol)
	}

	p.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"market": marketID,
		"file":   path,
		"bars":   len(bars),
	}).Debug("Loaded bars from CSV snapshot")

	return bars, meta, nil
}

func parseField(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func rowErr(symbol string, row int, field string, err error) error {
	return fmt.Errorf("%w: %s: row %d: bad %s: %v", ErrUnavailable, symbol, row, field, err)
}

// sanitizeSymbol makes a symbol safe as a file name component
// ("600519.SH" -> "600519-SH").
func sanitizeSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, ".", "-")
}
