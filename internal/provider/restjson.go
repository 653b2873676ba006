package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"stocklens/internal/contracts"
	"stocklens/pkg/httputil"
	"stocklens/pkg/logger"
)

// RESTProvider fetches daily bars from a chart-style JSON endpoint that
// returns an array of arrays: a header row followed by
// [date, open, high, low, close, volume] rows. Some endpoints serve the
// payload with single quotes; both forms are handled, with a regex
// fallback when the payload is not valid JSON at all.
type RESTProvider struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	userAgent  string
}

// NewRESTProvider creates a REST JSON bar provider.
func NewRESTProvider(httpClient *httputil.Client, log *logger.Logger, baseURL, userAgent string) *RESTProvider {
	return &RESTProvider{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
	}
}

// Name implements BarProvider.
func (p *RESTProvider) Name() string { return "rest" }

// Fetch implements BarProvider.
func (p *RESTProvider) Fetch(ctx context.Context, symbol, marketID string, from, to time.Time) ([]contracts.RawBar, Metadata, error) {
	meta := Metadata{Source: p.Name(), LastUpdated: time.Now().UTC()}

	fullURL := fmt.Sprintf("%s/daily?symbol=%s&market=%s&start=%s&end=%s",
		p.baseURL, symbol, marketID, from.Format("20060102"), to.Format("20060102"))

	resp, err := p.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": p.userAgent,
		"Accept":     "application/json",
	})
	if err != nil {
		return nil, meta, fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, meta, fmt.Errorf("%w: %s: unexpected status code %d", ErrUnavailable, symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, meta, fmt.Errorf("%w: %s: read body: %v", ErrUnavailable, symbol, err)
	}

	bars, err := parseChartPayload(string(body))
	if err != nil {
		return nil, meta, fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, err)
	}

	if cur := resp.Header.Get("X-Currency"); cur != "" {
		meta.Currency = cur
	}

	p.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"market": marketID,
		"bars":   len(bars),
	}).Debug("Fetched bars from REST provider")

	return bars, meta, nil
}

// parseChartPayload decodes the array-of-arrays payload, trying strict
// JSON first and a row regex as fallback.
func parseChartPayload(body string) ([]contracts.RawBar, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", `"`)

	var rawRows [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawRows); err == nil {
		return parseChartRows(rawRows)
	}
	return parseChartRegex(body)
}

func parseChartRows(rows [][]interface{}) ([]contracts.RawBar, error) {
	var bars []contracts.RawBar
	for i, row := range rows {
		if i == 0 || len(row) < 6 {
			continue // header row or truncated row
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		ts, err := parseSessionDate(strings.Trim(dateStr, `"`))
		if err != nil {
			continue
		}

		bars = append(bars, contracts.RawBar{
			Timestamp: ts,
			Open:      toFloat(row[1]),
			High:      toFloat(row[2]),
			Low:       toFloat(row[3]),
			Close:     toFloat(row[4]),
			Volume:    int64(toFloat(row[5])),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bar rows in payload")
	}
	return bars, nil
}

var chartRowRe = regexp.MustCompile(`\["(\d{8})",\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*(\d+)\]`)

func parseChartRegex(body string) ([]contracts.RawBar, error) {
	matches := chartRowRe.FindAllStringSubmatch(body, -1)

	var bars []contracts.RawBar
	for _, m := range matches {
		if len(m) < 7 {
			continue
		}
		ts, err := parseSessionDate(m[1])
		if err != nil {
			continue
		}

		open, _ := strconv.ParseFloat(m[2], 64)
		high, _ := strconv.ParseFloat(m[3], 64)
		low, _ := strconv.ParseFloat(m[4], 64)
		closePrice, _ := strconv.ParseFloat(m[5], 64)
		volume, _ := strconv.ParseInt(m[6], 10, 64)

		bars = append(bars, contracts.RawBar{
			Timestamp: ts,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bar rows in payload")
	}
	return bars, nil
}

// parseSessionDate accepts YYYYMMDD and YYYY-MM-DD session dates.
func parseSessionDate(s string) (time.Time, error) {
	if len(s) == 8 {
		s = s[:4] + "-" + s[4:6] + "-" + s[6:8]
	}
	return time.Parse("2006-01-02", s)
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64)
		return f
	default:
		return 0
	}
}
