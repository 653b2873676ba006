package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"stocklens/internal/contracts"
	"stocklens/pkg/httputil"
	"stocklens/pkg/logger"
)

// HTMLProvider scrapes daily bars from an AAStocks-style quote-history
// page: a paginated table with one session per row, newest first, cells
// [date, open, high, low, close, volume]. Used as a fallback when no JSON
// endpoint is available.
type HTMLProvider struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	userAgent  string
	maxPages   int
}

// NewHTMLProvider creates an HTML table bar provider.
func NewHTMLProvider(httpClient *httputil.Client, log *logger.Logger, baseURL, userAgent string) *HTMLProvider {
	return &HTMLProvider{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		maxPages:   50,
	}
}

// Name implements BarProvider.
func (p *HTMLProvider) Name() string { return "html" }

// Fetch implements BarProvider. Pages are walked newest-first until the
// table runs past the requested range or comes back empty.
func (p *HTMLProvider) Fetch(ctx context.Context, symbol, marketID string, from, to time.Time) ([]contracts.RawBar, Metadata, error) {
	meta := Metadata{Source: p.Name(), LastUpdated: time.Now().UTC()}

	var all []contracts.RawBar
	for page := 1; page <= p.maxPages; page++ {
		select {
		case <-ctx.Done():
			return nil, meta, fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, ctx.Err())
		default:
		}

		url := fmt.Sprintf("%s/history?symbol=%s&market=%s&page=%d", p.baseURL, symbol, marketID, page)

		resp, err := p.httpClient.GetWithHeaders(ctx, url, map[string]string{
			"User-Agent": p.userAgent,
		})
		if err != nil {
			return nil, meta, fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, meta, fmt.Errorf("%w: %s: read body: %v", ErrUnavailable, symbol, err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, meta, fmt.Errorf("%w: %s: unexpected status code %d", ErrUnavailable, symbol, resp.StatusCode)
		}

		bars, oldest := p.parseHistoryHTML(string(body))
		if len(bars) == 0 {
			break
		}
		all = append(all, bars...)

		if !oldest.IsZero() && oldest.Before(from) {
			break
		}
	}

	// keep only the requested range, oldest first
	filtered := make([]contracts.RawBar, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		b := all[i]
		if b.Timestamp.Before(from) || b.Timestamp.After(to) {
			continue
		}
		filtered = append(filtered, b)
	}

	if len(filtered) == 0 {
		return nil, meta, fmt.Errorf("%w: %s: no bars in range", ErrUnavailable, symbol)
	}

	p.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"market": marketID,
		"bars":   len(filtered),
	}).Debug("Fetched bars from HTML provider")

	return filtered, meta, nil
}

var historyDateRe = regexp.MustCompile(`^\d{4}[./-]\d{2}[./-]\d{2}$`)

// parseHistoryHTML extracts the session rows of one page and the oldest
// date seen, for pagination cutoff.
func (p *HTMLProvider) parseHistoryHTML(html string) ([]contracts.RawBar, time.Time) {
	var bars []contracts.RawBar
	var oldest time.Time

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return bars, oldest
	}

	parseNum := func(s string) float64 {
		s = strings.TrimSpace(s)
		s = strings.ReplaceAll(s, ",", "")
		if s == "" || s == "-" {
			return 0
		}
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}

	doc.Find("table.history tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 6 {
			return
		}

		dateStr := strings.TrimSpace(cells.Eq(0).Text())
		if !historyDateRe.MatchString(dateStr) {
			return // header or separator row
		}
		dateStr = strings.NewReplacer(".", "-", "/", "-").Replace(dateStr)
		ts, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return
		}

		bars = append(bars, contracts.RawBar{
			Timestamp: ts,
			Open:      parseNum(cells.Eq(1).Text()),
			High:      parseNum(cells.Eq(2).Text()),
			Low:       parseNum(cells.Eq(3).Text()),
			Close:     parseNum(cells.Eq(4).Text()),
			Volume:    int64(parseNum(cells.Eq(5).Text())),
		})
		if oldest.IsZero() || ts.Before(oldest) {
			oldest = ts
		}
	})

	return bars, oldest
}
