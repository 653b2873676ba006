package market

import "time"

// HKT covers both supported markets: Hong Kong and mainland China share
// UTC+8 with no daylight saving.
var HKT = time.FixedZone("HKT", 8*3600)

// HKEX holidays for 2026.
// Source: HKEX trading calendar. Half-days trade a morning session and
// still count as trading days here.
var hkHolidays2026 = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},   // New Year's Day
	{time.February, 17}, // Lunar New Year
	{time.February, 18}, // Lunar New Year
	{time.February, 19}, // Lunar New Year
	{time.April, 3},     // Good Friday
	{time.April, 6},     // Easter Monday (day after Ching Ming)
	{time.April, 7},     // Ching Ming Festival (observed)
	{time.May, 1},       // Labour Day
	{time.May, 25},      // Buddha's Birthday
	{time.June, 19},     // Tuen Ng Festival
	{time.July, 1},      // HKSAR Establishment Day
	{time.September, 26}, // Day after Mid-Autumn Festival (observed)
	{time.October, 1},   // National Day
	{time.October, 19},  // Chung Yeung Festival
	{time.December, 25}, // Christmas Day
	{time.December, 28}, // Second weekday after Christmas (observed)
}

// Shanghai/Shenzhen exchange holidays for 2026.
// Source: CSRC holiday arrangement. Golden-week make-up weekend sessions
// are not modelled; weekends are always treated as closed.
var cnHolidays2026 = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},   // New Year's Day
	{time.January, 2},   // New Year's Day (observed)
	{time.February, 16}, // Spring Festival
	{time.February, 17}, // Spring Festival
	{time.February, 18}, // Spring Festival
	{time.February, 19}, // Spring Festival
	{time.February, 20}, // Spring Festival
	{time.April, 6},     // Ching Ming Festival
	{time.May, 1},       // Labour Day
	{time.May, 4},       // Labour Day (observed)
	{time.May, 5},       // Labour Day (observed)
	{time.June, 19},     // Dragon Boat Festival
	{time.September, 25}, // Mid-Autumn Festival
	{time.October, 1},   // National Day
	{time.October, 2},   // National Day
	{time.October, 5},   // National Day (observed)
	{time.October, 6},   // National Day (observed)
	{time.October, 7},   // National Day (observed)
}

// pre-computed date sets for fast lookup
var (
	hkHolidaySet map[string]bool
	cnHolidaySet map[string]bool
)

func init() {
	hkHolidaySet = make(map[string]bool, len(hkHolidays2026))
	for _, h := range hkHolidays2026 {
		hkHolidaySet[dateKey(2026, h.month, h.day)] = true
	}
	cnHolidaySet = make(map[string]bool, len(cnHolidays2026))
	for _, h := range cnHolidays2026 {
		cnHolidaySet[dateKey(2026, h.month, h.day)] = true
	}
}

func dateKey(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, HKT).Format("2006-01-02")
}

// isWeekday returns true for Mon-Fri in market local time.
func isWeekday(t time.Time) bool {
	wd := t.In(HKT).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

func isHKHoliday(t time.Time) bool {
	local := t.In(HKT)
	return hkHolidaySet[dateKey(local.Year(), local.Month(), local.Day())]
}

func isCNHoliday(t time.Time) bool {
	local := t.In(HKT)
	return cnHolidaySet[dateKey(local.Year(), local.Month(), local.Day())]
}
