// Package months defines the canonical calendar month order used across the
// category table. The backend identifies cells by upper-case month names,
// while the table columns use three-letter short names; both live here so no
// other package re-declares them.
package months

// Month is an upper-case calendar month name as used on the wire
// (JANUARY ... DECEMBER).
type Month string

// Calendar months in canonical order.
const (
	January   Month = "JANUARY"
	February  Month = "FEBRUARY"
	March     Month = "MARCH"
	April     Month = "APRIL"
	May       Month = "MAY"
	June      Month = "JUNE"
	July      Month = "JULY"
	August    Month = "AUGUST"
	September Month = "SEPTEMBER"
	October   Month = "OCTOBER"
	November  Month = "NOVEMBER"
	December  Month = "DECEMBER"
)

var all = [12]Month{
	January, February, March, April, May, June,
	July, August, September, October, November, December,
}

var short = [12]string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

var order = map[Month]int{}

var fromShort = map[string]Month{}

func init() {
	for i, m := range all {
		order[m] = i + 1
		fromShort[short[i]] = m
	}
}

// All returns the twelve months in canonical order.
func All() []Month {
	months := make([]Month, len(all))
	copy(months, all[:])
	return months
}

// Short returns the twelve three-letter column names in canonical order.
func Short() []string {
	names := make([]string, len(short))
	copy(names, short[:])
	return names
}

// Index returns the 1-based canonical position of m, or 0 when m is not a
// known month. Unknown months therefore sort before January instead of
// panicking.
func Index(m Month) int {
	return order[m]
}

// Valid reports whether m is one of the twelve canonical month names.
func Valid(m Month) bool {
	return order[m] != 0
}

// FromShort resolves a three-letter column name ("jan") to its canonical
// month. The second result is false for unknown names.
func FromShort(name string) (Month, bool) {
	m, ok := fromShort[name]
	return m, ok
}

// ShortFor returns the three-letter column name for m, or "" when m is not a
// known month.
func ShortFor(m Month) string {
	idx := order[m]
	if idx == 0 {
		return ""
	}
	return short[idx-1]
}
