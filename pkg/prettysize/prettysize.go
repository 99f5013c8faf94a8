// Package prettysize renders byte counts in binary units.
package prettysize

import "fmt"

// DefaultPrecision is the number of decimals used when callers have no preference.
const DefaultPrecision = 2

const (
	kb int64 = 1 << 10
	mb int64 = 1 << 20
	gb int64 = 1 << 30
	tb int64 = 1 << 40
)

// Format returns size in the largest unit among B, KB, MB, GB and TB that it
// reaches. Byte counts below one KB are printed without decimals.
func Format(size int64, precision int) string {
	if precision < 0 {
		precision = 0
	}

	switch {
	case size >= tb:
		return scaled(size, tb, precision, "TB")
	case size >= gb:
		return scaled(size, gb, precision, "GB")
	case size >= mb:
		return scaled(size, mb, precision, "MB")
	case size >= kb:
		return scaled(size, kb, precision, "KB")
	}

	return fmt.Sprintf("%d B", size)
}

func scaled(size int64, unit int64, precision int, suffix string) string {
	return fmt.Sprintf("%.*f %s", precision, float64(size)/float64(unit), suffix)
}
