package cmd

import (
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

// money renders an amount with two decimals.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func date(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Format("2006-01-02")
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
