package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/milktracker/internal/models"
)

const chartWidth = 40

// label renders the x axis value of one bar.
type label func(models.MilkRecord) string

func byDate(r models.MilkRecord) string { return day(r.Date) }

func byWeekday(r models.MilkRecord) string { return r.Date.Weekday().String()[:3] }

// chart draws a horizontal bar per record, scaled to the largest amount.
// Records are drawn in the order given.
func chart(w io.Writer, title string, records []models.MilkRecord, lbl label) {
	fmt.Fprintln(w, title)
	if len(records) == 0 {
		fmt.Fprintln(w, "  No milk production records yet.")
		return
	}

	peak := 0.0
	for _, r := range records {
		peak = max(peak, r.AmountLiters)
	}
	for _, r := range records {
		n := 0
		if peak > 0 {
			n = int(r.AmountLiters / peak * chartWidth)
		}
		fmt.Fprintf(w, "  %-10s %s %s\n", lbl(r), strings.Repeat("#", n), liters(r.AmountLiters))
	}
}

// lastN keeps the newest n of date-sorted records; n <= 0 keeps all.
func lastN(records []models.MilkRecord, n int) []models.MilkRecord {
	if n <= 0 || len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

// sortedCopy returns records ordered oldest first without touching the input.
func sortedCopy(records []models.MilkRecord) []models.MilkRecord {
	out := append([]models.MilkRecord(nil), records...)
	models.SortByDate(out)
	return out
}
