package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/milktracker/internal/client/api"
	"github.com/dmitrijs2005/milktracker/internal/client/router"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"golang.org/x/sync/errgroup"
)

// MaxProduction is the largest single quick-add amount accepted.
const MaxProduction = 100000

const recentRecords = 5

type classicDashboard struct{ d Deps }

func (v *classicDashboard) Title() string { return "Dashboard" }

func (v *classicDashboard) Render(ctx context.Context, w io.Writer) error {
	var (
		herds   []models.Herd
		records []models.MilkRecord
		stats   *models.Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		herds, err = v.d.API.Herds(gctx)
		return err
	})
	g.Go(func() (err error) {
		records, err = v.d.API.MilkRecords(gctx, 0)
		return err
	})
	g.Go(func() (err error) {
		stats, err = v.d.API.Stats(gctx, 0, models.SpanAll)
		return err
	})
	if err := g.Wait(); err != nil {
		v.d.Logger.Warn(ctx, "dashboard load failed", "error", err)
		failLoad(w, err, "Failed to load dashboard data")
		return nil
	}

	if u := v.d.Session.User(); u != nil {
		fmt.Fprintf(w, "Welcome, %s (%s membership)\n\n", u.Username, u.MembershipType.Title())
	}
	fmt.Fprintf(w, "Total production: %s   Average per day: %s   Days recorded: %d\n\n",
		liters(stats.TotalLiters), liters(stats.AveragePerDay), stats.DaysRecorded)

	fmt.Fprintf(w, "Herds (%d)\n", len(herds))
	if len(herds) == 0 {
		fmt.Fprintln(w, "  No herds yet. Use 'go /herds/add' to create one.")
	}
	for _, h := range herds {
		fmt.Fprintf(w, "  #%-4d %-24s %5d cows  %s\n", h.ID, h.Name, h.CowCount, h.Location())
	}
	fmt.Fprintln(w)

	sorted := sortedCopy(records)
	chart(w, "Milk production over time", sorted, byDate)
	fmt.Fprintln(w)

	names := herdNames(herds)
	fmt.Fprintln(w, "Recent records")
	for i := len(sorted) - 1; i >= 0 && i >= len(sorted)-recentRecords; i-- {
		r := sorted[i]
		fmt.Fprintf(w, "  %s  %-20s %s\n", day(r.Date), herdName(names, r.HerdID), liters(r.AmountLiters))
	}
	return nil
}

func (v *classicDashboard) Commands() []Command {
	return []Command{
		{Name: "add", Help: "record milk production", Run: func(context.Context, io.Writer, []string) error {
			v.d.Nav.Navigate(router.MilkAddPath)
			return nil
		}},
	}
}

// compactDashboard shows one herd over one time span with quick entry.
type compactDashboard struct {
	d      Deps
	herdID int64
	span   models.TimeSpan
}

func (v *compactDashboard) Title() string { return "Dashboard" }

func (v *compactDashboard) Render(ctx context.Context, w io.Writer) error {
	herds, err := v.d.API.Herds(ctx)
	if err != nil {
		failLoad(w, err, "Failed to load data")
		return nil
	}
	if len(herds) == 0 {
		fmt.Fprintln(w, "No herds yet. Use 'go /herds/add' to create one.")
		return nil
	}

	var current *models.Herd
	for i := range herds {
		if herds[i].ID == v.herdID {
			current = &herds[i]
		}
	}
	if current == nil {
		current = &herds[0]
		v.herdID = current.ID
	}

	var (
		stats   *models.Stats
		records []models.MilkRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := v.d.API.Stats(gctx, v.herdID, v.span)
		if err != nil {
			return &loadError{msg: "Failed to load statistics", err: err}
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		rs, err := v.d.API.MilkRecords(gctx, v.herdID)
		if err != nil {
			return &loadError{msg: "Failed to load milk production data", err: err}
		}
		records = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		var le *loadError
		if errors.As(err, &le) {
			failLoad(w, err, le.msg)
		}
		return nil
	}

	fmt.Fprintf(w, "Herd: %s (%d cows)   Span: %s\n", current.Name, current.CowCount, v.span)
	for _, h := range herds {
		marker := " "
		if h.ID == v.herdID {
			marker = "*"
		}
		fmt.Fprintf(w, " %s #%d %s\n", marker, h.ID, h.Name)
	}
	fmt.Fprintf(w, "\nTotal: %s   Per day: %s   Per cow: %s   Days: %d\n\n",
		liters(stats.TotalLiters), liters(stats.AveragePerDay), liters(stats.LitersPerCow), stats.DaysRecorded)

	chart(w, "Production", chartWindow(sortedCopy(records), v.span), byWeekday)
	return nil
}

// loadError tags a failed fetch with the message shown for it.
type loadError struct {
	msg string
	err error
}

func (e *loadError) Error() string { return e.msg + ": " + e.err.Error() }

func (e *loadError) Unwrap() error { return e.err }

// chartWindow keeps the records shown for span.
func chartWindow(sorted []models.MilkRecord, span models.TimeSpan) []models.MilkRecord {
	switch span {
	case models.SpanWeek:
		return lastN(sorted, 7)
	case models.SpanMonth:
		return lastN(sorted, 30)
	}
	return sorted
}

func (v *compactDashboard) Commands() []Command {
	return []Command{
		{Name: "herd", Usage: "herd <id>", Help: "select a herd", Run: v.selectHerd},
		{Name: "span", Usage: "span week|month|year", Help: "change the time span", Run: v.selectSpan},
		{Name: "add", Usage: "add [liters]", Help: "record today's production for the selected herd", Run: v.quickAdd},
	}
}

func (v *compactDashboard) selectHerd(_ context.Context, w io.Writer, args []string) error {
	id, valid := parseID(args)
	if !valid {
		fail(w, "Usage: herd <id>")
		return nil
	}
	v.herdID = id
	return nil
}

func (v *compactDashboard) selectSpan(_ context.Context, w io.Writer, args []string) error {
	if len(args) == 1 {
		switch s := models.TimeSpan(args[0]); s {
		case models.SpanWeek, models.SpanMonth, models.SpanYear:
			v.span = s
			return nil
		}
	}
	fail(w, "Usage: span week|month|year")
	return nil
}

func (v *compactDashboard) quickAdd(ctx context.Context, w io.Writer, args []string) error {
	raw := strings.Join(args, " ")
	if raw == "" {
		var err error
		if raw, err = v.d.Prompt.Text("Liters produced today"); err != nil {
			return err
		}
	}
	amount, msg := ParseProduction(raw)
	if msg != "" {
		fail(w, msg)
		return nil
	}
	if v.herdID == 0 {
		fail(w, "Please select a herd")
		return nil
	}

	_, err := v.d.API.CreateMilkRecord(ctx, models.MilkRecordInput{
		HerdID:       v.herdID,
		Date:         v.d.now(),
		AmountLiters: amount,
	})
	if err != nil {
		fail(w, api.Describe(err, "Failed to add milk production"))
		return nil
	}
	notice(w, "Recorded %s", liters(amount))
	return nil
}

// ParseProduction validates a quick-add amount. A non-empty message means
// the input was rejected.
func ParseProduction(raw string) (float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "Please enter a milk production amount"
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(v) {
		return 0, "Please enter a valid number"
	}
	if v <= 0 {
		return 0, "Production amount must be greater than zero"
	}
	if v > MaxProduction {
		return 0, "Production amount seems too high. Please check your input"
	}
	return v, ""
}
