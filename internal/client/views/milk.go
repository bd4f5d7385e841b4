package views

import (
	"context"
	"fmt"
	"io"
	"math"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/client/api"
	"github.com/dmitrijs2005/milktracker/internal/client/router"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

func milkEditPath(id int64) string {
	return router.MilkListPath + "/edit/" + strconv.FormatInt(id, 10)
}

// milkListView lists records for all herds or one (herdID != 0).
type milkListView struct {
	d      Deps
	herdID int64
}

func (v *milkListView) Title() string { return "Milk production" }

func (v *milkListView) Render(ctx context.Context, w io.Writer) error {
	var (
		herds   []models.Herd
		records []models.MilkRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		herds, err = v.d.API.Herds(gctx)
		return err
	})
	g.Go(func() (err error) {
		records, err = v.d.API.MilkRecords(gctx, v.herdID)
		return err
	})
	if err := g.Wait(); err != nil {
		failLoad(w, err, "Failed to load data")
		return nil
	}

	names := herdNames(herds)
	filter := "all herds"
	if v.herdID != 0 {
		filter = herdName(names, v.herdID)
	}
	fmt.Fprintf(w, "Showing: %s\n\n", filter)
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No milk production records found. Use 'add' to record one.")
		return err
	}

	sorted := append([]models.MilkRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	fmt.Fprintf(w, "%-6s %-10s  %-20s %10s %7s %8s\n", "ID", "Date", "Herd", "Amount", "Fat", "Protein")
	for _, r := range sorted {
		fmt.Fprintf(w, "%-6d %-10s  %-20s %10s %7s %8s\n",
			r.ID, day(r.Date), herdName(names, r.HerdID), liters(r.AmountLiters), percent(r.FatPercentage), percent(r.ProteinPercentage))
	}
	return nil
}

func (v *milkListView) Commands() []Command {
	return []Command{
		{Name: "herd", Usage: "herd <id|all>", Help: "filter by herd", Run: v.filter},
		{Name: "add", Help: "add a record", Run: func(context.Context, io.Writer, []string) error {
			p := router.MilkAddPath
			if v.herdID != 0 {
				p += "?herd_id=" + strconv.FormatInt(v.herdID, 10)
			}
			v.d.Nav.Navigate(p)
			return nil
		}},
		{Name: "edit", Usage: "edit <id>", Help: "edit a record", Run: navigateID(v.d.Nav, "edit", milkEditPath)},
		{Name: "delete", Usage: "delete <id>", Help: "delete a record", Run: v.delete},
		{Name: "export", Help: "download the shown records as CSV", Run: v.export},
	}
}

func (v *milkListView) filter(_ context.Context, w io.Writer, args []string) error {
	if len(args) == 1 && args[0] == "all" {
		v.herdID = 0
		return nil
	}
	id, valid := parseID(args)
	if !valid {
		fail(w, "Usage: herd <id|all>")
		return nil
	}
	v.herdID = id
	return nil
}

func (v *milkListView) delete(ctx context.Context, w io.Writer, args []string) error {
	id, valid := parseID(args)
	if !valid {
		fail(w, "Usage: delete <id>")
		return nil
	}
	yes, err := confirm(v.d.Prompt, "Are you sure you want to delete this record?")
	if err != nil || !yes {
		return err
	}
	if err := v.d.API.DeleteMilkRecord(ctx, id); err != nil {
		fail(w, "Failed to delete record")
		return nil
	}
	notice(w, "Record deleted")
	return nil
}

func (v *milkListView) export(ctx context.Context, w io.Writer, _ []string) error {
	exp, err := v.d.API.Export(ctx, v.herdID)
	if err != nil {
		fail(w, api.Describe(err, "Failed to export records"))
		return nil
	}

	dst := filepath.Join(v.d.ExportDir, path.Base(exp.Key))
	n, err := v.d.Files.Download(ctx, exp.URL, dst)
	if err != nil {
		v.d.Logger.Warn(ctx, "export download failed", "key", exp.Key, "error", err)
		fail(w, "Failed to download export")
		return nil
	}
	notice(w, "Exported %d bytes to %s", n, dst)
	return nil
}

// milkFormView adds a record, or edits one when id is set.
type milkFormView struct {
	d      Deps
	id     int64
	herdID int64

	herds  []models.Herd
	record *models.MilkRecord
}

func (v *milkFormView) Title() string {
	if v.id != 0 {
		return "Edit milk production"
	}
	return "Add milk production"
}

func (v *milkFormView) Render(ctx context.Context, w io.Writer) error {
	herds, err := v.d.API.Herds(ctx)
	if err != nil {
		v.herds = nil
		failLoad(w, err, "Failed to load herds")
		return nil
	}
	v.herds = herds

	if v.id != 0 {
		r, err := v.d.API.MilkRecord(ctx, v.id)
		if err != nil {
			v.record = nil
			failLoad(w, err, "Failed to load data")
			return nil
		}
		v.record = r
		_, err = fmt.Fprintf(w, "Editing record #%d: %s, %s, %s. Use 'save' to change it.\n",
			r.ID, day(r.Date), herdName(herdNames(herds), r.HerdID), liters(r.AmountLiters))
		return err
	}

	if len(herds) == 0 {
		_, err := fmt.Fprintln(w, "You need a herd first. Use 'go /herds/add' to create one.")
		return err
	}
	v.herdID = DefaultHerd(herds, v.herdID)
	fmt.Fprintln(w, "Herds:")
	for _, h := range herds {
		fmt.Fprintf(w, "  #%d %s\n", h.ID, h.Name)
	}
	_, err = fmt.Fprintln(w, "Use 'save' to enter the record, 'cancel' to go back.")
	return err
}

// DefaultHerd keeps want when it is one of herds and otherwise falls back
// to the first herd.
func DefaultHerd(herds []models.Herd, want int64) int64 {
	for _, h := range herds {
		if h.ID == want {
			return want
		}
	}
	if len(herds) == 0 {
		return 0
	}
	return herds[0].ID
}

func (v *milkFormView) Commands() []Command {
	return []Command{
		{Name: "save", Help: "enter and save the record", Run: v.save},
		{Name: "cancel", Help: "back to the list", Run: func(context.Context, io.Writer, []string) error {
			v.d.Nav.Navigate(router.MilkListPath)
			return nil
		}},
	}
}

func (v *milkFormView) save(ctx context.Context, w io.Writer, _ []string) error {
	cur := models.MilkRecordInput{HerdID: v.herdID, Date: v.d.now()}
	if v.id != 0 {
		if v.record == nil {
			fail(w, "Failed to load data")
			return nil
		}
		cur = v.record.Input()
	}

	in, msg, err := v.promptRecord(cur)
	if err != nil {
		return err
	}
	if msg != "" {
		fail(w, msg)
		return nil
	}

	if v.id == 0 {
		_, err = v.d.API.CreateMilkRecord(ctx, in)
	} else {
		_, err = v.d.API.UpdateMilkRecord(ctx, v.id, in)
	}
	if err != nil {
		if v.id == 0 {
			fail(w, "Failed to add milk production record")
		} else {
			fail(w, "Failed to update milk production record")
		}
		return nil
	}
	v.d.Nav.Navigate(router.MilkListPath)
	return nil
}

func (v *milkFormView) promptRecord(cur models.MilkRecordInput) (in models.MilkRecordInput, msg string, err error) {
	p := v.d.Prompt
	herdDefault, amountDefault := "", ""
	if cur.HerdID != 0 {
		herdDefault = strconv.FormatInt(cur.HerdID, 10)
	}
	if v.id != 0 {
		amountDefault = strconv.FormatFloat(cur.AmountLiters, 'f', -1, 64)
	}

	date, err := textOr(p, "Date (YYYY-MM-DD)", day(cur.Date))
	if err != nil {
		return in, "", err
	}
	herd, err := textOr(p, "Herd ID", herdDefault)
	if err != nil {
		return in, "", err
	}
	amount, err := textOr(p, "Amount (liters)", amountDefault)
	if err != nil {
		return in, "", err
	}
	fat, err := textOr(p, "Fat % (optional)", pctDefault(cur.FatPercentage))
	if err != nil {
		return in, "", err
	}
	protein, err := textOr(p, "Protein % (optional)", pctDefault(cur.ProteinPercentage))
	if err != nil {
		return in, "", err
	}

	if date == "" || herd == "" || amount == "" {
		return in, "Please fill out all required fields", nil
	}
	in.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return in, "Please enter a valid date (YYYY-MM-DD)", nil
	}
	if in.HerdID, err = strconv.ParseInt(herd, 10, 64); err != nil {
		return in, "Please enter a valid herd", nil
	}
	if in.AmountLiters, err = strconv.ParseFloat(amount, 64); err != nil || !finite(in.AmountLiters) {
		return in, "Please enter a valid number", nil
	}
	if in.AmountLiters < 0 {
		return in, "Amount cannot be negative", nil
	}
	if in.FatPercentage, err = optionalFloat(fat); err != nil {
		return in, "Please enter a valid number", nil
	}
	if !percentInRange(in.FatPercentage) {
		return in, "Fat percentage must be between 0 and 100", nil
	}
	if in.ProteinPercentage, err = optionalFloat(protein); err != nil {
		return in, "Please enter a valid number", nil
	}
	if !percentInRange(in.ProteinPercentage) {
		return in, "Protein percentage must be between 0 and 100", nil
	}
	return in, "", nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func percentInRange(p *float64) bool {
	return p == nil || (*p >= 0 && *p <= 100)
}

func pctDefault(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if !finite(f) {
		return nil, strconv.ErrSyntax
	}
	return &f, nil
}
