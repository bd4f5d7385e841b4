package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/milktracker/internal/client/router"
	"github.com/dmitrijs2005/milktracker/internal/models"
)

// Ranch edit limits.
const (
	MaxCowCount     = 10000
	MinRanchNameLen = 2
	MaxRanchNameLen = 50
)

func herdPath(id int64) string     { return router.HerdsPath + "/" + strconv.FormatInt(id, 10) }
func herdEditPath(id int64) string { return router.HerdsPath + "/edit/" + strconv.FormatInt(id, 10) }

type herdListView struct{ d Deps }

func (v *herdListView) Title() string { return "Herds" }

func (v *herdListView) Render(ctx context.Context, w io.Writer) error {
	herds, err := v.d.API.Herds(ctx)
	if err != nil {
		failLoad(w, err, "Failed to load herds")
		return nil
	}
	if len(herds) == 0 {
		_, err := fmt.Fprintln(w, "No herds yet. Use 'add' to create one.")
		return err
	}
	fmt.Fprintf(w, "%-6s %-24s %6s  %s\n", "ID", "Name", "Cows", "Location")
	for _, h := range herds {
		fmt.Fprintf(w, "%-6d %-24s %6d  %s\n", h.ID, h.Name, h.CowCount, h.Location())
	}
	return nil
}

func (v *herdListView) Commands() []Command {
	return []Command{
		{Name: "add", Help: "add a herd", Run: func(context.Context, io.Writer, []string) error {
			v.d.Nav.Navigate(router.HerdAddPath)
			return nil
		}},
		{Name: "view", Usage: "view <id>", Help: "show herd details", Run: navigateID(v.d.Nav, "view", herdPath)},
		{Name: "edit", Usage: "edit <id>", Help: "edit a herd", Run: navigateID(v.d.Nav, "edit", herdEditPath)},
		{Name: "delete", Usage: "delete <id>", Help: "delete a herd", Run: v.delete},
	}
}

func (v *herdListView) delete(ctx context.Context, w io.Writer, args []string) error {
	id, valid := parseID(args)
	if !valid {
		fail(w, "Usage: delete <id>")
		return nil
	}
	yes, err := confirm(v.d.Prompt, "Are you sure you want to delete this herd?")
	if err != nil || !yes {
		return err
	}
	if err := v.d.API.DeleteHerd(ctx, id); err != nil {
		fail(w, "Failed to delete herd")
		return nil
	}
	notice(w, "Herd deleted")
	return nil
}

func navigateID(nav Navigator, name string, path func(int64) string) func(context.Context, io.Writer, []string) error {
	return func(_ context.Context, w io.Writer, args []string) error {
		id, valid := parseID(args)
		if !valid {
			fail(w, "Usage: "+name+" <id>")
			return nil
		}
		nav.Navigate(path(id))
		return nil
	}
}

// ranchView is the compact herd screen: one selected herd with inline
// edits of its cow count, name and location.
type ranchView struct {
	d      Deps
	herdID int64
	herd   *models.Herd
}

func (v *ranchView) Title() string { return "My ranch" }

func (v *ranchView) Render(ctx context.Context, w io.Writer) error {
	herds, err := v.d.API.Herds(ctx)
	if err != nil {
		failLoad(w, err, "Failed to load herds")
		return nil
	}
	if len(herds) == 0 {
		_, err := fmt.Fprintln(w, "No herds yet. Use 'go /herds/add' to create one.")
		return err
	}
	if v.herdID == 0 {
		v.herdID = herds[0].ID
	}

	h, err := v.d.API.Herd(ctx, v.herdID)
	if err != nil {
		v.herd = nil
		failLoad(w, err, "Failed to load herd details")
		return nil
	}
	v.herd = h

	for _, o := range herds {
		marker := " "
		if o.ID == v.herdID {
			marker = "*"
		}
		fmt.Fprintf(w, " %s #%d %s\n", marker, o.ID, o.Name)
	}
	location := h.Location()
	if location == "" {
		location = "-"
	}
	_, err = fmt.Fprintf(w, "\nRanch:    %s\nCows:     %d\nLocation: %s\n", h.Name, h.CowCount, location)
	return err
}

func (v *ranchView) Commands() []Command {
	return []Command{
		{Name: "herd", Usage: "herd <id>", Help: "select a herd", Run: v.selectHerd},
		{Name: "cows", Usage: "cows [count]", Help: "update the cow count", Run: v.updateCows},
		{Name: "name", Usage: "name [ranch name]", Help: "rename the ranch", Run: v.updateName},
		{Name: "location", Help: "update the location", Run: v.updateLocation},
	}
}

func (v *ranchView) selectHerd(_ context.Context, w io.Writer, args []string) error {
	id, valid := parseID(args)
	if !valid {
		fail(w, "Usage: herd <id>")
		return nil
	}
	v.herdID = id
	return nil
}

// ParseCowCount validates a ranch cow count edit.
func ParseCowCount(raw string) (int, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "Please enter the number of cows"
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "Please enter a valid number"
	}
	if n <= 0 {
		return 0, "Cow count must be greater than zero"
	}
	if n > MaxCowCount {
		return 0, "Cow count seems unusually high. Please verify your input"
	}
	return n, ""
}

// ValidateRanchName checks a new ranch name and returns the trimmed name.
func ValidateRanchName(raw string) (string, string) {
	name := strings.TrimSpace(raw)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return "", "Ranch name cannot be empty"
	case n < MinRanchNameLen:
		return "", "Ranch name must be at least 2 characters"
	case n > MaxRanchNameLen:
		return "", "Ranch name must be less than 50 characters"
	}
	return name, ""
}

// argOrPrompt joins args, prompting when there are none.
func argOrPrompt(p Prompter, args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return p.Text(prompt)
}

func (v *ranchView) updateCows(ctx context.Context, w io.Writer, args []string) error {
	if v.herd == nil {
		fail(w, "Failed to load herd details")
		return nil
	}
	raw, err := argOrPrompt(v.d.Prompt, args, "Number of cows")
	if err != nil {
		return err
	}
	n, msg := ParseCowCount(raw)
	if msg != "" {
		fail(w, msg)
		return nil
	}
	in := v.herd.Input()
	in.CowCount = n
	return v.save(ctx, w, in, "Failed to update cow count")
}

func (v *ranchView) updateName(ctx context.Context, w io.Writer, args []string) error {
	if v.herd == nil {
		fail(w, "Failed to load herd details")
		return nil
	}
	raw, err := argOrPrompt(v.d.Prompt, args, "Ranch name")
	if err != nil {
		return err
	}
	name, msg := ValidateRanchName(raw)
	if msg != "" {
		fail(w, msg)
		return nil
	}
	in := v.herd.Input()
	in.Name = name
	return v.save(ctx, w, in, "Failed to update ranch name")
}

func (v *ranchView) updateLocation(ctx context.Context, w io.Writer, _ []string) error {
	if v.herd == nil {
		fail(w, "Failed to load herd details")
		return nil
	}
	line1, err := v.d.Prompt.Text("Location line 1")
	if err != nil {
		return err
	}
	line2, err := v.d.Prompt.Text("Location line 2")
	if err != nil {
		return err
	}
	in := v.herd.Input()
	in.LocationLine1, in.LocationLine2 = optional(line1), optional(line2)
	return v.save(ctx, w, in, "Failed to update location")
}

func (v *ranchView) save(ctx context.Context, w io.Writer, in models.HerdInput, failMsg string) error {
	h, err := v.d.API.UpdateHerd(ctx, v.herd.ID, in)
	if err != nil {
		fail(w, failMsg)
		return nil
	}
	v.herd = h
	notice(w, "Saved")
	return nil
}

// herdFormView adds a herd, or edits one when id is set.
type herdFormView struct {
	d    Deps
	id   int64
	herd *models.Herd
}

func (v *herdFormView) Title() string {
	if v.id != 0 {
		return "Edit herd"
	}
	return "Add herd"
}

func (v *herdFormView) Render(ctx context.Context, w io.Writer) error {
	if v.id == 0 {
		_, err := fmt.Fprintln(w, "Use 'save' to enter the herd details, 'cancel' to go back.")
		return err
	}
	h, err := v.d.API.Herd(ctx, v.id)
	if err != nil {
		v.herd = nil
		failLoad(w, err, "Failed to load herd data")
		return nil
	}
	v.herd = h
	_, err = fmt.Fprintf(w, "Editing %q (%d cows). Use 'save' to change it, 'cancel' to go back.\n", h.Name, h.CowCount)
	return err
}

func (v *herdFormView) Commands() []Command {
	return []Command{
		{Name: "save", Help: "enter and save the herd", Run: v.save},
		{Name: "cancel", Help: "back to herds", Run: func(context.Context, io.Writer, []string) error {
			v.d.Nav.Navigate(router.HerdsPath)
			return nil
		}},
	}
}

func (v *herdFormView) save(ctx context.Context, w io.Writer, _ []string) error {
	var cur models.HerdInput
	if v.id != 0 {
		if v.herd == nil {
			fail(w, "Failed to load herd data")
			return nil
		}
		cur = v.herd.Input()
	}

	in, msg, err := promptHerd(v.d.Prompt, cur)
	if err != nil {
		return err
	}
	if msg != "" {
		fail(w, msg)
		return nil
	}

	if v.id == 0 {
		_, err = v.d.API.CreateHerd(ctx, in)
	} else {
		_, err = v.d.API.UpdateHerd(ctx, v.id, in)
	}
	if err != nil {
		if v.id == 0 {
			fail(w, "Failed to create herd")
		} else {
			fail(w, "Failed to update herd")
		}
		return nil
	}
	v.d.Nav.Navigate(router.HerdsPath)
	return nil
}

type herdDetailView struct {
	d  Deps
	id int64
}

func (v *herdDetailView) Title() string { return "Herd" }

func (v *herdDetailView) Render(ctx context.Context, w io.Writer) error {
	h, err := v.d.API.Herd(ctx, v.id)
	if err != nil {
		failLoad(w, err, "Failed to load herd data")
		return nil
	}
	records, err := v.d.API.MilkRecords(ctx, v.id)
	if err != nil {
		failLoad(w, err, "Failed to load herd data")
		return nil
	}

	fmt.Fprintf(w, "%s\nCows: %d\n", h.Name, h.CowCount)
	if loc := h.Location(); loc != "" {
		fmt.Fprintf(w, "Location: %s\n", loc)
	}

	s := HerdStats(*h, records)
	fmt.Fprintf(w, "\nTotal production: %s   Days recorded: %d   Average per day: %s\n\n",
		liters(s.TotalLiters), s.DaysRecorded, liters(s.AveragePerDay))
	chart(w, "Milk production over time", sortedCopy(records), byDate)
	return nil
}

// HerdStats summarizes records on the client, one record counting as one day.
func HerdStats(h models.Herd, records []models.MilkRecord) models.Stats {
	total := 0.0
	for _, r := range records {
		total += r.AmountLiters
	}
	return models.NewStats(total, len(records), h.CowCount)
}

func (v *herdDetailView) Commands() []Command {
	return []Command{
		{Name: "edit", Help: "edit this herd", Run: func(context.Context, io.Writer, []string) error {
			v.d.Nav.Navigate(herdEditPath(v.id))
			return nil
		}},
		{Name: "add", Help: "record milk production for this herd", Run: func(context.Context, io.Writer, []string) error {
			v.d.Nav.Navigate(router.MilkAddPath + "?herd_id=" + strconv.FormatInt(v.id, 10))
			return nil
		}},
	}
}
