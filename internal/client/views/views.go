// Package views renders the CLI screens and implements their commands.
//
// A View is built for one matched route and is kept by the shell while the
// path and layout variant stay the same, so views may hold screen state
// such as the selected herd or a pending confirmation.
package views

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/client/api"
	"github.com/dmitrijs2005/milktracker/internal/client/device"
	"github.com/dmitrijs2005/milktracker/internal/client/router"
	"github.com/dmitrijs2005/milktracker/internal/logging"
	"github.com/dmitrijs2005/milktracker/internal/models"
)

// Command is an action a view offers. Validation and backend failures are
// written to w; the returned error is reserved for input failures.
type Command struct {
	Name  string
	Usage string
	Help  string
	Run   func(ctx context.Context, w io.Writer, args []string) error
}

type View interface {
	Title() string
	Render(ctx context.Context, w io.Writer) error
	Commands() []Command
}

// Session is the part of the session store views use.
type Session interface {
	User() *models.User
	Err() string
	ClearErr()
	Login(ctx context.Context, email, password string) bool
	Register(ctx context.Context, email, password, username string) bool
	UpdateMembership(ctx context.Context, m models.MembershipType) bool
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) bool
	DeleteAccount(ctx context.Context) bool
}

// Backend is the part of the API client views use.
type Backend interface {
	Herds(ctx context.Context) ([]models.Herd, error)
	Herd(ctx context.Context, id int64) (*models.Herd, error)
	CreateHerd(ctx context.Context, in models.HerdInput) (*models.Herd, error)
	UpdateHerd(ctx context.Context, id int64, in models.HerdInput) (*models.Herd, error)
	DeleteHerd(ctx context.Context, id int64) error
	MilkRecords(ctx context.Context, herdID int64) ([]models.MilkRecord, error)
	MilkRecord(ctx context.Context, id int64) (*models.MilkRecord, error)
	CreateMilkRecord(ctx context.Context, in models.MilkRecordInput) (*models.MilkRecord, error)
	UpdateMilkRecord(ctx context.Context, id int64, in models.MilkRecordInput) (*models.MilkRecord, error)
	DeleteMilkRecord(ctx context.Context, id int64) error
	Stats(ctx context.Context, herdID int64, span models.TimeSpan) (*models.Stats, error)
	Export(ctx context.Context, herdID int64) (*models.Export, error)
}

type Navigator interface {
	Navigate(path string)
}

// Prompter reads form input.
type Prompter interface {
	Text(prompt string) (string, error)
	Secret(prompt string) (string, error)
}

// Downloader saves a presigned object to a local file.
type Downloader interface {
	Download(ctx context.Context, url, dst string) (int64, error)
}

type Deps struct {
	Session   Session
	API       Backend
	Nav       Navigator
	Prompt    Prompter
	Files     Downloader
	Logger    logging.Logger
	ExportDir string
	Now       func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Build returns the view for a matched route in the given layout variant.
func Build(m router.Match, v device.Variant, d Deps) View {
	compact := v == device.Compact
	switch m.Route.Name {
	case router.Login:
		return &loginView{d: d}
	case router.Register:
		return &registerView{d: d}
	case router.Onboarding:
		return &onboardingView{d: d}
	case router.Dashboard:
		if compact {
			return &compactDashboard{d: d, span: models.SpanWeek}
		}
		return &classicDashboard{d: d}
	case router.Profile:
		if compact {
			return &compactProfile{d: d}
		}
		return &classicProfile{d: d}
	case router.Herds:
		if compact {
			return &ranchView{d: d}
		}
		return &herdListView{d: d}
	case router.HerdAdd:
		return &herdFormView{d: d}
	case router.HerdEdit:
		return &herdFormView{d: d, id: m.ID()}
	case router.HerdDetail:
		return &herdDetailView{d: d, id: m.ID()}
	case router.MilkList:
		return &milkListView{d: d, herdID: m.QueryID("herd_id")}
	case router.MilkAdd:
		return &milkFormView{d: d, herdID: m.QueryID("herd_id")}
	case router.MilkEdit:
		return &milkFormView{d: d, id: m.ID()}
	}
	return NotFound(m.Path)
}

type notFound struct{ path string }

// NotFound renders the notice for an unknown path.
func NotFound(path string) View { return notFound{path: path} }

func (v notFound) Title() string { return "Not found" }

func (v notFound) Render(_ context.Context, w io.Writer) error {
	_, err := fmt.Fprintf(w, "Page %s not found. Try 'go /dashboard'.\n", v.path)
	return err
}

func (notFound) Commands() []Command { return nil }

// Loading is the neutral placeholder shown while the session is unresolved.
type Loading struct{}

func (Loading) Title() string { return "" }

func (Loading) Render(_ context.Context, w io.Writer) error {
	_, err := fmt.Fprintln(w, "Loading...")
	return err
}

func (Loading) Commands() []Command { return nil }

func fail(w io.Writer, msg string) {
	fmt.Fprintf(w, "Error: %s\n", msg)
}

// failLoad reports a failed fetch. A 401 is left to the session, which
// has already sent the user to the login screen.
func failLoad(w io.Writer, err error, msg string) {
	if api.IsStatus(err, http.StatusUnauthorized) {
		return
	}
	fail(w, msg)
}

func notice(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

// failWith appends detail to msg when the backend gave one.
func failWith(w io.Writer, msg, detail string) {
	if detail != "" && detail != msg {
		msg += ": " + detail
	}
	fail(w, msg)
}

func liters(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64) + " L"
}

func percent(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 1, 64) + "%"
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseID reads the single numeric argument of commands like "edit <id>".
func parseID(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	return id, err == nil && id > 0
}

func confirm(p Prompter, question string) (bool, error) {
	ans, err := p.Text(question + " [y/N]")
	if err != nil {
		return false, err
	}
	ans = strings.ToLower(strings.TrimSpace(ans))
	return ans == "y" || ans == "yes", nil
}

// textOr prompts with the current value and keeps it when the answer is
// empty.
func textOr(p Prompter, label, current string) (string, error) {
	prompt := label
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", label, current)
	}
	v, err := p.Text(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return current, nil
	}
	return strings.TrimSpace(v), nil
}

func herdNames(herds []models.Herd) map[int64]string {
	names := make(map[int64]string, len(herds))
	for _, h := range herds {
		names[h.ID] = h.Name
	}
	return names
}

func herdName(names map[int64]string, id int64) string {
	if n, ok := names[id]; ok {
		return n
	}
	return "Unknown"
}
