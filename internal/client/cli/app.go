package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/dmitrijs2005/milktracker/internal/client/api"
	"github.com/dmitrijs2005/milktracker/internal/client/config"
	"github.com/dmitrijs2005/milktracker/internal/client/device"
	"github.com/dmitrijs2005/milktracker/internal/client/router"
	"github.com/dmitrijs2005/milktracker/internal/client/session"
	"github.com/dmitrijs2005/milktracker/internal/client/storage"
	"github.com/dmitrijs2005/milktracker/internal/client/views"
	"github.com/dmitrijs2005/milktracker/internal/logging"
	"github.com/dmitrijs2005/milktracker/internal/netx"

	_ "modernc.org/sqlite"
)

// layout is what the App needs from the device observer.
type layout interface {
	Variant() device.Variant
	Width() int
	Run(ctx context.Context)
}

type App struct {
	config  *config.Config
	db      *sql.DB
	logger  logging.Logger
	session *session.Store
	table   *router.Table
	nav     *router.Navigator
	layout  layout
	deps    views.Deps
	reader  *bufio.Reader
	out     io.Writer

	// the view is rebuilt only when the path or the variant changes
	key  string
	view views.View
}

func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, c.StorePath)
	if err != nil {
		l.Error(ctx, "error initializing database", "path", c.StorePath, "error", err)
		return nil, err
	}
	tokens := storage.NewKVTokenStore(storage.NewSQLiteKV(db))

	app, err := newApp(c, l, tokens, &http.Client{}, os.Stdin, os.Stdout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.db = db
	return app, nil
}

// newApp wires everything but the local database, so tests can run it
// against an httptest backend.
func newApp(c *config.Config, l logging.Logger, tokens storage.TokenStore, hc *http.Client, in io.Reader, out io.Writer) (*App, error) {
	nav := router.NewNavigator(router.DefaultPath)

	// the 401 hook needs the store, and the store needs the client
	var sess *session.Store
	do := api.Chain(api.HTTPDoer(hc),
		api.UserAgent(c.UserAgent),
		api.Logging(l),
		api.BearerToken(tokens),
		api.OnUnauthorized(tokens, func(ctx context.Context) { sess.Expire(ctx) }),
	)
	client, err := api.New(c.ServerURL, do, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	sess = session.New(client, tokens, nav, l)

	reader := bufio.NewReader(in)
	a := &App{
		config:  c,
		logger:  l.With("module", "cli"),
		session: sess,
		table:   router.NewTable(),
		nav:     nav,
		layout:  device.NewObserver(c.UserAgent, c.Width, l),
		reader:  reader,
		out:     out,
	}
	a.deps = views.Deps{
		Session:   sess,
		API:       client,
		Nav:       nav,
		Prompt:    &prompter{reader: reader, w: out},
		Files:     netx.NewDownloader(hc),
		Logger:    l,
		ExportDir: c.ExportDir,
	}
	return a, nil
}

// Run resolves the session and blocks in the REPL until the user exits or
// ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.layout.Run(ctx)

	fmt.Fprintln(a.out, "Milk tracker CLI (type 'help' for commands)")
	a.session.Init(ctx)
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) status() string {
	who := "guest"
	if u := a.session.User(); u != nil {
		who = u.Username
	}
	return fmt.Sprintf("(%s %s)", who, a.nav.Current())
}

// maxRenderPasses bounds redirects and navigation triggered while drawing,
// e.g. a 401 during a view's fetch.
const maxRenderPasses = 4

// Render draws the current path. The guard is evaluated on every pass.
func (a *App) Render(ctx context.Context) {
	for i := 0; i < maxRenderPasses; i++ {
		path := a.nav.Current()
		res := a.table.Resolve(a.session.State(), path)
		if res.Redirect != "" {
			a.nav.Replace(res.Redirect)
			continue
		}

		v := a.current(res)
		if title := v.Title(); title != "" {
			fmt.Fprintf(a.out, "\n== %s ==\n", title)
		}
		if err := v.Render(ctx, a.out); err != nil {
			a.logger.Warn(ctx, "render failed", "path", path, "error", err)
		}
		if cmds := v.Commands(); len(cmds) > 0 {
			names := make([]string, len(cmds))
			for i, c := range cmds {
				names[i] = c.Name
			}
			fmt.Fprintf(a.out, "Commands: %s (help for more)\n", strings.Join(names, ", "))
		}

		if a.nav.Current() == path {
			return
		}
	}
}

func (a *App) current(res router.Resolution) views.View {
	switch {
	case res.NotFound:
		a.key, a.view = "", nil
		return views.NotFound(a.nav.Current())
	case res.Decision == router.RenderLoading:
		a.key, a.view = "", nil
		return views.Loading{}
	}

	variant := device.Classic
	if res.Match.Route.Switched {
		variant = a.layout.Variant()
	}
	key := res.Match.Path + "?" + res.Match.Query.Encode() + "|" + variant.String()
	if key != a.key || a.view == nil {
		a.key, a.view = key, views.Build(res.Match, variant, a.deps)
	}
	return a.view
}

var shortcuts = map[string]string{
	"dashboard": router.DefaultPath,
	"herds":     router.HerdsPath,
	"milk":      router.MilkListPath,
	"profile":   router.ProfilePath,
}

// Exec runs a command of the current view, falling back to the global
// navigation commands.
func (a *App) Exec(ctx context.Context, cmd string, args []string) bool {
	if a.view != nil {
		for _, c := range a.view.Commands() {
			if c.Name != cmd {
				continue
			}
			a.session.ClearErr()
			if err := c.Run(ctx, a.out, args); err != nil {
				if errors.Is(err, io.EOF) {
					fmt.Fprintln(a.out, "Input closed.")
				}
				a.logger.Warn(ctx, "command failed", "command", cmd, "error", err)
			}
			return true
		}
	}

	switch cmd {
	case "go":
		if len(args) != 1 || !strings.HasPrefix(args[0], "/") {
			fmt.Fprintln(a.out, "Usage: go <path>")
			return true
		}
		a.nav.Navigate(args[0])
	case "back":
		a.nav.Back()
	case "refresh":
	case "logout":
		a.session.Logout(ctx)
	case "layout":
		fmt.Fprintf(a.out, "Layout: %s (width %d)\n", a.layout.Variant(), a.layout.Width())
	default:
		path, ok := shortcuts[cmd]
		if !ok {
			return false
		}
		a.nav.Navigate(path)
	}
	return true
}

func (a *App) Help() string {
	var b strings.Builder
	if a.view != nil {
		for _, c := range a.view.Commands() {
			usage := c.Usage
			if usage == "" {
				usage = c.Name
			}
			fmt.Fprintf(&b, "  %-36s %s\n", usage, c.Help)
		}
	}
	names := make([]string, 0, len(shortcuts))
	for n := range shortcuts {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Fprintf(&b, "Navigation: go <path>, back, refresh, %s\n", strings.Join(names, ", "))
	b.WriteString("Other: layout, logout, help, exit")
	return b.String()
}
