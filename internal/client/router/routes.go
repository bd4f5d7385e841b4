// Package router maps CLI navigation paths to views and decides, on every
// render, whether the session may see them.
package router

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
)

// Route names.
const (
	Login          = "login"
	Register       = "register"
	Onboarding     = "onboarding"
	Dashboard      = "dashboard"
	Profile        = "profile"
	Herds          = "herds"
	HerdAdd        = "herd-add"
	HerdEdit       = "herd-edit"
	HerdDetail     = "herd-detail"
	MilkList       = "milk-list"
	MilkAdd        = "milk-add"
	MilkEdit       = "milk-edit"
	RootPath       = "/"
	DefaultPath    = "/dashboard"
	LoginPath      = "/login"
	RegisterPath   = "/register"
	OnboardingPath = "/onboarding"
	HerdsPath      = "/herds"
	MilkListPath   = "/milk-production"
	ProfilePath    = "/profile"
	HerdAddPath    = "/herds/add"
	MilkAddPath    = "/milk-production/add"
)

// Route describes one navigable screen.
type Route struct {
	Name    string
	Pattern string
	// Public routes are rendered regardless of session state.
	Public bool
	// Switched routes have a classic and a compact variant.
	Switched bool
}

var routes = []Route{
	{Name: Login, Pattern: LoginPath, Public: true},
	{Name: Register, Pattern: RegisterPath, Public: true},
	{Name: Onboarding, Pattern: OnboardingPath},
	{Name: Dashboard, Pattern: DefaultPath, Switched: true},
	{Name: Profile, Pattern: ProfilePath, Switched: true},
	{Name: Herds, Pattern: HerdsPath, Switched: true},
	{Name: HerdAdd, Pattern: HerdAddPath},
	{Name: HerdEdit, Pattern: "/herds/edit/{id:[0-9]+}"},
	{Name: HerdDetail, Pattern: "/herds/{id:[0-9]+}"},
	{Name: MilkList, Pattern: MilkListPath},
	{Name: MilkAdd, Pattern: MilkAddPath},
	{Name: MilkEdit, Pattern: "/milk-production/edit/{id:[0-9]+}"},
}

// Match is a resolved path.
type Match struct {
	Route Route
	Path  string
	Vars  map[string]string
	Query url.Values
}

// ID returns the numeric {id} variable, 0 when absent.
func (m Match) ID() int64 {
	id, _ := strconv.ParseInt(m.Vars["id"], 10, 64)
	return id
}

// QueryID parses an integer query parameter, 0 when absent or invalid.
func (m Match) QueryID(key string) int64 {
	id, _ := strconv.ParseInt(m.Query.Get(key), 10, 64)
	return id
}

// Table matches paths against the route list.
type Table struct {
	mux    *mux.Router
	byName map[string]Route
}

func NewTable() *Table {
	t := &Table{mux: mux.NewRouter(), byName: make(map[string]Route, len(routes))}
	for _, r := range routes {
		t.mux.NewRoute().Path(r.Pattern).Methods(http.MethodGet).Name(r.Name)
		t.byName[r.Name] = r
	}
	return t
}

// Match resolves path (which may carry a query string) to a route.
func (t *Table) Match(path string) (Match, bool) {
	u, err := url.Parse(path)
	if err != nil {
		return Match{}, false
	}
	req := &http.Request{Method: http.MethodGet, URL: u, Header: http.Header{}}

	var rm mux.RouteMatch
	if !t.mux.Match(req, &rm) || rm.Route == nil {
		return Match{}, false
	}
	r, ok := t.byName[rm.Route.GetName()]
	if !ok {
		return Match{}, false
	}
	return Match{Route: r, Path: u.Path, Vars: rm.Vars, Query: u.Query()}, true
}
