package router

import "github.com/dmitrijs2005/milktracker/internal/client/session"

type Decision int

const (
	// RenderLoading shows only a neutral placeholder.
	RenderLoading Decision = iota
	RedirectLogin
	RenderView
)

func (d Decision) String() string {
	switch d {
	case RenderLoading:
		return "loading"
	case RedirectLogin:
		return "redirect-login"
	case RenderView:
		return "render"
	}
	return "unknown"
}

// Guard decides what a protected route may show in the given state. It is
// a pure function and must be evaluated on every render.
func Guard(state session.State, r Route) Decision {
	if r.Public {
		return RenderView
	}
	switch state {
	case session.Authenticated:
		return RenderView
	case session.Anonymous:
		return RedirectLogin
	default:
		return RenderLoading
	}
}

// Resolution is the outcome of resolving a path for the current state.
type Resolution struct {
	Decision Decision
	Match    Match
	// Redirect, when set, is where the shell should navigate instead.
	Redirect string
	NotFound bool
}

// Resolve combines matching, the "/" redirect and the guard.
func (t *Table) Resolve(state session.State, path string) Resolution {
	if path == "" || path == RootPath {
		return Resolution{Redirect: DefaultPath}
	}

	m, ok := t.Match(path)
	if !ok {
		return Resolution{NotFound: true, Decision: RenderView}
	}

	d := Guard(state, m.Route)
	res := Resolution{Decision: d, Match: m}
	if d == RedirectLogin {
		res.Redirect = LoginPath
	}
	return res
}
