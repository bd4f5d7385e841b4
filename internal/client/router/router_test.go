package router

import (
	"testing"

	"github.com/dmitrijs2005/milktracker/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tbl := NewTable()
	tests := []struct {
		path string
		name string
		id   int64
	}{
		{"/login", Login, 0},
		{"/register", Register, 0},
		{"/onboarding", Onboarding, 0},
		{"/dashboard", Dashboard, 0},
		{"/profile", Profile, 0},
		{"/herds", Herds, 0},
		{"/herds/add", HerdAdd, 0},
		{"/herds/edit/7", HerdEdit, 7},
		{"/herds/12", HerdDetail, 12},
		{"/milk-production", MilkList, 0},
		{"/milk-production/add?herd_id=3", MilkAdd, 0},
		{"/milk-production/edit/5", MilkEdit, 5},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := tbl.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.name, m.Route.Name)
			assert.Equal(t, tt.id, m.ID())
		})
	}

	m, _ := tbl.Match("/milk-production/add?herd_id=3")
	assert.Equal(t, int64(3), m.QueryID("herd_id"))
	assert.Equal(t, "/milk-production/add", m.Path)

	for _, p := range []string{"/herds/abc", "/nope", "/herds/edit/"} {
		_, ok := tbl.Match(p)
		assert.False(t, ok, p)
	}
}

func TestGuard(t *testing.T) {
	protected := Route{Name: Dashboard}
	public := Route{Name: Login, Public: true}

	assert.Equal(t, RenderLoading, Guard(session.Unresolved, protected))
	assert.Equal(t, RedirectLogin, Guard(session.Anonymous, protected))
	assert.Equal(t, RenderView, Guard(session.Authenticated, protected))

	for _, s := range []session.State{session.Unresolved, session.Anonymous, session.Authenticated} {
		assert.Equal(t, RenderView, Guard(s, public), s.String())
	}
}

func TestResolve(t *testing.T) {
	tbl := NewTable()

	assert.Equal(t, DefaultPath, tbl.Resolve(session.Authenticated, "/").Redirect)

	res := tbl.Resolve(session.Unresolved, "/dashboard")
	assert.Equal(t, RenderLoading, res.Decision)
	assert.Empty(t, res.Redirect)

	res = tbl.Resolve(session.Anonymous, "/herds/3")
	assert.Equal(t, RedirectLogin, res.Decision)
	assert.Equal(t, LoginPath, res.Redirect)

	res = tbl.Resolve(session.Authenticated, "/herds/3")
	assert.Equal(t, RenderView, res.Decision)
	assert.Equal(t, HerdDetail, res.Match.Route.Name)

	assert.True(t, tbl.Resolve(session.Authenticated, "/missing").NotFound)
}

func TestNavigator(t *testing.T) {
	n := NewNavigator("/login")
	n.Navigate("/dashboard")
	n.Navigate("/dashboard")
	n.Navigate("/herds")
	assert.Equal(t, "/herds", n.Current())

	require.True(t, n.Back())
	assert.Equal(t, "/dashboard", n.Current())
	n.Replace("/login")
	require.True(t, n.Back())
	assert.Equal(t, "/login", n.Current())
	assert.False(t, n.Back())
}
