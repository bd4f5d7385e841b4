package views

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/client/api"
	"github.com/dmitrijs2005/milktracker/internal/logging"
	"github.com/dmitrijs2005/milktracker/internal/models"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// scripted answers prompts in order and fails once it runs out.
type scripted struct {
	answers []string
	asked   []string
}

func (s *scripted) next(prompt string) (string, error) {
	s.asked = append(s.asked, prompt)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *scripted) Text(prompt string) (string, error)   { return s.next(prompt) }
func (s *scripted) Secret(prompt string) (string, error) { return s.next(prompt) }

type recordingNav struct{ paths []string }

func (n *recordingNav) Navigate(p string) { n.paths = append(n.paths, p) }

func (n *recordingNav) last() string {
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

type fakeSession struct {
	user    *models.User
	err     string
	fail    bool
	calls   []string
	updates []models.ProfileUpdate
	nav     *recordingNav
}

func (s *fakeSession) User() *models.User { return s.user }
func (s *fakeSession) Err() string        { return s.err }
func (s *fakeSession) ClearErr()          { s.err = "" }

func (s *fakeSession) result(call string) bool {
	s.calls = append(s.calls, call)
	return !s.fail
}

func (s *fakeSession) Login(_ context.Context, email, password string) bool {
	return s.result("login " + email + " " + password)
}

func (s *fakeSession) Register(_ context.Context, email, password, username string) bool {
	return s.result("register " + email + " " + password + " " + username)
}

func (s *fakeSession) UpdateMembership(_ context.Context, m models.MembershipType) bool {
	if !s.result("membership " + string(m)) {
		return false
	}
	s.user.MembershipType = m
	return true
}

func (s *fakeSession) UpdateProfile(_ context.Context, upd models.ProfileUpdate) bool {
	s.updates = append(s.updates, upd)
	return s.result("profile")
}

func (s *fakeSession) DeleteAccount(context.Context) bool {
	if !s.result("delete") {
		return false
	}
	s.user = nil
	if s.nav != nil {
		s.nav.Navigate("/login")
	}
	return true
}

// fakeAPI is an in-memory backend. Setting failAll makes every call fail.
type fakeAPI struct {
	mu      sync.Mutex
	herds   []models.Herd
	records []models.MilkRecord
	stats   models.Stats
	export  *models.Export
	failAll error
	fail    map[string]error

	created     []models.MilkRecordInput
	updated     []models.MilkRecordInput
	herdInputs  []models.HerdInput
	deleted     []int64
	statsCalled []string
}

var errBoom = &api.APIError{Status: http.StatusInternalServerError}

func (f *fakeAPI) err(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	return f.fail[op]
}

func (f *fakeAPI) Herds(context.Context) ([]models.Herd, error) {
	if err := f.err("herds"); err != nil {
		return nil, err
	}
	return f.herds, nil
}

func (f *fakeAPI) Herd(_ context.Context, id int64) (*models.Herd, error) {
	if err := f.err("herd"); err != nil {
		return nil, err
	}
	for _, h := range f.herds {
		if h.ID == id {
			return &h, nil
		}
	}
	return nil, &api.APIError{Status: http.StatusNotFound, Detail: "Herd not found"}
}

func (f *fakeAPI) CreateHerd(_ context.Context, in models.HerdInput) (*models.Herd, error) {
	if err := f.err("create-herd"); err != nil {
		return nil, err
	}
	f.herdInputs = append(f.herdInputs, in)
	h := models.Herd{ID: int64(len(f.herds) + 1), Name: in.Name, CowCount: in.CowCount}
	f.herds = append(f.herds, h)
	return &h, nil
}

func (f *fakeAPI) UpdateHerd(_ context.Context, id int64, in models.HerdInput) (*models.Herd, error) {
	if err := f.err("update-herd"); err != nil {
		return nil, err
	}
	f.herdInputs = append(f.herdInputs, in)
	for i := range f.herds {
		if f.herds[i].ID == id {
			f.herds[i].Name, f.herds[i].CowCount = in.Name, in.CowCount
			f.herds[i].LocationLine1, f.herds[i].LocationLine2 = in.LocationLine1, in.LocationLine2
			h := f.herds[i]
			return &h, nil
		}
	}
	return nil, &api.APIError{Status: http.StatusNotFound}
}

func (f *fakeAPI) DeleteHerd(_ context.Context, id int64) error {
	if err := f.err("delete-herd"); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) MilkRecords(_ context.Context, herdID int64) ([]models.MilkRecord, error) {
	if err := f.err("records"); err != nil {
		return nil, err
	}
	var out []models.MilkRecord
	for _, r := range f.records {
		if herdID == 0 || r.HerdID == herdID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAPI) MilkRecord(_ context.Context, id int64) (*models.MilkRecord, error) {
	if err := f.err("record"); err != nil {
		return nil, err
	}
	for _, r := range f.records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, &api.APIError{Status: http.StatusNotFound}
}

func (f *fakeAPI) CreateMilkRecord(_ context.Context, in models.MilkRecordInput) (*models.MilkRecord, error) {
	if err := f.err("create-record"); err != nil {
		return nil, err
	}
	f.created = append(f.created, in)
	return &models.MilkRecord{ID: 99, HerdID: in.HerdID, AmountLiters: in.AmountLiters}, nil
}

func (f *fakeAPI) UpdateMilkRecord(_ context.Context, id int64, in models.MilkRecordInput) (*models.MilkRecord, error) {
	if err := f.err("update-record"); err != nil {
		return nil, err
	}
	f.updated = append(f.updated, in)
	return &models.MilkRecord{ID: id}, nil
}

func (f *fakeAPI) DeleteMilkRecord(_ context.Context, id int64) error {
	if err := f.err("delete-record"); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) Stats(_ context.Context, herdID int64, span models.TimeSpan) (*models.Stats, error) {
	if err := f.err("stats"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.statsCalled = append(f.statsCalled, string(span))
	f.mu.Unlock()
	s := f.stats
	return &s, nil
}

func (f *fakeAPI) Export(context.Context, int64) (*models.Export, error) {
	if err := f.err("export"); err != nil {
		return nil, err
	}
	if f.export == nil {
		return nil, &api.APIError{Status: http.StatusNotFound, Detail: "Export is not configured"}
	}
	return f.export, nil
}

type fakeFiles struct {
	url, dst string
	err      error
}

func (f *fakeFiles) Download(_ context.Context, url, dst string) (int64, error) {
	f.url, f.dst = url, dst
	if f.err != nil {
		return 0, f.err
	}
	return 42, nil
}

type harness struct {
	sess  *fakeSession
	api   *fakeAPI
	nav   *recordingNav
	in    *scripted
	files *fakeFiles
	deps  Deps
}

func newHarness(t *testing.T, answers ...string) *harness {
	t.Helper()
	h := &harness{
		api:   &fakeAPI{fail: map[string]error{}},
		nav:   &recordingNav{},
		in:    &scripted{answers: answers},
		files: &fakeFiles{},
	}
	h.sess = &fakeSession{user: &models.User{ID: 1, Email: "a@b.c", Username: "ann", MembershipType: models.MembershipFree}, nav: h.nav}
	h.deps = Deps{
		Session:   h.sess,
		API:       h.api,
		Nav:       h.nav,
		Prompt:    h.in,
		Files:     h.files,
		Logger:    logging.New(io.Discard, "text", "debug"),
		ExportDir: t.TempDir(),
		Now:       func() time.Time { return fixedNow },
	}
	return h
}

func run(t *testing.T, v View, name string, args ...string) string {
	t.Helper()
	for _, c := range v.Commands() {
		if c.Name == name {
			var buf bytes.Buffer
			if err := c.Run(context.Background(), &buf, args); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			return buf.String()
		}
	}
	t.Fatalf("command %q not offered", name)
	return ""
}

func render(t *testing.T, v View) string {
	t.Helper()
	var buf bytes.Buffer
	if err := v.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func hasCommand(v View, name string) bool {
	for _, c := range v.Commands() {
		if c.Name == name {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T { return &v }

var errNoResponse = errors.Join(api.ErrUnavailable, errors.New("dial tcp: connection refused"))

func contains(s, sub string) bool { return strings.Contains(s, sub) }
