// Package session holds the CLI's authentication state: who is logged in,
// and the token lifecycle behind it.
//
// A Store starts Unresolved, leaves that state exactly once during Init,
// and afterwards moves between Authenticated and Anonymous. Operations never
// return errors; they report success as a bool and keep a human-readable
// message in Err.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/milktracker/internal/client/api"
	"github.com/dmitrijs2005/milktracker/internal/client/storage"
	"github.com/dmitrijs2005/milktracker/internal/logging"
	"github.com/dmitrijs2005/milktracker/internal/models"
)

type State int

const (
	Unresolved State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

// LoginPath is where the store sends the user after logout or expiry.
const LoginPath = "/login"

// Fallback messages used when the backend gives no detail.
const (
	MsgLoginFailed      = "Login failed. Please check your credentials."
	MsgRegisterFailed   = "Registration failed. This email may already be in use."
	MsgMembershipFailed = "Failed to update membership"
	MsgProfileFailed    = "Failed to update profile"
	MsgDeleteFailed     = "Failed to delete account"
)

// Backend is the part of the API client the store needs.
type Backend interface {
	Token(ctx context.Context, email, password string) (*models.Token, error)
	Me(ctx context.Context) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	UpdateMembership(ctx context.Context, m models.MembershipType) (*models.User, error)
	DeleteAccount(ctx context.Context) error
}

type Navigator interface {
	Navigate(path string)
}

// Store is safe for concurrent use. The mutex only guards fields; backend
// calls run unlocked because a 401 re-enters the store through Expire.
type Store struct {
	backend Backend
	tokens  storage.TokenStore
	nav     Navigator
	logger  logging.Logger

	mu    sync.RWMutex
	state State
	user  *models.User
	err   string
}

func New(b Backend, tokens storage.TokenStore, nav Navigator, l logging.Logger) *Store {
	return &Store{
		backend: b,
		tokens:  tokens,
		nav:     nav,
		logger:  l.With("module", "session"),
		state:   Unresolved,
	}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the current user, nil unless Authenticated.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Err is the message left by the last failed operation.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) ClearErr() {
	s.setErr("")
}

func (s *Store) setErr(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

func (s *Store) authenticate(u *models.User) {
	s.mu.Lock()
	s.user, s.state, s.err = u, Authenticated, ""
	s.mu.Unlock()
}

func (s *Store) anonymous() {
	s.mu.Lock()
	s.user, s.state = nil, Anonymous
	s.mu.Unlock()
}

// Init resolves the startup state from the stored token. A token the
// backend rejects is cleared. Calling Init again is a no-op.
func (s *Store) Init(ctx context.Context) {
	if s.State() != Unresolved {
		return
	}

	tok, err := s.tokens.Token(ctx)
	if err != nil {
		s.logger.Warn(ctx, "read stored token", "error", err)
	}
	if err != nil || tok == "" {
		s.anonymous()
		return
	}

	u, err := s.backend.Me(ctx)
	if err != nil {
		s.logger.Info(ctx, "stored token rejected", "error", err)
		s.clearToken(ctx)
		s.anonymous()
		return
	}
	s.authenticate(u)
}

// Login exchanges credentials for a token, persists it, then loads the user.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	tok, err := s.backend.Token(ctx, email, password)
	if err != nil {
		s.setErr(api.Describe(err, MsgLoginFailed))
		return false
	}

	if err := s.tokens.SaveToken(ctx, tok.AccessToken); err != nil {
		s.logger.Error(ctx, "save token", "error", err)
		s.setErr(MsgLoginFailed)
		return false
	}

	u, err := s.backend.Me(ctx)
	if err != nil {
		s.clearToken(ctx)
		s.anonymous()
		s.setErr(api.Describe(err, MsgLoginFailed))
		return false
	}

	s.authenticate(u)
	return true
}

// Register creates the account and logs in with the same credentials. An
// empty username is sent as the email.
func (s *Store) Register(ctx context.Context, email, password, username string) bool {
	if username == "" {
		username = email
	}

	_, err := s.backend.Register(ctx, models.RegisterRequest{Email: email, Password: password, Username: username})
	if err != nil {
		s.setErr(api.Describe(err, MsgRegisterFailed))
		return false
	}
	return s.Login(ctx, email, password)
}

// Logout forgets the token and user and returns to the login view.
func (s *Store) Logout(ctx context.Context) {
	s.clearToken(ctx)
	s.anonymous()
	s.nav.Navigate(LoginPath)
}

// Expire is the global authorization-failure hook wired into the API
// client. The middleware has already dropped the token.
func (s *Store) Expire(ctx context.Context) {
	s.logger.Info(ctx, "session expired")
	s.anonymous()
	s.nav.Navigate(LoginPath)
}

// UpdateMembership replaces the session user with the server's response.
func (s *Store) UpdateMembership(ctx context.Context, m models.MembershipType) bool {
	u, err := s.backend.UpdateMembership(ctx, m)
	if err != nil {
		s.setErr(api.Describe(err, MsgMembershipFailed))
		return false
	}
	s.replaceUser(u)
	return true
}

func (s *Store) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) bool {
	u, err := s.backend.UpdateProfile(ctx, upd)
	if err != nil {
		s.setErr(api.Describe(err, MsgProfileFailed))
		return false
	}
	s.replaceUser(u)
	return true
}

// DeleteAccount removes the account. Failure leaves the session untouched.
func (s *Store) DeleteAccount(ctx context.Context) bool {
	if err := s.backend.DeleteAccount(ctx); err != nil {
		s.setErr(api.Describe(err, MsgDeleteFailed))
		return false
	}
	s.clearToken(ctx)
	s.anonymous()
	s.nav.Navigate(LoginPath)
	return true
}

// replaceUser swaps in u unless the session ended while the request was
// in flight.
func (s *Store) replaceUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Authenticated {
		s.user = u
	}
	s.err = ""
}

func (s *Store) clearToken(ctx context.Context) {
	if err := s.tokens.ClearToken(ctx); err != nil {
		s.logger.Error(ctx, "clear token", "error", err)
	}
}
