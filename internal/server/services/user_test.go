package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/dbx"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"github.com/dmitrijs2005/milktracker/internal/server/auth"
	"github.com/dmitrijs2005/milktracker/internal/server/config"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/herds"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/milk"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/milktracker/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{SecretKey: "k", AccessTokenValidityDuration: time.Hour}
}

func plainHash(p string) (string, error) { return "h:" + p, nil }
func plainCheck(h, p string) bool        { return h == "h:"+p }

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	t.Helper()
	s := NewUserService(db, rm, testConfig())
	s.hash, s.check = plainHash, plainCheck
	return s
}

func register(t *testing.T, s *UserService, email, username string) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), models.RegisterRequest{Email: email, Password: "pw", Username: username})
	require.NoError(t, err)
	return u
}

func detail(err error) string {
	var e *common.Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}

// --- register / login ---

func TestRegister_DefaultsUsernameToEmail(t *testing.T) {
	s := newUserService(t, nil, repomanager.NewMemoryRepositoryManager())
	u := register(t, s, "ann@example.com", "")
	assert.Equal(t, "ann@example.com", u.Username)
	assert.Equal(t, models.MembershipFree, u.MembershipType)
	assert.True(t, u.IsActive)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newUserService(t, nil, repomanager.NewMemoryRepositoryManager())
	register(t, s, "ann@example.com", "ann")

	_, err := s.Register(context.Background(), models.RegisterRequest{Email: "ann@example.com", Password: "x"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Equal(t, "Email already registered", detail(err))
}

func TestRegister_Validation(t *testing.T) {
	s := newUserService(t, nil, repomanager.NewMemoryRepositoryManager())
	_, err := s.Register(context.Background(), models.RegisterRequest{Email: "nope", Password: "x"})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = s.Register(context.Background(), models.RegisterRequest{Email: "a@b.c"})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLogin_IssuesTokenForUser(t *testing.T) {
	s := newUserService(t, nil, repomanager.NewMemoryRepositoryManager())
	u := register(t, s, "ann@example.com", "ann")

	tok, err := s.Login(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)

	id, err := auth.GetUserIDFromToken(tok.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	me, err := s.Authenticate(context.Background(), tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ann", me.Username)
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newUserService(t, nil, repomanager.NewMemoryRepositoryManager())
	register(t, s, "ann@example.com", "ann")

	for _, tc := range []struct{ email, pw string }{
		{"ann@example.com", "wrong"},
		{"bob@example.com", "pw"},
	} {
		_, err := s.Login(context.Background(), tc.email, tc.pw)
		require.ErrorIs(t, err, common.ErrorUnauthorized)
		assert.Equal(t, "Incorrect email or password", detail(err))
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	rm := repomanager.NewMemoryRepositoryManager()
	s := newUserService(t, nil, rm)

	_, err := s.Authenticate(context.Background(), "garbage")
	assert.Equal(t, "Could not validate credentials", detail(err))

	// valid signature, unknown user
	tok, err := auth.GenerateToken(999, []byte("k"), time.Hour)
	require.NoError(t, err)
	_, err = s.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

// --- profile ---

func strp(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	s := newUserService(t, nil, repomanager.NewMemoryRepositoryManager())
	ann := register(t, s, "ann@example.com", "ann")
	register(t, s, "bob@example.com", "bob")
	ctx := context.Background()

	_, err := s.UpdateProfile(ctx, ann.ID, models.ProfileUpdate{Username: strp("bob")})
	assert.Equal(t, "Username already in use", detail(err))

	_, err = s.UpdateProfile(ctx, ann.ID, models.ProfileUpdate{Email: strp("bob@example.com")})
	assert.Equal(t, "Email already in use", detail(err))

	u, err := s.UpdateProfile(ctx, ann.ID, models.ProfileUpdate{Username: strp("annie"), Password: strp("  ")})
	require.NoError(t, err)
	assert.Equal(t, "annie", u.Username)

	// blank password left the old one in place
	_, err = s.Login(ctx, "ann@example.com", "pw")
	require.NoError(t, err)

	_, err = s.UpdateProfile(ctx, ann.ID, models.ProfileUpdate{Password: strp("new")})
	require.NoError(t, err)
	_, err = s.Login(ctx, "ann@example.com", "new")
	assert.NoError(t, err)
}

type fakeUsersRepo struct {
	usersrepo.Repository
	user      *models.User
	updateErr error
}

func (f *fakeUsersRepo) GetByID(context.Context, int64) (*models.User, error) {
	u := *f.user
	return &u, nil
}
func (f *fakeUsersRepo) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, common.ErrorNotFound
}
func (f *fakeUsersRepo) Update(_ context.Context, u *models.User) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return u, nil
}

type fakeRepoManager struct {
	u usersrepo.Repository
	h herds.Repository
	m milk.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.u }
func (m *fakeRepoManager) Herds(dbx.DBTX) herds.Repository              { return m.h }
func (m *fakeRepoManager) Milk(dbx.DBTX) milk.Repository                { return m.m }

func TestUpdateProfile_CommitsTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: &fakeUsersRepo{user: &models.User{ID: 1, Username: "ann"}}}
	s := newUserService(t, db, rm)

	u, err := s.UpdateProfile(context.Background(), 1, models.ProfileUpdate{Username: strp("annie")})
	require.NoError(t, err)
	assert.Equal(t, "annie", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{u: &fakeUsersRepo{
		user:      &models.User{ID: 1, Username: "ann"},
		updateErr: errors.New("db down"),
	}}
	s := newUserService(t, db, rm)

	_, err = s.UpdateProfile(context.Background(), 1, models.ProfileUpdate{Username: strp("annie")})
	assert.EqualError(t, err, "db down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- membership / delete ---

func TestUpdateMembership(t *testing.T) {
	s := newUserService(t, nil, repomanager.NewMemoryRepositoryManager())
	u := register(t, s, "ann@example.com", "ann")

	got, err := s.UpdateMembership(context.Background(), u.ID, "lifetime")
	require.NoError(t, err)
	assert.Equal(t, models.MembershipLifetime, got.MembershipType)

	_, err = s.UpdateMembership(context.Background(), u.ID, "gold")
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Equal(t, "Invalid membership type. Must be one of: free, annual, lifetime", detail(err))
}

func TestDeleteAccount(t *testing.T) {
	s := newUserService(t, nil, repomanager.NewMemoryRepositoryManager())
	u := register(t, s, "ann@example.com", "ann")

	require.NoError(t, s.DeleteAccount(context.Background(), u.ID))
	_, err := s.Login(context.Background(), "ann@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.ErrorIs(t, s.DeleteAccount(context.Background(), u.ID), common.ErrorNotFound)
}
