package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var userCols = []string{"id", "email", "username", "hashed_password", "is_active", "membership_type", "created_at"}

const (
	insertQ  = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*username,\s*hashed_password,\s*membership_type\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*is_active,\s*created_at\s*$`
	byEmailQ = `(?s)^SELECT\s+id,\s*email,\s*username,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	byIDQ    = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	updateQ  = `(?s)^UPDATE\s+users\s+SET\s+email\s*=\s*\$2,\s*username\s*=\s*\$3,\s*hashed_password\s*=\s*\$4,\s*membership_type\s*=\s*\$5\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+id,`
	deleteQ  = `^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
)

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(insertQ).
		WithArgs("a@farm.io", "a@farm.io", "hash", models.MembershipFree).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at"}).AddRow(int64(42), true, now))

	u, err := repo.Create(context.Background(), &models.User{Email: "a@farm.io", Username: "a@farm.io", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.True(t, u.IsActive)
	assert.Equal(t, models.MembershipFree, u.MembershipType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateMapsToAlreadyExists(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{Email: "a@farm.io", PasswordHash: "h"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Contains(t, err.Error(), "users_email_key")
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "a@farm.io"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(byEmailQ).
		WithArgs("a@farm.io").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(1), "a@farm.io", nil, "hash", true, "annual", time.Now()))

	u, err := repo.GetByEmail(context.Background(), "a@farm.io")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "", u.Username, "NULL username scans as empty")
	assert.Equal(t, models.MembershipAnnual, u.MembershipType)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(byIDQ).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByUsername_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+username\s*=\s*\$1$`).
		WithArgs("bessie").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(3), "b@farm.io", "bessie", "h", true, "free", time.Now()))

	u, err := repo.GetByUsername(context.Background(), "bessie")
	require.NoError(t, err)
	assert.Equal(t, "bessie", u.Username)
}

func TestUpdate_ReturnsStoredRow(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(updateQ).
		WithArgs(int64(1), "new@farm.io", "newname", "h2", models.MembershipLifetime).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(1), "new@farm.io", "newname", "h2", true, "lifetime", time.Now()))

	u, err := repo.Update(context.Background(), &models.User{
		ID: 1, Email: "new@farm.io", Username: "newname", PasswordHash: "h2", MembershipType: models.MembershipLifetime,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MembershipLifetime, u.MembershipType)
	assert.Equal(t, "newname", u.Username)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(deleteQ).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 1))

	mock.ExpectExec(deleteQ).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 2), common.ErrorNotFound)

	mock.ExpectExec(deleteQ).WithArgs(int64(3)).WillReturnError(errors.New("boom"))
	err := repo.Delete(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: boom")
}
