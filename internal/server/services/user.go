// Package services contains the server's business logic. Services talk to
// storage only through repomanager, so one code path serves Postgres,
// transactions and the in-memory store.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/dbx"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"github.com/dmitrijs2005/milktracker/internal/server/auth"
	"github.com/dmitrijs2005/milktracker/internal/server/config"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/repomanager"
)

var (
	errEmailRegistered = common.NewError(common.ErrorAlreadyExists, "Email already registered")
	errEmailInUse      = common.NewError(common.ErrorAlreadyExists, "Email already in use")
	errUsernameInUse   = common.NewError(common.ErrorAlreadyExists, "Username already in use")
	errBadCredentials  = common.NewError(common.ErrorUnauthorized, "Incorrect email or password")
	errBadToken        = common.NewError(common.ErrorUnauthorized, "Could not validate credentials")
	errInactiveUser    = common.NewError(common.ErrorValidation, "Inactive user")
)

// UserService handles accounts: registration, login, profile and
// membership changes, deletion, and resolving bearer tokens to users.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	// hash and check are seams over bcrypt; tests swap in cheap versions.
	hash  func(string) (string, error)
	check func(hash, password string) bool
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		hash:                        auth.HashPassword,
		check:                       auth.CheckPassword,
	}
}

// Register creates an account. An empty username defaults to the email.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, common.NewError(common.ErrorValidation, "A valid email is required")
	}
	if req.Password == "" {
		return nil, common.NewError(common.ErrorValidation, "Password is required")
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, errEmailRegistered
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	username := req.Username
	if username == "" {
		username = email
	}

	u, err := repo.Create(ctx, &models.User{Email: email, Username: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, errEmailRegistered
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login checks credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.Token, error) {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !s.check(u.PasswordHash, password) {
		return nil, errBadCredentials
	}

	access, err := auth.GenerateToken(u.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %v", common.ErrorInternal, err)
	}
	return &models.Token{AccessToken: access, TokenType: "bearer"}, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, errBadToken
	}
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errBadToken
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !u.IsActive {
		return nil, errInactiveUser
	}
	return u, nil
}

// UpdateProfile applies the non-nil fields of upd. Username and email must
// stay unique; a blank password is ignored. Checks and write share a
// transaction.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.User, error) {
	var out *models.User
	err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if upd.Username != nil && *upd.Username != u.Username {
			if taken, err := exists(repo.GetByUsername(ctx, *upd.Username)); err != nil {
				return err
			} else if taken {
				return errUsernameInUse
			}
			u.Username = *upd.Username
		}

		if upd.Email != nil && *upd.Email != u.Email {
			if !strings.Contains(*upd.Email, "@") {
				return common.NewError(common.ErrorValidation, "A valid email is required")
			}
			if taken, err := exists(repo.GetByEmail(ctx, *upd.Email)); err != nil {
				return err
			} else if taken {
				return errEmailInUse
			}
			u.Email = *upd.Email
		}

		if upd.Password != nil && strings.TrimSpace(*upd.Password) != "" {
			hash, err := s.hash(*upd.Password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			u.PasswordHash = hash
		}

		out, err = repo.Update(ctx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *UserService) UpdateMembership(ctx context.Context, userID int64, membership string) (*models.User, error) {
	m, err := models.ParseMembership(membership)
	if err != nil {
		return nil, common.NewError(common.ErrorValidation, err.Error())
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.MembershipType = m
	return repo.Update(ctx, u)
}

// DeleteAccount removes the user together with their herds and records.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.repomanager.Users(s.db).Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user %d: %w", userID, err)
	}
	return nil
}

// withTx runs fn in a transaction when a real database is configured and
// directly otherwise (memory storage has no *sql.DB).
func (s *UserService) withTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return runTx(ctx, s.db, fn)
}

func runTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, db, nil, fn)
}

// exists turns a lookup result into a presence flag, keeping real errors.
func exists[T any](_ T, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return false, err
}
