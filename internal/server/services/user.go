// Package services contains the business logic sitting between the HTTP
// layer and the repositories: account management, session lifecycle, and
// the per-user data document.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/readykit/readykit/internal/common"
	"github.com/readykit/readykit/internal/dbx"
	"github.com/readykit/readykit/internal/server/auth"
	"github.com/readykit/readykit/internal/server/config"
	"github.com/readykit/readykit/internal/server/models"
	"github.com/readykit/readykit/internal/server/repositories/repomanager"
	"github.com/readykit/readykit/internal/shared"
)

// tokenLength is the number of alphanumeric characters in a session token.
const tokenLength = 32

// tokenInsertAttempts bounds how many times a session insert is retried
// with a fresh token after a unique-violation on the token column.
const tokenInsertAttempts = 3

type UserService struct {
	db                      *sql.DB
	repomanager             repomanager.RepositoryManager
	sessionValidityDuration time.Duration
	bcryptCost              int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                      db,
		repomanager:             m,
		sessionValidityDuration: cfg.SessionValidityDuration,
		bcryptCost:              cfg.BcryptCost,
	}
}

// normalizeEmail fixes the case policy: emails are compared and stored in
// lower case.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new account. No session is issued; the caller must log
// in separately. A duplicate email yields common.ErrorAlreadyExists whether
// it is caught by the pre-insert check or by the unique index.
func (s *UserService) Signup(ctx context.Context, email, password, name string) (*models.User, error) {

	if email == "" || password == "" || name == "" {
		return nil, common.ErrorValidation
	}

	email = normalizeEmail(email)

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// Login verifies credentials and issues a new session valid for the
// configured window. Unknown email and wrong password are indistinguishable
// to the caller. Existing sessions for the user are left intact.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, *models.Session, error) {

	if email == "" || password == "" {
		return nil, nil, common.ErrorValidation
	}

	email = normalizeEmail(email)

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, nil, common.ErrorUnauthorized
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

func (s *UserService) createSession(ctx context.Context, userID string) (*models.Session, error) {

	repo := s.repomanager.Sessions(s.db)

	for attempt := 0; attempt < tokenInsertAttempts; attempt++ {
		token, err := shared.MakeRandString(tokenLength)
		if err != nil {
			return nil, common.ErrorInternal
		}

		session := &models.Session{
			ID:        uuid.NewString(),
			UserID:    userID,
			Token:     token,
			ExpiresAt: time.Now().Add(s.sessionValidityDuration),
		}

		err = repo.Create(ctx, session)
		if err == nil {
			return session, nil
		}
		if errors.Is(err, common.ErrorAlreadyExists) {
			// token collision, regenerate
			continue
		}
		return nil, common.ErrorInternal
	}

	return nil, common.ErrorInternal
}

// DeleteAccount removes the user's sessions, data document, and account row
// in one transaction. The schema-level ON DELETE CASCADE covers the same
// ground; the explicit deletes keep the cascade visible and testable.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Sessions(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := s.repomanager.UserData(tx).Delete(ctx, userID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, userID)
	})

	if err != nil {
		return common.ErrorInternal
	}

	return nil
}
