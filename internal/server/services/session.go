package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/readykit/readykit/internal/common"
	"github.com/readykit/readykit/internal/server/models"
	"github.com/readykit/readykit/internal/server/repositories/repomanager"
)

type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager) *SessionService {
	return &SessionService{db: db, repomanager: m}
}

// Resolve maps a bearer token to its live user. A missing, unknown, or
// expired token, and a token whose user no longer exists, all yield
// common.ErrorUnauthorized. Resolve has no side effects: there is no
// sliding expiry, a session lives exactly its issued window.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.User, error) {

	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	session, err := s.repomanager.Sessions(s.db).GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !time.Now().Before(session.ExpiresAt) {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// orphaned session
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// Logout deletes the session matching token. It is idempotent: deleting a
// token that was never issued, or one already deleted, succeeds.
func (s *SessionService) Logout(ctx context.Context, token string) error {

	if token == "" {
		return common.ErrorValidation
	}

	if err := s.repomanager.Sessions(s.db).DeleteByToken(ctx, token); err != nil {
		return common.ErrorInternal
	}

	return nil
}

// ReapExpired garbage-collects expired session rows. Correctness never
// depends on it; Resolve re-checks expiry on every call.
func (s *SessionService) ReapExpired(ctx context.Context) (int64, error) {
	return s.repomanager.Sessions(s.db).DeleteExpired(ctx, time.Now())
}
