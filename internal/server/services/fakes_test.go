package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/readykit/readykit/internal/dbx"
	"github.com/readykit/readykit/internal/server/models"
	sessionsrepo "github.com/readykit/readykit/internal/server/repositories/sessions"
	userdatarepo "github.com/readykit/readykit/internal/server/repositories/userdata"
	usersrepo "github.com/readykit/readykit/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getByEmailOut *models.User
	getByEmailErr error

	getByIDOut *models.User
	getByIDErr error

	deleteErr   error
	deletedIDs  []string
	createCalls int
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getByEmailErr != nil {
		return nil, f.getByEmailErr
	}
	return f.getByEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDOut, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return f.deleteErr
}

type fakeSessionsRepo struct {
	createErrs []error // one per call; nil-padded
	created    []*models.Session

	getOut *models.Session
	getErr error

	deleteByTokenErr error
	deletedTokens    []string

	deleteByUserErr error
	deletedUsers    []string

	deleteExpiredN   int64
	deleteExpiredErr error
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *models.Session) error {
	call := len(f.created)
	f.created = append(f.created, s)
	if call < len(f.createErrs) {
		return f.createErrs[call]
	}
	return nil
}

func (f *fakeSessionsRepo) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeSessionsRepo) DeleteByToken(ctx context.Context, token string) error {
	f.deletedTokens = append(f.deletedTokens, token)
	return f.deleteByTokenErr
}

func (f *fakeSessionsRepo) DeleteByUser(ctx context.Context, userID string) error {
	f.deletedUsers = append(f.deletedUsers, userID)
	return f.deleteByUserErr
}

func (f *fakeSessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.deleteExpiredN, f.deleteExpiredErr
}

type fakeUserDataRepo struct {
	getOut *models.UserData
	getErr error

	upsertErr      error
	upsertPayloads []json.RawMessage

	deleteErr  error
	deletedIDs []string
}

func (f *fakeUserDataRepo) Get(ctx context.Context, userID string) (*models.UserData, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUserDataRepo) Upsert(ctx context.Context, userID string, payload json.RawMessage) error {
	f.upsertPayloads = append(f.upsertPayloads, payload)
	return f.upsertErr
}

func (f *fakeUserDataRepo) Delete(ctx context.Context, userID string) error {
	f.deletedIDs = append(f.deletedIDs, userID)
	return f.deleteErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSessionsRepo
	d *fakeUserDataRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository {
	if m.u == nil {
		m.u = &fakeUsersRepo{}
	}
	return m.u
}

func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository {
	if m.s == nil {
		m.s = &fakeSessionsRepo{}
	}
	return m.s
}

func (m *fakeRepoManager) UserData(db dbx.DBTX) userdatarepo.Repository {
	if m.d == nil {
		m.d = &fakeUserDataRepo{}
	}
	return m.d
}
