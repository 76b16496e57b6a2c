package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/readykit/readykit/internal/common"
	"github.com/readykit/readykit/internal/server/repositories/repomanager"
)

// emptyDocument is what Get returns before the user's first write.
// "No data yet" is a valid, successful state, never an error.
var emptyDocument = json.RawMessage(`{}`)

type UserDataService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserDataService(db *sql.DB, m repomanager.RepositoryManager) *UserDataService {
	return &UserDataService{db: db, repomanager: m}
}

// Get returns the user's stored document, or an empty object when none
// exists yet.
func (s *UserDataService) Get(ctx context.Context, userID string) (json.RawMessage, error) {

	data, err := s.repomanager.UserData(s.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return emptyDocument, nil
		}
		return nil, common.ErrorInternal
	}

	return data.Payload, nil
}

// Save stores payload verbatim as the user's document, replacing any
// previous one wholesale. Last writer wins; there is no merge.
func (s *UserDataService) Save(ctx context.Context, userID string, payload json.RawMessage) error {

	if len(payload) == 0 || !json.Valid(payload) {
		return common.ErrorValidation
	}

	if err := s.repomanager.UserData(s.db).Upsert(ctx, userID, payload); err != nil {
		return common.ErrorInternal
	}

	return nil
}
