package userdata

import (
	"context"
	"encoding/json"

	"github.com/readykit/readykit/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*models.UserData, error)
	Upsert(ctx context.Context, userID string, payload json.RawMessage) error
	Delete(ctx context.Context, userID string) error
}
