// Package userdata provides the PostgreSQL-backed repository for the
// per-user JSON document.
package userdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/readykit/readykit/internal/common"
	"github.com/readykit/readykit/internal/dbx"
	"github.com/readykit/readykit/internal/server/models"
)

// PostgresRepository implements user-data storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.UserData, error) {
	query :=
		`SELECT user_id, payload, updated_at FROM user_data
		 WHERE user_id = $1
		 `

	data := &models.UserData{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&data.UserID, &data.Payload, &data.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return data, nil
}

// Upsert stores payload as the user's document, replacing any previous
// one in a single statement. Last writer wins.
func (r *PostgresRepository) Upsert(ctx context.Context, userID string, payload json.RawMessage) error {
	query := `
		INSERT INTO user_data (user_id, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = now();
	`

	res, err := r.db.ExecContext(ctx, query, userID, payload)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	query :=
		`DELETE FROM user_data
		 WHERE user_id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
