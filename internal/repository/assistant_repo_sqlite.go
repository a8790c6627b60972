package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"assistant-backend/internal/models"
)

type SQLiteAssistantRepo struct {
	db *sqlx.DB
}

func NewSQLiteAssistantRepo(db *sqlx.DB) *SQLiteAssistantRepo {
	return &SQLiteAssistantRepo{db: db}
}

const sqliteAssistantColumns = `id, COALESCE(name, '') AS name, COALESCE(description, '') AS description,
	COALESCE(user_role, '') AS user_role, COALESCE(model_info, '') AS model_info`

func (r *SQLiteAssistantRepo) Create(ctx context.Context, a *models.Assistant) error {
	query := `INSERT INTO assistants (name, description, user_role, model_info)
		VALUES (?, ?, ?, ?) RETURNING id`

	if err := r.db.GetContext(ctx, &a.ID, query, a.Name, a.Description, a.UserRole, a.ModelInfo); err != nil {
		return storageErr("create", err)
	}
	return nil
}

func (r *SQLiteAssistantRepo) List(ctx context.Context) ([]*models.Assistant, error) {
	assistants := []*models.Assistant{}
	query := `SELECT ` + sqliteAssistantColumns + ` FROM assistants ORDER BY id`

	if err := r.db.SelectContext(ctx, &assistants, query); err != nil {
		return nil, storageErr("list", err)
	}
	return assistants, nil
}

func (r *SQLiteAssistantRepo) GetByID(ctx context.Context, id int64) (*models.Assistant, error) {
	a := &models.Assistant{}
	query := `SELECT ` + sqliteAssistantColumns + ` FROM assistants WHERE id = ?`

	if err := r.db.GetContext(ctx, a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get", err)
	}
	return a, nil
}
