package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"assistant-backend/internal/models"
)

type PostgresAssistantRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAssistantRepo(pool *pgxpool.Pool) *PostgresAssistantRepo {
	return &PostgresAssistantRepo{pool: pool}
}

func (r *PostgresAssistantRepo) Create(ctx context.Context, a *models.Assistant) error {
	query := `INSERT INTO assistants (name, description, user_role, model_info)
		VALUES ($1, $2, $3, $4) RETURNING id`

	if err := r.pool.QueryRow(ctx, query, a.Name, a.Description, a.UserRole, a.ModelInfo).Scan(&a.ID); err != nil {
		return storageErr("create", err)
	}
	return nil
}

func (r *PostgresAssistantRepo) List(ctx context.Context) ([]*models.Assistant, error) {
	query := `SELECT id, COALESCE(name, ''), COALESCE(description, ''), COALESCE(user_role, ''), COALESCE(model_info, '')
		FROM assistants ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	assistants := []*models.Assistant{}
	for rows.Next() {
		a := &models.Assistant{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.UserRole, &a.ModelInfo); err != nil {
			return nil, storageErr("list", err)
		}
		assistants = append(assistants, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	return assistants, nil
}

func (r *PostgresAssistantRepo) GetByID(ctx context.Context, id int64) (*models.Assistant, error) {
	a := &models.Assistant{}
	query := `SELECT id, COALESCE(name, ''), COALESCE(description, ''), COALESCE(user_role, ''), COALESCE(model_info, '')
		FROM assistants WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Description, &a.UserRole, &a.ModelInfo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get", err)
	}
	return a, nil
}
