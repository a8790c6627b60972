package repository

import (
	"context"
	"errors"
	"fmt"

	"assistant-backend/internal/database"
	"assistant-backend/internal/models"
)

// ErrNotFound is returned when no assistant has the requested id.
var ErrNotFound = errors.New("assistant not found")

// ErrStorage matches every *StorageError.
var ErrStorage = errors.New("storage failure")

// StorageError wraps a persistence failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("assistant store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// AssistantRepository persists assistant records. There is no update or
// delete: a record exists unchanged from creation on.
type AssistantRepository interface {
	Create(ctx context.Context, a *models.Assistant) error
	List(ctx context.Context) ([]*models.Assistant, error)
	GetByID(ctx context.Context, id int64) (*models.Assistant, error)
}

// NewAssistantRepo picks the implementation for the open driver.
func NewAssistantRepo(db *database.DB) (AssistantRepository, error) {
	switch db.Driver {
	case database.DriverSQLite:
		return NewSQLiteAssistantRepo(db.SQLite), nil
	case database.DriverPostgres:
		return NewPostgresAssistantRepo(db.Postgres), nil
	default:
		return nil, fmt.Errorf("no assistant repository for driver %q", db.Driver)
	}
}
