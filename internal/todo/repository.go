package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record matches both the id and the
// owner. A record owned by a different subject is indistinguishable from
// a missing one; that conflation is what keeps ownership checks from
// leaking existence.
var ErrNotFound = errors.New("todo not found")

// Repository is the only sanctioned access path to todo storage. Every
// owner-scoped read and write takes the owner explicitly.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const todoColumns = "id, title, description, is_completed, owner_id, created_at, updated_at"

// Insert persists a new record with a generated id and both timestamps
// set to the same instant.
func (r *Repository) Insert(ctx context.Context, title string, description *string, isCompleted bool, ownerID string) (*Todo, error) {
	now := time.Now().UTC()
	t := &Todo{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		IsCompleted: isCompleted,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := "INSERT INTO todos (" + todoColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.IsCompleted, t.OwnerID, t.CreatedAt, t.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}
	return t, nil
}

// ListByOwner returns the owner's records, newest first. An owner with
// no records gets an empty slice, not an error.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos WHERE owner_id = ? ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	todos := []*Todo{}
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.IsCompleted, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("could not scan todo: %w", err)
		}
		todos = append(todos, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}

// FindByIDAndOwner returns the record only when both id and owner match.
func (r *Repository) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos WHERE id = ? AND owner_id = ?"
	var t Todo
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&t.ID, &t.Title, &t.Description, &t.IsCompleted, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return &t, nil
}

// ApplyUpdate overwrites only the fields present in the change set,
// refreshes updated_at and persists the result in a single statement.
// Fields absent from the change set keep their prior values.
func (r *Repository) ApplyUpdate(ctx context.Context, existing *Todo, changes UpdateTodoRequest) (*Todo, error) {
	updated := *existing
	if changes.Title.Set {
		updated.Title = changes.Title.Value
	}
	if changes.Description.Set {
		updated.Description = changes.Description.Value
	}
	if changes.IsCompleted.Set {
		updated.IsCompleted = changes.IsCompleted.Value
	}
	updated.UpdatedAt = time.Now().UTC()

	query := "UPDATE todos SET title = ?, description = ?, is_completed = ?, updated_at = ? WHERE id = ? AND owner_id = ?"
	result, err := r.db.ExecContext(ctx, query,
		updated.Title, updated.Description, updated.IsCompleted, updated.UpdatedAt, updated.ID, updated.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("could not update todo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return &updated, nil
}

// Delete removes the record.
func (r *Repository) Delete(ctx context.Context, existing *Todo) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ? AND owner_id = ?", existing.ID, existing.OwnerID)
	if err != nil {
		return fmt.Errorf("could not delete todo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
