package todo

import (
	"context"
	"fmt"
	"unicode/utf8"
)

const (
	maxTitleLength       = 500
	maxDescriptionLength = 2000
)

// ValidationError reports which input constraint was violated. No state
// is mutated when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Service owns the business rules: input validation, the ownership gate
// on every access path, and stripping the owner from anything returned
// to a caller.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func validateTitle(title string) error {
	if title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", maxTitleLength)}
	}
	return nil
}

func validateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLength {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters", maxDescriptionLength)}
	}
	return nil
}

// Create validates the input and persists a new record owned by subject.
func (s *Service) Create(ctx context.Context, req CreateTodoRequest, subject string) (*PublicTodo, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}

	t, err := s.repo.Insert(ctx, req.Title, req.Description, req.IsCompleted, subject)
	if err != nil {
		return nil, err
	}
	return t.Public(), nil
}

// List returns the subject's records in store order, newest first.
func (s *Service) List(ctx context.Context, subject string) ([]*PublicTodo, error) {
	todos, err := s.repo.ListByOwner(ctx, subject)
	if err != nil {
		return nil, err
	}

	public := make([]*PublicTodo, 0, len(todos))
	for _, t := range todos {
		public = append(public, t.Public())
	}
	return public, nil
}

// Update applies a partial change set to a record the subject owns.
// A record that exists under a different owner yields ErrNotFound, never
// a hint that the id is taken.
func (s *Service) Update(ctx context.Context, id string, changes UpdateTodoRequest, subject string) (*PublicTodo, error) {
	if changes.Title.Set {
		if err := validateTitle(changes.Title.Value); err != nil {
			return nil, err
		}
	}
	if changes.Description.Set {
		if err := validateDescription(changes.Description.Value); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.FindByIDAndOwner(ctx, id, subject)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.ApplyUpdate(ctx, existing, changes)
	if err != nil {
		return nil, err
	}
	return updated.Public(), nil
}

// Delete removes a record the subject owns, under the same existence and
// ownership gate as Update.
func (s *Service) Delete(ctx context.Context, id, subject string) error {
	existing, err := s.repo.FindByIDAndOwner(ctx, id, subject)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, existing)
}
