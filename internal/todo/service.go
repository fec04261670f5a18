package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mberrie/todoapp-service/internal/todo/entity"
)

// Store is the persistence surface the service needs. *repo.TodoRepo
// satisfies it; tests provide an in-memory fake.
type Store interface {
	Create(ctx context.Context, t *entity.Todo) (int64, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Todo, error)
	GetForOwner(ctx context.Context, id, ownerID int64) (*entity.Todo, error)
	UpdateForOwner(ctx context.Context, t *entity.Todo) (int64, error)
	DeleteForOwner(ctx context.Context, id, ownerID int64) (int64, error)
	ListAll(ctx context.Context) ([]*entity.Todo, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

var (
	// ErrNotFound covers both an absent todo and one owned by someone
	// else; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("todo not found")
	ErrInvalid  = errors.New("invalid todo")
)

// Service enforces ownership and field validation for task items.
type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

func validate(t *entity.Todo) error {
	if utf8.RuneCountInString(strings.TrimSpace(t.Title)) < 3 {
		return fmt.Errorf("%w: title must be at least 3 characters", ErrInvalid)
	}
	if utf8.RuneCountInString(t.Description) > 100 {
		return fmt.Errorf("%w: description must be at most 100 characters", ErrInvalid)
	}
	if t.Priority < 1 || t.Priority > 5 {
		return fmt.Errorf("%w: priority must be between 1 and 5", ErrInvalid)
	}
	return nil
}

// ListForOwner returns the caller's todos, never nil.
func (s *Service) ListForOwner(ctx context.Context, ownerID int64) ([]*entity.Todo, error) {
	todos, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []*entity.Todo{}
	}
	return todos, nil
}

// GetForOwner returns one todo if it exists and belongs to the caller.
func (s *Service) GetForOwner(ctx context.Context, id, ownerID int64) (*entity.Todo, error) {
	t, err := s.store.GetForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// CreateForOwner validates and stores a new todo for the caller.
func (s *Service) CreateForOwner(ctx context.Context, ownerID int64, t *entity.Todo) (int64, error) {
	if err := validate(t); err != nil {
		return 0, err
	}
	t.OwnerID = ownerID
	return s.store.Create(ctx, t)
}

// UpdateForOwner validates and replaces the mutable fields of the caller's todo.
func (s *Service) UpdateForOwner(ctx context.Context, ownerID int64, t *entity.Todo) error {
	if err := validate(t); err != nil {
		return err
	}
	t.OwnerID = ownerID
	rows, err := s.store.UpdateForOwner(ctx, t)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteForOwner deletes the caller's todo.
func (s *Service) DeleteForOwner(ctx context.Context, id, ownerID int64) error {
	rows, err := s.store.DeleteForOwner(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every todo regardless of owner, never nil. Admin surface only.
func (s *Service) ListAll(ctx context.Context) ([]*entity.Todo, error) {
	todos, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []*entity.Todo{}
	}
	return todos, nil
}

// DeleteAny deletes a todo regardless of owner. Admin surface only.
func (s *Service) DeleteAny(ctx context.Context, id int64) error {
	rows, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
