package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/mberrie/todoapp-service/internal/todo/entity"
)

// TodoRepo provides data access for the todos table using sqlx. The
// owner-scoped queries carry the ownership check in SQL so a row belonging
// to someone else is indistinguishable from an absent row.
type TodoRepo struct {
	db *sqlx.DB
}

func NewTodoRepo(db *sqlx.DB) *TodoRepo { return &TodoRepo{db: db} }

// EnsureTable creates the todos table if not exists (idempotent).
func (r *TodoRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS todos (
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  priority INT NOT NULL DEFAULT 1,
  complete BOOLEAN NOT NULL DEFAULT false,
  owner_id BIGINT NOT NULL REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_todos_owner_id ON todos(owner_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new todo row. Returns the new ID.
func (r *TodoRepo) Create(ctx context.Context, t *entity.Todo) (int64, error) {
	const q = `INSERT INTO todos (title,description,priority,complete,owner_id)
	  VALUES (:title,:description,:priority,:complete,:owner_id) RETURNING id`
	stmt, err := r.db.NamedQueryContext(ctx, q, t)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	if stmt.Next() {
		if err := stmt.Scan(&t.ID); err != nil {
			return 0, err
		}
		return t.ID, nil
	}
	return 0, errors.New("no id returned")
}

// ListByOwner returns all todos belonging to one owner.
func (r *TodoRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Todo, error) {
	const q = `SELECT id, title, description, priority, complete, owner_id
	  FROM todos WHERE owner_id=$1 ORDER BY id`
	var rows []*entity.Todo
	if err := r.db.SelectContext(ctx, &rows, q, ownerID); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetForOwner fetches one todo scoped to its owner, or sql.ErrNoRows.
func (r *TodoRepo) GetForOwner(ctx context.Context, id, ownerID int64) (*entity.Todo, error) {
	const q = `SELECT id, title, description, priority, complete, owner_id
	  FROM todos WHERE id=$1 AND owner_id=$2`
	var row entity.Todo
	if err := r.db.GetContext(ctx, &row, q, id, ownerID); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateForOwner updates a todo scoped to its owner and reports affected rows.
func (r *TodoRepo) UpdateForOwner(ctx context.Context, t *entity.Todo) (int64, error) {
	const q = `UPDATE todos SET title=$3, description=$4, priority=$5, complete=$6
	  WHERE id=$1 AND owner_id=$2`
	res, err := r.db.ExecContext(ctx, q, t.ID, t.OwnerID, t.Title, t.Description, t.Priority, t.Complete)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteForOwner deletes a todo scoped to its owner and reports affected rows.
func (r *TodoRepo) DeleteForOwner(ctx context.Context, id, ownerID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListAll returns every todo regardless of owner. Admin surface only.
func (r *TodoRepo) ListAll(ctx context.Context) ([]*entity.Todo, error) {
	const q = `SELECT id, title, description, priority, complete, owner_id FROM todos ORDER BY id`
	var rows []*entity.Todo
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete deletes a todo by id without an ownership check. Admin surface only.
func (r *TodoRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
