package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
)

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, kind, created_at) VALUES (?, ?, ?, ?)",
		c.ID, c.Name, string(c.Kind), encodeTime(c.CreatedAt))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *Repository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, kind, created_at FROM categories WHERE id = ?", id)
	return scanCategory(row)
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, kind, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, kind = ? WHERE id = ?",
		c.Name, string(c.Kind), c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.Category{}, err
	}
	return r.GetCategory(ctx, c.ID)
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) CategoryInUse(ctx context.Context, id string) (bool, error) {
	used, err := exists(ctx, r.db,
		"SELECT COUNT(*) FROM transactions WHERE category_id = ?", id)
	if err != nil || used {
		return used, err
	}
	used, err = exists(ctx, r.db,
		"SELECT COUNT(*) FROM payable_accounts WHERE category_id = ?", id)
	if err != nil || used {
		return used, err
	}
	return exists(ctx, r.db,
		"SELECT COUNT(*) FROM receivable_accounts WHERE category_id = ?", id)
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c         core.Category
		kind      string
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &kind, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, core.ErrNotFound
		}
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}

	var err error
	c.Kind = core.FlowKind(kind)
	if c.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Category{}, fmt.Errorf("decode created_at: %w", err)
	}
	return c, nil
}
