package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/common"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/service"
)

// ListCategories returns all categories ordered by creation, newest first.
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, type, is_system, created_at
		FROM categories
		ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var catType string
		if err := rows.Scan(&cat.ID, &cat.Name, &catType, &cat.IsSystem, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.Type = model.TransactionType(catType)
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetCategoryByID returns a category or common.ErrNotFound.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, type, is_system, created_at
		FROM categories
		WHERE id = ?`

	cat, err := scanCategory(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// GetCategoryByName returns a category by exact name, or (nil, nil) when
// the name has no row. The ingestion pipeline uses this for its explicit
// resolve-or-create step.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, type, is_system, created_at
		FROM categories
		WHERE name = ?`

	cat, err := scanCategory(s.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// CreateCategory creates a new category. Names are unique; a clash
// surfaces as common.ErrDuplicateEntry.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.TransactionType, isSystem bool) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if categoryType != model.TypeEntry && categoryType != model.TypeExit {
		return nil, ErrInvalidType
	}

	now := time.Now()
	query := `
		INSERT INTO categories (name, type, is_system, created_at)
		VALUES (?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query, name, string(categoryType), isSystem, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, fmt.Errorf("%w: category %s", common.ErrDuplicateEntry, name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	slog.Info("created category", "name", name, "type", categoryType, "id", id)
	return &model.Category{
		ID:        id,
		Name:      name,
		Type:      categoryType,
		IsSystem:  isSystem,
		CreatedAt: now,
	}, nil
}

// UpdateCategory renames a category. System categories are immutable.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int64, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	cat, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if cat.IsSystem {
		return common.ErrSystemCategory
	}

	return s.execAffectingOne(ctx,
		fmt.Errorf("%w: category %d", common.ErrNotFound, id),
		`UPDATE categories SET name = ? WHERE id = ?`, name, id)
}

// DeleteCategory removes a category. System categories are undeletable.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	cat, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if cat.IsSystem {
		return common.ErrSystemCategory
	}

	return s.execAffectingOne(ctx,
		fmt.Errorf("%w: category %d", common.ErrNotFound, id),
		`DELETE FROM categories WHERE id = ?`, id)
}

// ListCategoryTotals sums each category's transactions of its own type
// for one user. Sums are accumulated in decimal rather than SQL so the
// TEXT-encoded amounts never round-trip through floats.
func (s *SQLiteStorage) ListCategoryTotals(ctx context.Context, userID int64) ([]service.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}

	query := `
		SELECT c.name, c.type, t.value
		FROM categories c
		JOIN transactions t ON t.category_id = c.id AND t.type = c.type
		WHERE t.user_id = ?`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]*service.CategoryTotal)
	var order []string
	for rows.Next() {
		var name, catType string
		var value decimal.Decimal
		if err := rows.Scan(&name, &catType, &value); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		total, ok := totals[name]
		if !ok {
			total = &service.CategoryTotal{Name: name, Type: model.TransactionType(catType)}
			totals[name] = total
			order = append(order, name)
		}
		total.Total = total.Total.Add(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}

	result := make([]service.CategoryTotal, 0, len(order))
	for _, name := range order {
		result = append(result, *totals[name])
	}
	return result, nil
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var cat model.Category
	var catType string
	if err := row.Scan(&cat.ID, &cat.Name, &catType, &cat.IsSystem, &cat.CreatedAt); err != nil {
		return nil, err
	}
	cat.Type = model.TransactionType(catType)
	return &cat, nil
}
