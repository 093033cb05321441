package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trade-market/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = &domain.MarketError{Kind: domain.ErrNotFound, Message: "category not found"}
	ErrCategoryAlreadyExists = &domain.MarketError{Kind: domain.ErrConflict, Message: "category with this name already exists"}
	ErrCategoryInUse         = &domain.MarketError{Kind: domain.ErrConflict, Message: "category still has products"}
)

type categoryRepository struct {
	db DBTX
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db DBTX) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category into the database using parameterized queries
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// Update renames an existing category
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `UPDATE categories SET name = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, category.ID, category.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to update category: %w", err)
	}

	return rowsAffectedOr(result, ErrCategoryNotFound)
}

// Delete removes a category. Categories referenced by products are kept.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return rowsAffectedOr(result, ErrCategoryNotFound)
}

// List retrieves all categories
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT id, name, created_at
		FROM categories
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `
		SELECT id, name, created_at
		FROM categories
		WHERE id = $1
	`

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}
