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
	ErrProductNotFound = &domain.MarketError{Kind: domain.ErrNotFound, Message: "product not found"}
	ErrProductInUse    = &domain.MarketError{Kind: domain.ErrConflict, Message: "product is referenced by receipts"}
	// ErrProductCategoryMissing is returned when a product points at an unknown category.
	ErrProductCategoryMissing = &domain.MarketError{Kind: domain.ErrInvalidInput, Message: "product category does not exist"}
)

const productWithCategoryColumns = `
	p.id, p.name, p.price, p.category_id, p.created_at, p.updated_at,
	c.id, c.name, c.created_at`

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, price, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		product.CategoryID,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductCategoryMissing
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, price = $3, category_id = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		product.CategoryID,
		product.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductCategoryMissing
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return rowsAffectedOr(result, ErrProductNotFound)
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductInUse
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return rowsAffectedOr(result, ErrProductNotFound)
}

// FindByID retrieves a product by ID without its category
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, price, category_id, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindByIDWithDetails retrieves a product together with its category
func (r *productRepository) FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productWithCategoryColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`

	product, err := scanProductWithCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListWithDetails retrieves every product with its category, oldest first
func (r *productRepository) ListWithDetails(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productWithCategoryColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		ORDER BY p.created_at ASC, p.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProductWithCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProductWithCategory(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{Category: &domain.Category{}}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Category.ID,
		&product.Category.Name,
		&product.Category.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}
