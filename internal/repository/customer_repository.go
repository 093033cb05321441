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
	ErrCustomerNotFound = &domain.MarketError{Kind: domain.ErrNotFound, Message: "customer not found"}
	ErrCustomerInUse    = &domain.MarketError{Kind: domain.ErrConflict, Message: "customer still has receipts"}
)

const customerColumns = `id, name, surname, birth_date, discount_value, created_at`

type customerRepository struct {
	db DBTX
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepository{db: db}
}

// Create inserts a new customer into the database using parameterized queries
func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, surname, birth_date, discount_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Surname,
		customer.BirthDate,
		customer.DiscountValue,
		customer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// Update updates an existing customer. Discount changes never touch
// existing receipt lines.
func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, surname = $3, birth_date = $4, discount_value = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Surname,
		customer.BirthDate,
		customer.DiscountValue,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	return rowsAffectedOr(result, ErrCustomerNotFound)
}

// Delete removes a customer without receipts
func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCustomerInUse
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	return rowsAffectedOr(result, ErrCustomerNotFound)
}

// FindByID retrieves a customer by ID using parameterized queries
func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}

	return customer, nil
}

// List retrieves all customers, oldest first
func (r *customerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at ASC, id ASC`
	return r.query(ctx, query)
}

// ListByProductID retrieves customers having productID on at least one receipt
func (r *customerRepository) ListByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id IN (
			SELECT r.customer_id
			FROM receipts r
			JOIN receipt_details d ON d.receipt_id = r.id
			WHERE d.product_id = $1
		)
		ORDER BY created_at ASC, id ASC
	`
	return r.query(ctx, query, productID)
}

func (r *customerRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*domain.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Surname,
		&customer.BirthDate,
		&customer.DiscountValue,
		&customer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}
