package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trade-market/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository can run
// inside or outside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListWithDetails(ctx context.Context) ([]*domain.Product, error)
}

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
	// ListByProductID returns customers that have the product on any receipt.
	ListByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Customer, error)
}

// ReceiptRepository defines the interface for receipt data access
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *domain.Receipt) error
	Update(ctx context.Context, receipt *domain.Receipt) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)
	// FindByIDWithDetails loads the customer and every line with its product
	// and category.
	FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)
	ListWithDetails(ctx context.Context) ([]*domain.Receipt, error)
}

// ReceiptDetailRepository defines the interface for receipt line data access
type ReceiptDetailRepository interface {
	Create(ctx context.Context, detail *domain.ReceiptDetail) error
	Update(ctx context.Context, detail *domain.ReceiptDetail) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByReceiptID(ctx context.Context, receiptID uuid.UUID) (int, error)
	ListByReceiptID(ctx context.Context, receiptID uuid.UUID) ([]*domain.ReceiptDetail, error)
}

// Repositories groups one repository per entity type.
type Repositories interface {
	Categories() CategoryRepository
	Products() ProductRepository
	Customers() CustomerRepository
	Receipts() ReceiptRepository
	ReceiptDetails() ReceiptDetailRepository
}

// UnitOfWork exposes the repositories for reads and a single Save that runs
// fn against transaction-bound repositories. Everything fn writes is
// committed together when it returns nil and discarded otherwise.
type UnitOfWork interface {
	Repositories
	Save(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type repositories struct {
	categories     CategoryRepository
	products       ProductRepository
	customers      CustomerRepository
	receipts       ReceiptRepository
	receiptDetails ReceiptDetailRepository
}

func newRepositories(db DBTX) *repositories {
	return &repositories{
		categories:     NewCategoryRepository(db),
		products:       NewProductRepository(db),
		customers:      NewCustomerRepository(db),
		receipts:       NewReceiptRepository(db),
		receiptDetails: NewReceiptDetailRepository(db),
	}
}

func (r *repositories) Categories() CategoryRepository          { return r.categories }
func (r *repositories) Products() ProductRepository             { return r.products }
func (r *repositories) Customers() CustomerRepository           { return r.customers }
func (r *repositories) Receipts() ReceiptRepository             { return r.receipts }
func (r *repositories) ReceiptDetails() ReceiptDetailRepository { return r.receiptDetails }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// rowsAffectedOr returns notFound when the statement touched no rows.
func rowsAffectedOr(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
