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
	ErrReceiptNotFound   = &domain.MarketError{Kind: domain.ErrNotFound, Message: "receipt not found"}
	ErrReceiptHasDetails = &domain.MarketError{Kind: domain.ErrConflict, Message: "receipt still has details"}
	// ErrReceiptCustomerMissing is returned when a receipt points at an unknown customer.
	ErrReceiptCustomerMissing = &domain.MarketError{Kind: domain.ErrInvalidInput, Message: "receipt customer does not exist"}
)

const receiptWithCustomerColumns = `
	r.id, r.customer_id, r.operation_date, r.is_checked_out, r.created_at,
	c.id, c.name, c.surname, c.birth_date, c.discount_value, c.created_at`

type receiptRepository struct {
	db DBTX
}

// NewReceiptRepository creates a new instance of ReceiptRepository
func NewReceiptRepository(db DBTX) ReceiptRepository {
	return &receiptRepository{db: db}
}

// Create inserts the receipt header. Lines are written through ReceiptDetailRepository.
func (r *receiptRepository) Create(ctx context.Context, receipt *domain.Receipt) error {
	query := `
		INSERT INTO receipts (id, customer_id, operation_date, is_checked_out, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		receipt.ID,
		receipt.CustomerID,
		receipt.OperationDate,
		receipt.IsCheckedOut,
		receipt.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReceiptCustomerMissing
		}
		return fmt.Errorf("failed to create receipt: %w", err)
	}

	return nil
}

// Update updates the receipt header
func (r *receiptRepository) Update(ctx context.Context, receipt *domain.Receipt) error {
	query := `
		UPDATE receipts
		SET customer_id = $2, operation_date = $3, is_checked_out = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		receipt.ID,
		receipt.CustomerID,
		receipt.OperationDate,
		receipt.IsCheckedOut,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReceiptCustomerMissing
		}
		return fmt.Errorf("failed to update receipt: %w", err)
	}

	return rowsAffectedOr(result, ErrReceiptNotFound)
}

// Delete removes the receipt header. Lines must be deleted first.
func (r *receiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReceiptHasDetails
		}
		return fmt.Errorf("failed to delete receipt: %w", err)
	}

	return rowsAffectedOr(result, ErrReceiptNotFound)
}

// FindByID retrieves the receipt header only
func (r *receiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	query := `
		SELECT id, customer_id, operation_date, is_checked_out, created_at
		FROM receipts
		WHERE id = $1
	`

	receipt := &domain.Receipt{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&receipt.ID,
		&receipt.CustomerID,
		&receipt.OperationDate,
		&receipt.IsCheckedOut,
		&receipt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("failed to find receipt by ID: %w", err)
	}

	return receipt, nil
}

// FindByIDWithDetails retrieves the receipt with its customer and lines
func (r *receiptRepository) FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	query := `SELECT ` + receiptWithCustomerColumns + `
		FROM receipts r
		JOIN customers c ON c.id = r.customer_id
		WHERE r.id = $1
	`

	receipt, err := scanReceiptWithCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("failed to find receipt by ID: %w", err)
	}

	details, err := queryDetails(ctx, r.db, `WHERE d.receipt_id = $1`, id)
	if err != nil {
		return nil, err
	}
	receipt.Details = details

	return receipt, nil
}

// ListWithDetails loads the whole receipt graph in two queries
func (r *receiptRepository) ListWithDetails(ctx context.Context) ([]*domain.Receipt, error) {
	query := `SELECT ` + receiptWithCustomerColumns + `
		FROM receipts r
		JOIN customers c ON c.id = r.customer_id
		ORDER BY r.created_at ASC, r.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	receipts := []*domain.Receipt{}
	byID := make(map[uuid.UUID]*domain.Receipt)
	for rows.Next() {
		receipt, err := scanReceiptWithCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipt.Details = []*domain.ReceiptDetail{}
		receipts = append(receipts, receipt)
		byID[receipt.ID] = receipt
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}

	details, err := queryDetails(ctx, r.db, "")
	if err != nil {
		return nil, err
	}
	for _, detail := range details {
		if receipt, ok := byID[detail.ReceiptID]; ok {
			receipt.Details = append(receipt.Details, detail)
		}
	}

	return receipts, nil
}

func scanReceiptWithCustomer(row rowScanner) (*domain.Receipt, error) {
	receipt := &domain.Receipt{Customer: &domain.Customer{}}
	err := row.Scan(
		&receipt.ID,
		&receipt.CustomerID,
		&receipt.OperationDate,
		&receipt.IsCheckedOut,
		&receipt.CreatedAt,
		&receipt.Customer.ID,
		&receipt.Customer.Name,
		&receipt.Customer.Surname,
		&receipt.Customer.BirthDate,
		&receipt.Customer.DiscountValue,
		&receipt.Customer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
