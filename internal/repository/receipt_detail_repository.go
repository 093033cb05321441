package repository

import (
	"context"
	"fmt"

	"trade-market/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrReceiptDetailNotFound = &domain.MarketError{Kind: domain.ErrNotFound, Message: "receipt detail not found"}
	// ErrReceiptDetailExists guards the (receipt, product) uniqueness.
	ErrReceiptDetailExists = &domain.MarketError{Kind: domain.ErrConflict, Message: "product is already on this receipt"}
	ErrReceiptDetailOrphan = &domain.MarketError{Kind: domain.ErrInvalidInput, Message: "receipt detail references an unknown receipt or product"}
)

const detailWithProductColumns = `
	d.id, d.receipt_id, d.product_id, d.quantity, d.unit_price, d.discount_unit_price, d.created_at,
	p.id, p.name, p.price, p.category_id, p.created_at, p.updated_at,
	c.id, c.name, c.created_at`

type receiptDetailRepository struct {
	db DBTX
}

// NewReceiptDetailRepository creates a new instance of ReceiptDetailRepository
func NewReceiptDetailRepository(db DBTX) ReceiptDetailRepository {
	return &receiptDetailRepository{db: db}
}

// Create inserts a receipt line using parameterized queries
func (r *receiptDetailRepository) Create(ctx context.Context, detail *domain.ReceiptDetail) error {
	query := `
		INSERT INTO receipt_details (id, receipt_id, product_id, quantity, unit_price, discount_unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		detail.ID,
		detail.ReceiptID,
		detail.ProductID,
		detail.Quantity,
		detail.UnitPrice,
		detail.DiscountUnitPrice,
		detail.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrReceiptDetailExists
		}
		if isForeignKeyViolation(err) {
			return ErrReceiptDetailOrphan
		}
		return fmt.Errorf("failed to create receipt detail: %w", err)
	}

	return nil
}

// Update changes the quantity of a line. Prices are fixed at creation.
func (r *receiptDetailRepository) Update(ctx context.Context, detail *domain.ReceiptDetail) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE receipt_details SET quantity = $2 WHERE id = $1`,
		detail.ID, detail.Quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt detail: %w", err)
	}

	return rowsAffectedOr(result, ErrReceiptDetailNotFound)
}

// Delete removes a single line
func (r *receiptDetailRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM receipt_details WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt detail: %w", err)
	}

	return rowsAffectedOr(result, ErrReceiptDetailNotFound)
}

// DeleteByReceiptID removes every line of a receipt and reports how many went
func (r *receiptDetailRepository) DeleteByReceiptID(ctx context.Context, receiptID uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM receipt_details WHERE receipt_id = $1`, receiptID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete receipt details: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// ListByReceiptID retrieves the lines of one receipt with product and category
func (r *receiptDetailRepository) ListByReceiptID(ctx context.Context, receiptID uuid.UUID) ([]*domain.ReceiptDetail, error) {
	return queryDetails(ctx, r.db, `WHERE d.receipt_id = $1`, receiptID)
}

// queryDetails loads lines in insertion order. where is a trusted constant.
func queryDetails(ctx context.Context, db DBTX, where string, args ...any) ([]*domain.ReceiptDetail, error) {
	query := `SELECT ` + detailWithProductColumns + `
		FROM receipt_details d
		JOIN products p ON p.id = d.product_id
		JOIN categories c ON c.id = p.category_id
		` + where + `
		ORDER BY d.created_at ASC, d.id ASC
	`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipt details: %w", err)
	}
	defer rows.Close()

	details := []*domain.ReceiptDetail{}
	for rows.Next() {
		detail := &domain.ReceiptDetail{Product: &domain.Product{Category: &domain.Category{}}}
		err := rows.Scan(
			&detail.ID,
			&detail.ReceiptID,
			&detail.ProductID,
			&detail.Quantity,
			&detail.UnitPrice,
			&detail.DiscountUnitPrice,
			&detail.CreatedAt,
			&detail.Product.ID,
			&detail.Product.Name,
			&detail.Product.Price,
			&detail.Product.CategoryID,
			&detail.Product.CreatedAt,
			&detail.Product.UpdatedAt,
			&detail.Product.Category.ID,
			&detail.Product.Category.Name,
			&detail.Product.Category.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt detail: %w", err)
		}
		details = append(details, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipt details: %w", err)
	}

	return details, nil
}
