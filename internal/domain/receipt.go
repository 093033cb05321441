package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MinOperationDate is the earliest operation date a receipt may carry.
var MinOperationDate = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)

var hundred = decimal.NewFromInt(100)

// Receipt is a sale transaction holding ordered line items
type Receipt struct {
	ID            uuid.UUID `json:"id" db:"id"`
	CustomerID    uuid.UUID `json:"customer_id" db:"customer_id"`
	OperationDate time.Time `json:"operation_date" db:"operation_date"`
	IsCheckedOut  bool      `json:"is_checked_out" db:"is_checked_out"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	// Customer and Details are populated only by "with details" reads.
	Customer *Customer        `json:"customer,omitempty" db:"-"`
	Details  []*ReceiptDetail `json:"details,omitempty" db:"-"`
}

// ReceiptDetail is one product line within a receipt
type ReceiptDetail struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	ReceiptID         uuid.UUID       `json:"receipt_id" db:"receipt_id"`
	ProductID         uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity          int             `json:"quantity" db:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price" db:"unit_price"`
	DiscountUnitPrice decimal.Decimal `json:"discount_unit_price" db:"discount_unit_price"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`

	Product *Product `json:"product,omitempty" db:"-"`
}

// DiscountUnitPrice applies a percentage discount to price and rounds the
// result to cents, half away from zero.
func DiscountUnitPrice(price decimal.Decimal, discountValue int) decimal.Decimal {
	return price.
		Mul(decimal.NewFromInt(int64(100 - discountValue))).
		Div(hundred).
		Round(2)
}

// Total returns quantity * discount unit price.
func (d *ReceiptDetail) Total() decimal.Decimal {
	return d.DiscountUnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// Total sums every line of the receipt. Details must be loaded.
func (r *Receipt) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range r.Details {
		total = total.Add(d.Total())
	}
	return total
}

// DetailFor returns the line holding productID, or nil.
func (r *Receipt) DetailFor(productID uuid.UUID) *ReceiptDetail {
	for _, d := range r.Details {
		if d.ProductID == productID {
			return d
		}
	}
	return nil
}

// OperationDateInRange reports whether t lies within [MinOperationDate, now].
func OperationDateInRange(t, now time.Time) bool {
	return !t.Before(MinOperationDate) && !t.After(now)
}
