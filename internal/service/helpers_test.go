package service

import (
	"context"
	"testing"
	"time"

	"trade-market/internal/dto"
	"trade-market/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// market bundles the services over one memory store with a pinned clock.
type market struct {
	store      *memory.Store
	products   *productService
	customers  *customerService
	receipts   *receiptService
	statistics StatisticService
}

func newMarket() *market {
	store := memory.NewStore()

	products := NewProductService(store).(*productService)
	products.now = fixedClock
	customers := NewCustomerService(store).(*customerService)
	customers.now = fixedClock
	receipts := NewReceiptService(store).(*receiptService)
	receipts.now = fixedClock

	return &market{
		store:      store,
		products:   products,
		customers:  customers,
		receipts:   receipts,
		statistics: NewStatisticService(store.Receipts()),
	}
}

func (m *market) category(t *testing.T, name string) uuid.UUID {
	t.Helper()
	c, err := m.products.AddCategory(context.Background(), dto.ProductCategoryModel{CategoryName: name})
	require.NoError(t, err)
	return c.ID
}

func (m *market) product(t *testing.T, categoryID uuid.UUID, name, price string) uuid.UUID {
	t.Helper()
	p, err := m.products.Add(context.Background(), dto.ProductModel{
		ProductName:       name,
		ProductCategoryID: categoryID,
		Price:             decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return p.ID
}

func (m *market) customer(t *testing.T, name, surname string, discount int) uuid.UUID {
	t.Helper()
	c, err := m.customers.Add(context.Background(), dto.CustomerModel{
		Name:          name,
		Surname:       surname,
		BirthDate:     time.Date(1990, time.March, 3, 0, 0, 0, 0, time.UTC),
		DiscountValue: discount,
	})
	require.NoError(t, err)
	return c.ID
}

func (m *market) receipt(t *testing.T, customerID uuid.UUID, at time.Time) uuid.UUID {
	t.Helper()
	r, err := m.receipts.Add(context.Background(), dto.ReceiptModel{CustomerID: customerID, OperationDate: at})
	require.NoError(t, err)
	return r.ID
}

func (m *market) add(t *testing.T, receiptID, productID uuid.UUID, quantity int) {
	t.Helper()
	require.NoError(t, m.receipts.AddProduct(context.Background(), productID, receiptID, quantity))
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
