package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"trade-market/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receiptGraph struct {
	category *domain.Category
	product  *domain.Product
	customer *domain.Customer
	receipt  *domain.Receipt
}

func createReceiptGraph(t *testing.T, db *sql.DB, price decimal.Decimal, discount int) receiptGraph {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	g := receiptGraph{
		category: &domain.Category{ID: uuid.New(), Name: "Category " + uuid.NewString(), CreatedAt: now},
		customer: &domain.Customer{
			ID:            uuid.New(),
			Name:          "Ann",
			Surname:       "Lee",
			BirthDate:     time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
			DiscountValue: discount,
			CreatedAt:     now,
		},
	}
	g.product = &domain.Product{ID: uuid.New(), Name: "Milk", Price: price, CategoryID: g.category.ID, CreatedAt: now, UpdatedAt: now}
	g.receipt = &domain.Receipt{ID: uuid.New(), CustomerID: g.customer.ID, OperationDate: now, CreatedAt: now}

	require.NoError(t, NewCategoryRepository(db).Create(ctx, g.category))
	require.NoError(t, NewProductRepository(db).Create(ctx, g.product))
	require.NoError(t, NewCustomerRepository(db).Create(ctx, g.customer))
	require.NoError(t, NewReceiptRepository(db).Create(ctx, g.receipt))
	return g
}

func (g receiptGraph) line(quantity int) *domain.ReceiptDetail {
	return &domain.ReceiptDetail{
		ID:                uuid.New(),
		ReceiptID:         g.receipt.ID,
		ProductID:         g.product.ID,
		Quantity:          quantity,
		UnitPrice:         g.product.Price,
		DiscountUnitPrice: domain.DiscountUnitPrice(g.product.Price, g.customer.DiscountValue),
		CreatedAt:         time.Now().UTC(),
	}
}

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	db := requireDB(t)

	categoryRepo := NewCategoryRepository(db)
	productRepo := NewProductRepository(db)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, cents int64) bool {
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Microsecond)

			category := &domain.Category{ID: uuid.New(), Name: "Category " + uuid.NewString(), CreatedAt: now}
			if err := categoryRepo.Create(ctx, category); err != nil {
				t.Logf("FAIL: Failed to create category: %v", err)
				return false
			}

			product := &domain.Product{
				ID:         uuid.New(),
				Name:       name,
				Price:      decimal.New(cents, -2),
				CategoryID: category.ID,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := productRepo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			retrieved, err := productRepo.FindByIDWithDetails(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Name != product.Name || retrieved.CategoryID != product.CategoryID {
				t.Logf("FAIL: attribute mismatch: %+v vs %+v", retrieved, product)
				return false
			}
			if !retrieved.Price.Equal(product.Price) {
				t.Logf("FAIL: Price mismatch. Expected %s, got %s", product.Price, retrieved.Price)
				return false
			}
			if retrieved.Category == nil || retrieved.Category.Name != category.Name {
				t.Logf("FAIL: category not loaded")
				return false
			}
			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 && len(s) < 200 }),
		gen.Int64Range(0, 99999999),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestReceiptGraphLoadsEagerly(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	g := createReceiptGraph(t, db, decimal.NewFromInt(100), 10)
	require.NoError(t, NewReceiptDetailRepository(db).Create(ctx, g.line(3)))

	receipt, err := NewReceiptRepository(db).FindByIDWithDetails(ctx, g.receipt.ID)
	require.NoError(t, err)

	require.NotNil(t, receipt.Customer)
	assert.Equal(t, 10, receipt.Customer.DiscountValue)
	require.Len(t, receipt.Details, 1)

	detail := receipt.Details[0]
	assert.Equal(t, 3, detail.Quantity)
	assert.True(t, decimal.RequireFromString("90.00").Equal(detail.DiscountUnitPrice))
	require.NotNil(t, detail.Product)
	require.NotNil(t, detail.Product.Category)
	assert.Equal(t, g.category.Name, detail.Product.Category.Name)
	assert.True(t, decimal.RequireFromString("270").Equal(receipt.Total()))

	all, err := NewReceiptRepository(db).ListWithDetails(ctx)
	require.NoError(t, err)

	var found *domain.Receipt
	for _, r := range all {
		if r.ID == g.receipt.ID {
			found = r
		}
	}
	require.NotNil(t, found)
	assert.Len(t, found.Details, 1)
}

func TestReceiptDetailUniquePerProduct(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	g := createReceiptGraph(t, db, decimal.NewFromInt(5), 0)
	details := NewReceiptDetailRepository(db)

	require.NoError(t, details.Create(ctx, g.line(1)))
	assert.ErrorIs(t, details.Create(ctx, g.line(1)), ErrReceiptDetailExists)

	orphan := g.line(1)
	orphan.ProductID = uuid.New()
	assert.ErrorIs(t, details.Create(ctx, orphan), domain.ErrInvalidInput)
}

func TestReferencedRowsCannotBeDeleted(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	g := createReceiptGraph(t, db, decimal.NewFromInt(5), 0)
	require.NoError(t, NewReceiptDetailRepository(db).Create(ctx, g.line(1)))

	assert.ErrorIs(t, NewCategoryRepository(db).Delete(ctx, g.category.ID), ErrCategoryInUse)
	assert.ErrorIs(t, NewProductRepository(db).Delete(ctx, g.product.ID), ErrProductInUse)
	assert.ErrorIs(t, NewCustomerRepository(db).Delete(ctx, g.customer.ID), ErrCustomerInUse)
	assert.ErrorIs(t, NewReceiptRepository(db).Delete(ctx, g.receipt.ID), ErrReceiptHasDetails)
}

func TestUnitOfWorkDeletesReceiptWithLines(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	g := createReceiptGraph(t, db, decimal.NewFromInt(5), 0)
	require.NoError(t, NewReceiptDetailRepository(db).Create(ctx, g.line(2)))

	uow := NewUnitOfWork(db)
	err := uow.Save(ctx, func(ctx context.Context, repos Repositories) error {
		removed, err := repos.ReceiptDetails().DeleteByReceiptID(ctx, g.receipt.ID)
		if err != nil {
			return err
		}
		if removed != 1 {
			return errors.New("expected one line to be removed")
		}
		return repos.Receipts().Delete(ctx, g.receipt.ID)
	})
	require.NoError(t, err)

	_, err = uow.Receipts().FindByID(ctx, g.receipt.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var orphans int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipt_details WHERE receipt_id = $1`, g.receipt.ID).Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestUnitOfWorkRollbackKeepsLines(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	g := createReceiptGraph(t, db, decimal.NewFromInt(5), 0)
	require.NoError(t, NewReceiptDetailRepository(db).Create(ctx, g.line(2)))

	boom := errors.New("boom")
	uow := NewUnitOfWork(db)
	err := uow.Save(ctx, func(ctx context.Context, repos Repositories) error {
		if _, err := repos.ReceiptDetails().DeleteByReceiptID(ctx, g.receipt.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	details, err := uow.ReceiptDetails().ListByReceiptID(ctx, g.receipt.ID)
	require.NoError(t, err)
	assert.Len(t, details, 1)
}

func TestCustomersByProduct(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	g := createReceiptGraph(t, db, decimal.NewFromInt(5), 0)
	customers := NewCustomerRepository(db)

	buyers, err := customers.ListByProductID(ctx, g.product.ID)
	require.NoError(t, err)
	assert.Empty(t, buyers)

	require.NoError(t, NewReceiptDetailRepository(db).Create(ctx, g.line(1)))

	buyers, err = customers.ListByProductID(ctx, g.product.ID)
	require.NoError(t, err)
	require.Len(t, buyers, 1)
	assert.Equal(t, g.customer.ID, buyers[0].ID)
}
