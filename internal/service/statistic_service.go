package service

import (
	"context"
	"slices"
	"time"

	"trade-market/internal/domain"
	"trade-market/internal/dto"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ReceiptSource yields the full receipt graph: customer, lines, products
// and categories. Statistics scan it in memory; a pre-aggregated source
// can replace it without changing StatisticService.
type ReceiptSource interface {
	ListWithDetails(ctx context.Context) ([]*domain.Receipt, error)
}

// StatisticService defines read-only sales aggregations.
//
// Rankings are stable: entries with equal totals keep the order in which
// they were first seen in the source.
type StatisticService interface {
	GetCustomersMostPopularProducts(ctx context.Context, productCount int, customerID uuid.UUID) ([]dto.ProductModel, error)
	GetMostPopularProducts(ctx context.Context, productCount int) ([]dto.ProductModel, error)
	GetIncomeOfCategoryInPeriod(ctx context.Context, categoryID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	GetMostValuableCustomers(ctx context.Context, customerCount int, start, end time.Time) ([]dto.CustomerActivityModel, error)
}

type statisticService struct {
	source ReceiptSource
}

// NewStatisticService creates a new instance of StatisticService
func NewStatisticService(source ReceiptSource) StatisticService {
	return &statisticService{source: source}
}

// GetCustomersMostPopularProducts ranks one customer's products by quantity bought
func (s *statisticService) GetCustomersMostPopularProducts(ctx context.Context, productCount int, customerID uuid.UUID) ([]dto.ProductModel, error) {
	if productCount < 0 {
		return nil, domain.Invalidf("product count must not be negative")
	}

	receipts, err := s.source.ListWithDetails(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load receipts")
	}

	var details []*domain.ReceiptDetail
	for _, r := range receipts {
		if r.CustomerID == customerID {
			details = append(details, r.Details...)
		}
	}

	return topProducts(details, productCount), nil
}

// GetMostPopularProducts ranks all products by quantity sold
func (s *statisticService) GetMostPopularProducts(ctx context.Context, productCount int) ([]dto.ProductModel, error) {
	if productCount < 0 {
		return nil, domain.Invalidf("product count must not be negative")
	}

	receipts, err := s.source.ListWithDetails(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load receipts")
	}

	var details []*domain.ReceiptDetail
	for _, r := range receipts {
		details = append(details, r.Details...)
	}

	return topProducts(details, productCount), nil
}

// GetIncomeOfCategoryInPeriod sums the discounted revenue of a category's
// products over receipts dated within [start, end]
func (s *statisticService) GetIncomeOfCategoryInPeriod(ctx context.Context, categoryID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	if end.Before(start) {
		return decimal.Zero, domain.Invalidf("period end is before start")
	}

	receipts, err := s.source.ListWithDetails(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to load receipts")
	}

	income := decimal.Zero
	for _, r := range receipts {
		if !withinInclusive(r.OperationDate, start, end) {
			continue
		}
		for _, d := range r.Details {
			if d.Product != nil && d.Product.CategoryID == categoryID {
				income = income.Add(d.Total())
			}
		}
	}

	return income, nil
}

// GetMostValuableCustomers ranks customers by total spent on receipts dated
// within [start, end]
func (s *statisticService) GetMostValuableCustomers(ctx context.Context, customerCount int, start, end time.Time) ([]dto.CustomerActivityModel, error) {
	if customerCount < 0 {
		return nil, domain.Invalidf("customer count must not be negative")
	}
	if end.Before(start) {
		return nil, domain.Invalidf("period end is before start")
	}

	receipts, err := s.source.ListWithDetails(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load receipts")
	}

	activity := []dto.CustomerActivityModel{}
	index := make(map[uuid.UUID]int)
	for _, r := range receipts {
		if !withinInclusive(r.OperationDate, start, end) {
			continue
		}
		i, seen := index[r.CustomerID]
		if !seen {
			name := ""
			if r.Customer != nil {
				name = r.Customer.FullName()
			}
			i = len(activity)
			index[r.CustomerID] = i
			activity = append(activity, dto.CustomerActivityModel{
				CustomerID:   r.CustomerID,
				CustomerName: name,
				ReceiptSum:   decimal.Zero,
			})
		}
		activity[i].ReceiptSum = activity[i].ReceiptSum.Add(r.Total())
	}

	slices.SortStableFunc(activity, func(a, b dto.CustomerActivityModel) int {
		return b.ReceiptSum.Cmp(a.ReceiptSum)
	})

	return activity[:min(customerCount, len(activity))], nil
}

type productQuantity struct {
	product  *domain.Product
	quantity int
}

func topProducts(details []*domain.ReceiptDetail, count int) []dto.ProductModel {
	var ranked []productQuantity
	index := make(map[uuid.UUID]int)
	for _, d := range details {
		i, seen := index[d.ProductID]
		if !seen {
			product := d.Product
			if product == nil {
				product = &domain.Product{ID: d.ProductID}
			}
			i = len(ranked)
			index[d.ProductID] = i
			ranked = append(ranked, productQuantity{product: product})
		}
		ranked[i].quantity += d.Quantity
	}

	slices.SortStableFunc(ranked, func(a, b productQuantity) int {
		return b.quantity - a.quantity
	})

	models := make([]dto.ProductModel, 0, min(count, len(ranked)))
	for _, pq := range ranked[:min(count, len(ranked))] {
		models = append(models, dto.ProductFromDomain(pq.product))
	}
	return models
}

func withinInclusive(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
