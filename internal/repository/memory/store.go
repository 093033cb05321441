// Package memory implements the repository interfaces on top of in-process
// maps. It backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sync"

	"trade-market/internal/domain"
	"trade-market/internal/repository"

	"github.com/google/uuid"
)

type data struct {
	categories *table[domain.Category]
	products   *table[domain.Product]
	customers  *table[domain.Customer]
	receipts   *table[domain.Receipt]
	details    *table[domain.ReceiptDetail]
}

func (d *data) clone() *data {
	return &data{
		categories: d.categories.clone(),
		products:   d.products.clone(),
		customers:  d.customers.clone(),
		receipts:   d.receipts.clone(),
		details:    d.details.clone(),
	}
}

// Store is an in-memory UnitOfWork. Save calls are serialized and each one
// works on a private copy of the data that replaces the committed data only
// when it succeeds, so readers never observe a half-applied unit of work.
type Store struct {
	mu     sync.RWMutex
	saveMu sync.Mutex
	data   *data
}

var _ repository.UnitOfWork = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		data: &data{
			categories: newTable[domain.Category](),
			products:   newTable[domain.Product](),
			customers:  newTable[domain.Customer](),
			receipts:   newTable[domain.Receipt](),
			details:    newTable[domain.ReceiptDetail](),
		},
	}
}

func (s *Store) Categories() repository.CategoryRepository { return &categoryRepository{s} }
func (s *Store) Products() repository.ProductRepository    { return &productRepository{s} }
func (s *Store) Customers() repository.CustomerRepository  { return &customerRepository{s} }
func (s *Store) Receipts() repository.ReceiptRepository    { return &receiptRepository{s} }
func (s *Store) ReceiptDetails() repository.ReceiptDetailRepository {
	return &receiptDetailRepository{s}
}

// Save runs fn against a copy of the store and commits the copy if fn
// returns nil. An error or panic from fn leaves the store untouched.
func (s *Store) Save(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	tx := &Store{data: s.data.clone()}
	s.mu.RUnlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = tx.data
	s.mu.Unlock()
	return nil
}

// hydrate helpers expect s.mu to be held.

func (s *Store) productWithCategory(p domain.Product) *domain.Product {
	if c, ok := s.data.categories.get(p.CategoryID); ok {
		p.Category = &c
	}
	return &p
}

func (s *Store) detailWithProduct(d domain.ReceiptDetail) *domain.ReceiptDetail {
	if p, ok := s.data.products.get(d.ProductID); ok {
		d.Product = s.productWithCategory(p)
	}
	return &d
}

func (s *Store) receiptDetails(receiptID uuid.UUID) []*domain.ReceiptDetail {
	details := []*domain.ReceiptDetail{}
	for _, d := range s.data.details.all() {
		if d.ReceiptID == receiptID {
			details = append(details, s.detailWithProduct(d))
		}
	}
	return details
}

func (s *Store) receiptWithDetails(r domain.Receipt) *domain.Receipt {
	if c, ok := s.data.customers.get(r.CustomerID); ok {
		r.Customer = &c
	}
	r.Details = s.receiptDetails(r.ID)
	return &r
}
