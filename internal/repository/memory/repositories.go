package memory

import (
	"context"
	"slices"
	"strings"

	"trade-market/internal/domain"
	"trade-market/internal/repository"

	"github.com/google/uuid"
)

type categoryRepository struct{ s *Store }

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.data.categories.all() {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	r.s.data.categories.insert(category.ID, *category)
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.data.categories.get(category.ID)
	if !ok {
		return repository.ErrCategoryNotFound
	}
	for _, c := range r.s.data.categories.all() {
		if c.ID != category.ID && c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	existing.Name = category.Name
	r.s.data.categories.replace(category.ID, existing)
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.categories.get(id); !ok {
		return repository.ErrCategoryNotFound
	}
	for _, p := range r.s.data.products.all() {
		if p.CategoryID == id {
			return repository.ErrCategoryInUse
		}
	}
	r.s.data.categories.remove(id)
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.data.categories.get(id)
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	categories := []*domain.Category{}
	for _, c := range r.s.data.categories.all() {
		categories = append(categories, &c)
	}
	slices.SortStableFunc(categories, func(a, b *domain.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return categories, nil
}

type productRepository struct{ s *Store }

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.categories.get(product.CategoryID); !ok {
		return repository.ErrProductCategoryMissing
	}
	p := *product
	p.Category = nil
	r.s.data.products.insert(p.ID, p)
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.data.products.get(product.ID)
	if !ok {
		return repository.ErrProductNotFound
	}
	if _, ok := r.s.data.categories.get(product.CategoryID); !ok {
		return repository.ErrProductCategoryMissing
	}
	existing.Name = product.Name
	existing.Price = product.Price
	existing.CategoryID = product.CategoryID
	existing.UpdatedAt = product.UpdatedAt
	r.s.data.products.replace(product.ID, existing)
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.products.get(id); !ok {
		return repository.ErrProductNotFound
	}
	for _, d := range r.s.data.details.all() {
		if d.ProductID == id {
			return repository.ErrProductInUse
		}
	}
	r.s.data.products.remove(id)
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.products.get(id)
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (r *productRepository) FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.products.get(id)
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return r.s.productWithCategory(p), nil
}

func (r *productRepository) ListWithDetails(ctx context.Context) ([]*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := []*domain.Product{}
	for _, p := range r.s.data.products.all() {
		products = append(products, r.s.productWithCategory(p))
	}
	return products, nil
}

type customerRepository struct{ s *Store }

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.data.customers.insert(customer.ID, *customer)
	return nil
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.data.customers.get(customer.ID)
	if !ok {
		return repository.ErrCustomerNotFound
	}
	existing.Name = customer.Name
	existing.Surname = customer.Surname
	existing.BirthDate = customer.BirthDate
	existing.DiscountValue = customer.DiscountValue
	r.s.data.customers.replace(customer.ID, existing)
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.customers.get(id); !ok {
		return repository.ErrCustomerNotFound
	}
	for _, rc := range r.s.data.receipts.all() {
		if rc.CustomerID == id {
			return repository.ErrCustomerInUse
		}
	}
	r.s.data.customers.remove(id)
	return nil
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.data.customers.get(id)
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	customers := []*domain.Customer{}
	for _, c := range r.s.data.customers.all() {
		customers = append(customers, &c)
	}
	return customers, nil
}

func (r *customerRepository) ListByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	buyers := make(map[uuid.UUID]bool)
	for _, d := range r.s.data.details.all() {
		if d.ProductID != productID {
			continue
		}
		if rc, ok := r.s.data.receipts.get(d.ReceiptID); ok {
			buyers[rc.CustomerID] = true
		}
	}

	customers := []*domain.Customer{}
	for _, c := range r.s.data.customers.all() {
		if buyers[c.ID] {
			customers = append(customers, &c)
		}
	}
	return customers, nil
}

type receiptRepository struct{ s *Store }

func (r *receiptRepository) Create(ctx context.Context, receipt *domain.Receipt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.customers.get(receipt.CustomerID); !ok {
		return repository.ErrReceiptCustomerMissing
	}
	rc := *receipt
	rc.Customer = nil
	rc.Details = nil
	r.s.data.receipts.insert(rc.ID, rc)
	return nil
}

func (r *receiptRepository) Update(ctx context.Context, receipt *domain.Receipt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.data.receipts.get(receipt.ID)
	if !ok {
		return repository.ErrReceiptNotFound
	}
	if _, ok := r.s.data.customers.get(receipt.CustomerID); !ok {
		return repository.ErrReceiptCustomerMissing
	}
	existing.CustomerID = receipt.CustomerID
	existing.OperationDate = receipt.OperationDate
	existing.IsCheckedOut = receipt.IsCheckedOut
	r.s.data.receipts.replace(receipt.ID, existing)
	return nil
}

func (r *receiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.receipts.get(id); !ok {
		return repository.ErrReceiptNotFound
	}
	for _, d := range r.s.data.details.all() {
		if d.ReceiptID == id {
			return repository.ErrReceiptHasDetails
		}
	}
	r.s.data.receipts.remove(id)
	return nil
}

func (r *receiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rc, ok := r.s.data.receipts.get(id)
	if !ok {
		return nil, repository.ErrReceiptNotFound
	}
	return &rc, nil
}

func (r *receiptRepository) FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rc, ok := r.s.data.receipts.get(id)
	if !ok {
		return nil, repository.ErrReceiptNotFound
	}
	return r.s.receiptWithDetails(rc), nil
}

func (r *receiptRepository) ListWithDetails(ctx context.Context) ([]*domain.Receipt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byReceipt := make(map[uuid.UUID][]*domain.ReceiptDetail)
	for _, d := range r.s.data.details.all() {
		byReceipt[d.ReceiptID] = append(byReceipt[d.ReceiptID], r.s.detailWithProduct(d))
	}

	receipts := []*domain.Receipt{}
	for _, rc := range r.s.data.receipts.all() {
		if c, ok := r.s.data.customers.get(rc.CustomerID); ok {
			rc.Customer = &c
		}
		rc.Details = byReceipt[rc.ID]
		if rc.Details == nil {
			rc.Details = []*domain.ReceiptDetail{}
		}
		receipts = append(receipts, &rc)
	}
	return receipts, nil
}

type receiptDetailRepository struct{ s *Store }

func (r *receiptDetailRepository) Create(ctx context.Context, detail *domain.ReceiptDetail) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.receipts.get(detail.ReceiptID); !ok {
		return repository.ErrReceiptDetailOrphan
	}
	if _, ok := r.s.data.products.get(detail.ProductID); !ok {
		return repository.ErrReceiptDetailOrphan
	}
	for _, d := range r.s.data.details.all() {
		if d.ReceiptID == detail.ReceiptID && d.ProductID == detail.ProductID {
			return repository.ErrReceiptDetailExists
		}
	}
	d := *detail
	d.Product = nil
	r.s.data.details.insert(d.ID, d)
	return nil
}

func (r *receiptDetailRepository) Update(ctx context.Context, detail *domain.ReceiptDetail) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.data.details.get(detail.ID)
	if !ok {
		return repository.ErrReceiptDetailNotFound
	}
	existing.Quantity = detail.Quantity
	r.s.data.details.replace(detail.ID, existing)
	return nil
}

func (r *receiptDetailRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.data.details.remove(id) {
		return repository.ErrReceiptDetailNotFound
	}
	return nil
}

func (r *receiptDetailRepository) DeleteByReceiptID(ctx context.Context, receiptID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	removed := 0
	for _, d := range r.s.data.details.all() {
		if d.ReceiptID == receiptID {
			r.s.data.details.remove(d.ID)
			removed++
		}
	}
	return removed, nil
}

func (r *receiptDetailRepository) ListByReceiptID(ctx context.Context, receiptID uuid.UUID) ([]*domain.ReceiptDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.receiptDetails(receiptID), nil
}
