// Package store provides the in-memory product storage behind the local
// products API.
package store

import (
	"context"
	"slices"
	"sync"

	"productcatalog/domain"
)

// MemoryStore is a thread-safe in-memory domain.ProductStore that keeps
// products in insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	order    []string
	products map[string]domain.Product
}

// NewMemoryStore constructs a MemoryStore holding the given products in order.
func NewMemoryStore(seed ...domain.Product) (*MemoryStore, error) {
	s := &MemoryStore{
		products: make(map[string]domain.Product),
	}
	for _, p := range seed {
		if err := s.Create(context.Background(), p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// compile-time assertion that MemoryStore implements domain.ProductStore
var _ domain.ProductStore = (*MemoryStore)(nil)

func (s *MemoryStore) Create(ctx context.Context, product domain.Product) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if product.ID == "" {
		return &domain.RequiredError{Field: domain.FieldID}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ID]; exists {
		return domain.NewDuplicateProductError(product.ID)
	}
	s.products[product.ID] = product
	s.order = append(s.order, product.ID)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (domain.Product, error) {
	select {
	case <-ctx.Done():
		return domain.Product{}, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.NewProductNotFoundError(id)
	}
	return p, nil
}

// Update replaces the product stored under id. The stored id never changes,
// whatever product.ID says.
func (s *MemoryStore) Update(ctx context.Context, id string, product domain.Product) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return domain.NewProductNotFoundError(id)
	}
	product.ID = id
	s.products[id] = product
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return domain.NewProductNotFoundError(id)
	}
	delete(s.products, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// List returns every product in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]domain.Product, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}
	return out, nil
}

func (s *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.products[id]
	return ok, nil
}
