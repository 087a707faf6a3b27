// Package listing derives the visible page of the product list and drives
// the list view: loading, the per-row context menu and confirmed deletion.
package listing

import (
	"strings"
	"sync"

	"productcatalog/domain"
	"productcatalog/util"
)

// DefaultLimit is the number of products shown when no page size is chosen.
const DefaultLimit = 5

// Filter keeps the products whose name or description contains term,
// ignoring case, then truncates to the first limit entries in collection
// order. An empty term keeps everything; a negative limit is treated as 0.
func Filter(products []domain.Product, term string, limit int) []domain.Product {
	term = strings.ToLower(term)
	limit = max(limit, 0)

	out := make([]domain.Product, 0, min(limit, len(products)))
	for _, p := range products {
		if len(out) == limit {
			break
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Engine holds the loaded collection and the view parameters, and keeps the
// visible page current. Parameter changes never reload the collection.
type Engine struct {
	mu         sync.RWMutex
	products   []domain.Product
	searchTerm string
	limit      int
	visible    []domain.Product

	changes util.Observable[[]domain.Product]
}

// NewEngine creates an empty Engine with DefaultLimit.
func NewEngine() *Engine {
	return &Engine{
		limit:   DefaultLimit,
		visible: []domain.Product{},
	}
}

// SetProducts replaces the whole collection.
func (e *Engine) SetProducts(products []domain.Product) {
	e.update(func() {
		e.products = append([]domain.Product(nil), products...)
	})
}

func (e *Engine) SetSearchTerm(term string) {
	e.update(func() { e.searchTerm = term })
}

func (e *Engine) SetLimit(limit int) {
	e.update(func() { e.limit = limit })
}

func (e *Engine) update(change func()) {
	e.mu.Lock()
	change()
	e.visible = Filter(e.products, e.searchTerm, e.limit)
	visible := append([]domain.Product(nil), e.visible...)
	e.mu.Unlock()

	e.changes.Publish(visible)
}

// Visible returns the current page.
func (e *Engine) Visible() []domain.Product {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.Product{}, e.visible...)
}

// Products returns the full collection in arrival order.
func (e *Engine) Products() []domain.Product {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.Product{}, e.products...)
}

func (e *Engine) SearchTerm() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.searchTerm
}

func (e *Engine) Limit() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.limit
}

// Subscribe calls fn with the new page after every change.
func (e *Engine) Subscribe(fn func([]domain.Product)) (unsubscribe func()) {
	return e.changes.Subscribe(fn)
}
