package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"productcatalog/domain"
	"productcatalog/navigation"
	"productcatalog/util"
)

// ErrNothingStaged is returned by ConfirmDelete when no product awaits
// confirmation.
var ErrNothingStaged = errors.New("no product staged for deletion")

// DeleteFailedMessage is the alert shown when a confirmed delete fails.
const DeleteFailedMessage = "Could not delete the product"

// State is a snapshot of the list view.
type State struct {
	Loading       bool
	Visible       []domain.Product
	Total         int
	ActiveMenuID  string
	PendingDelete *domain.Product
	ConfirmOpen   bool
}

// Controller owns the state of one list view activation.
type Controller struct {
	api    domain.ProductAPI
	engine *Engine
	nav    navigation.Navigator
	alerts domain.Alerter
	logger zerolog.Logger

	mu           sync.Mutex
	loading      bool
	activeMenuID string
	pending      *domain.Product
	confirmOpen  bool

	changes util.Observable[State]
}

// NewController creates a list controller. Call Load to fetch the collection.
func NewController(api domain.ProductAPI, engine *Engine, nav navigation.Navigator, alerts domain.Alerter, logger zerolog.Logger) *Controller {
	c := &Controller{
		api:    api,
		engine: engine,
		nav:    nav,
		alerts: alerts,
		logger: logger.With().Str("component", "list").Logger(),
	}
	engine.Subscribe(func([]domain.Product) { c.publish() })
	return c
}

// Load fetches the full collection. On failure the previous collection is
// kept and the error is returned after the loading flag is cleared.
func (c *Controller) Load(ctx context.Context) error {
	c.setLoading(true)

	products, err := c.api.List(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load products")
		c.setLoading(false)
		return fmt.Errorf("load products: %w", err)
	}

	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
	c.engine.SetProducts(products)

	c.logger.Debug().Int("count", len(products)).Msg("products loaded")
	return nil
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
	c.publish()
}

func (c *Controller) Search(term string) {
	c.engine.SetSearchTerm(term)
}

func (c *Controller) SetLimit(limit int) {
	c.engine.SetLimit(limit)
}

// ToggleMenu opens the context menu of product id, closing any other one.
// Toggling the open menu closes it.
func (c *Controller) ToggleMenu(id string) {
	c.mu.Lock()
	if c.activeMenuID == id {
		c.activeMenuID = ""
	} else {
		c.activeMenuID = id
	}
	c.mu.Unlock()
	c.publish()
}

// CloseMenu closes any open context menu.
func (c *Controller) CloseMenu() {
	c.mu.Lock()
	c.activeMenuID = ""
	c.mu.Unlock()
	c.publish()
}

// ActiveMenu returns the id whose menu is open, or "".
func (c *Controller) ActiveMenu() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeMenuID
}

// Edit navigates to the edit view of p.
func (c *Controller) Edit(p domain.Product) {
	c.CloseMenu()
	c.nav.Navigate(navigation.Edit(p.ID))
}

// RequestDelete stages p and opens the confirmation.
func (c *Controller) RequestDelete(p domain.Product) {
	c.mu.Lock()
	c.pending = &p
	c.confirmOpen = true
	c.activeMenuID = ""
	c.mu.Unlock()
	c.publish()
}

// ConfirmDelete deletes the staged product and reloads the collection. On
// failure the user is alerted and the product stays staged.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()
	if pending == nil {
		return ErrNothingStaged
	}

	if err := c.api.Delete(ctx, pending.ID); err != nil {
		c.logger.Error().Err(err).Str("product_id", pending.ID).Msg("failed to delete product")
		c.alerts.Alert(DeleteFailedMessage)
		return fmt.Errorf("delete product %s: %w", pending.ID, err)
	}
	c.logger.Info().Str("product_id", pending.ID).Msg("product deleted")

	if err := c.Load(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("reload after delete failed")
	}
	c.DismissDelete()
	return nil
}

// DismissDelete clears the staged product without any request.
func (c *Controller) DismissDelete() {
	c.mu.Lock()
	c.pending = nil
	c.confirmOpen = false
	c.mu.Unlock()
	c.publish()
}

// Products returns the loaded collection, unfiltered.
func (c *Controller) Products() []domain.Product {
	return c.engine.Products()
}

// State returns a snapshot of the view.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() State {
	s := State{
		Loading:      c.loading,
		Visible:      c.engine.Visible(),
		Total:        len(c.engine.Products()),
		ActiveMenuID: c.activeMenuID,
		ConfirmOpen:  c.confirmOpen,
	}
	if c.pending != nil {
		p := *c.pending
		s.PendingDelete = &p
	}
	return s
}

// Subscribe calls fn with a fresh snapshot after every change.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	return c.changes.Subscribe(fn)
}

func (c *Controller) publish() {
	c.changes.Publish(c.State())
}
