// Package form implements the create/edit product form: field state,
// validation, the asynchronous id check and submission.
package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/rs/zerolog"

	"productcatalog/domain"
	"productcatalog/navigation"
	"productcatalog/util"
	"productcatalog/validation"
)

var (
	ErrFieldDisabled    = errors.New("field is disabled")
	ErrFieldReadOnly    = errors.New("field is read-only")
	ErrFormInvalid      = errors.New("form is invalid")
	ErrSubmitInProgress = errors.New("submit already in progress")
)

// SaveFailedMessage is the alert shown when create or update fails.
const SaveFailedMessage = "Could not save the product"

// Mode is the form lifecycle state. Create may turn into Edit, never back.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// State is a snapshot of the form.
type State struct {
	Mode       Mode
	Values     domain.Product
	Touched    map[domain.Field]bool
	Dirty      map[domain.Field]bool
	Errors     validation.Result
	IDDisabled bool
	CheckingID bool
	Submitting bool
}

// Valid reports whether the form could be submitted as it stands.
func (s State) Valid() bool {
	return s.Errors.Valid() && !s.CheckingID
}

// idCheck is one in-flight uniqueness lookup.
type idCheck struct {
	seq  uint64
	done chan struct{}
}

// Controller owns the state of one form instance.
type Controller struct {
	api    domain.ProductAPI
	engine *validation.Engine
	nav    navigation.Navigator
	alerts domain.Alerter
	logger zerolog.Logger

	mu         sync.Mutex
	mode       Mode
	values     domain.Product
	touched    map[domain.Field]bool
	dirty      map[domain.Field]bool
	idSeq      uint64
	idCheck    *idCheck
	idErr      error
	submitting bool
	// boundID is the id of the record loaded in edit mode.
	boundID string

	changes util.Observable[State]
}

// New creates a form in create mode with the id uniqueness check attached.
func New(api domain.ProductAPI, engine *validation.Engine, nav navigation.Navigator, alerts domain.Alerter, logger zerolog.Logger) *Controller {
	return &Controller{
		api:     api,
		engine:  engine,
		nav:     nav,
		alerts:  alerts,
		logger:  logger.With().Str("component", "form").Logger(),
		touched: make(map[domain.Field]bool),
		dirty:   make(map[domain.Field]bool),
	}
}

// Initialize binds the form to a product. An empty id keeps create mode.
// A non-empty id switches to edit mode, disables the id field and loads the
// matching record from the full collection. A failed load leaves the form
// empty; the error is logged and returned.
func (c *Controller) Initialize(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	c.mu.Lock()
	c.mode = ModeEdit
	c.idSeq++
	c.idCheck = nil
	c.idErr = nil
	c.mu.Unlock()
	c.publish()

	products, err := c.api.List(ctx)
	if err != nil {
		c.logger.Error().Err(err).Str("product_id", id).Msg("failed to load product")
		return fmt.Errorf("load product %s: %w", id, err)
	}

	for _, p := range products {
		if p.ID != id {
			continue
		}
		p.DateRelease = util.NormalizeDate(p.DateRelease)
		p.DateRevision = util.NormalizeDate(p.DateRevision)

		c.mu.Lock()
		c.values = p
		c.boundID = p.ID
		c.mu.Unlock()
		c.publish()

		c.logger.Debug().Str("product_id", id).Msg("product loaded into form")
		return nil
	}

	c.logger.Error().Str("product_id", id).Msg("product not found")
	return domain.NewProductNotFoundError(id)
}

// SetField writes a user edit. date_revision is derived and cannot be set;
// the id cannot change in edit mode. Setting date_release recomputes
// date_revision. Setting the id in create mode starts a uniqueness lookup
// that supersedes any earlier one.
func (c *Controller) SetField(ctx context.Context, field domain.Field, value string) error {
	c.mu.Lock()

	switch {
	case field == domain.FieldDateRevision:
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", field, ErrFieldReadOnly)
	case field == domain.FieldID && c.mode == ModeEdit:
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", field, ErrFieldDisabled)
	}

	if err := c.values.Set(field, value); err != nil {
		c.mu.Unlock()
		return err
	}
	c.dirty[field] = true

	var check *idCheck
	switch field {
	case domain.FieldDateRelease:
		if value != "" {
			if revision, err := util.DeriveRevision(value); err == nil {
				c.values.DateRevision = revision
			}
		}
	case domain.FieldID:
		check = c.startIDCheckLocked(value)
	}
	c.mu.Unlock()

	if check != nil {
		go c.runIDCheck(ctx, check, value)
	}
	c.publish()
	return nil
}

// startIDCheckLocked discards any pending lookup and, when the synchronous id
// rules pass, registers a new one.
func (c *Controller) startIDCheckLocked(id string) *idCheck {
	c.idSeq++
	c.idErr = nil
	c.idCheck = nil
	if len(c.engine.ValidateField(domain.FieldID, id)) > 0 {
		return nil
	}
	c.idCheck = &idCheck{seq: c.idSeq, done: make(chan struct{})}
	return c.idCheck
}

func (c *Controller) runIDCheck(ctx context.Context, check *idCheck, id string) {
	err := c.engine.CheckIDUnique(ctx, id)

	c.mu.Lock()
	latest := check.seq == c.idSeq
	if latest {
		c.idErr = err
		c.idCheck = nil
	}
	close(check.done)
	c.mu.Unlock()

	if !latest {
		c.logger.Debug().Str("product_id", id).Uint64("seq", check.seq).Msg("discarding stale id check")
		return
	}
	c.publish()
}

// WaitIDCheck blocks until no uniqueness lookup is pending.
func (c *Controller) WaitIDCheck(ctx context.Context) error {
	for {
		c.mu.Lock()
		check := c.idCheck
		c.mu.Unlock()
		if check == nil {
			return nil
		}

		select {
		case <-check.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Touch marks field as visited by the user.
func (c *Controller) Touch(field domain.Field) {
	c.mu.Lock()
	c.touched[field] = true
	c.mu.Unlock()
	c.publish()
}

// Submit validates the form once any pending id lookup settles. An invalid
// form marks every field touched and returns ErrFormInvalid without a
// request. A valid one is created or updated according to the mode; on
// success the list view is shown, on failure the user is alerted and the
// values are kept.
func (c *Controller) Submit(ctx context.Context) error {
	for {
		if err := c.WaitIDCheck(ctx); err != nil {
			return err
		}
		c.mu.Lock()
		if c.idCheck == nil {
			break
		}
		// an id edit started a new lookup after the wait returned
		c.mu.Unlock()
	}

	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	if !c.validateLocked().Valid() {
		for _, f := range domain.AllFields() {
			c.touched[f] = true
		}
		c.mu.Unlock()
		c.publish()
		return ErrFormInvalid
	}
	if c.mode == ModeEdit && c.boundID != "" {
		c.values.ID = c.boundID
	}
	// a loaded record may carry a revision that does not match its release
	if revision, err := util.DeriveRevision(c.values.DateRelease); err == nil {
		c.values.DateRevision = revision
	}
	c.submitting = true
	product := c.values
	mode := c.mode
	c.mu.Unlock()
	c.publish()

	var err error
	if mode == ModeEdit {
		_, err = c.api.Update(ctx, product)
	} else {
		_, err = c.api.Create(ctx, product)
	}

	c.mu.Lock()
	c.submitting = false
	c.mu.Unlock()
	c.publish()

	if err != nil {
		c.logger.Error().Err(err).Str("product_id", product.ID).Str("mode", mode.String()).Msg("failed to save product")
		c.alerts.Alert(SaveFailedMessage)
		return fmt.Errorf("save product %s: %w", product.ID, err)
	}

	c.logger.Info().Str("product_id", product.ID).Str("mode", mode.String()).Msg("product saved")
	c.nav.Navigate(navigation.List())
	return nil
}

// Reset clears every field and discards any pending id lookup. The mode is
// kept, and in edit mode so is the id of the loaded record.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.values = domain.Product{}
	if c.mode == ModeEdit {
		c.values.ID = c.boundID
	}
	c.touched = make(map[domain.Field]bool)
	c.dirty = make(map[domain.Field]bool)
	c.idSeq++
	c.idCheck = nil
	c.idErr = nil
	c.mu.Unlock()
	c.publish()
}

// Back leaves the form without saving.
func (c *Controller) Back() {
	c.nav.Navigate(navigation.List())
}

// validateLocked evaluates every enabled field. The id is disabled in edit
// mode and takes no part in validation.
func (c *Controller) validateLocked() validation.Result {
	res := c.engine.ValidateProduct(c.values)
	if c.mode == ModeEdit {
		delete(res, domain.FieldID)
		return res
	}
	res.Add(domain.FieldID, c.idErr)
	return res
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Values returns every field value, including disabled ones.
func (c *Controller) Values() domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// IsInvalid reports whether field has an error the user should see: it is
// invalid and has been edited or touched.
func (c *Controller) IsInvalid(field domain.Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.validateLocked()[field]) > 0 && (c.dirty[field] || c.touched[field])
}

// ErrorMessage returns the highest priority message for field, or "".
func (c *Controller) ErrorMessage(field domain.Field) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked().Message(field)
}

// State returns a snapshot of the form.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Mode:       c.mode,
		Values:     c.values,
		Touched:    maps.Clone(c.touched),
		Dirty:      maps.Clone(c.dirty),
		Errors:     c.validateLocked(),
		IDDisabled: c.mode == ModeEdit,
		CheckingID: c.idCheck != nil,
		Submitting: c.submitting,
	}
}

// Subscribe calls fn with a fresh snapshot after every change.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	return c.changes.Subscribe(fn)
}

func (c *Controller) publish() {
	c.changes.Publish(c.State())
}
