// Package validation evaluates the product field rules: required, length
// bounds, canonical date format, minimum release date and id uniqueness.
package validation

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"productcatalog/domain"
	"productcatalog/util"
)

// rule is one validator tag plus the field error it maps to.
type rule struct {
	tag  string
	fail func(field domain.Field, value, today string) error
}

func required() rule {
	return rule{
		tag: "required",
		fail: func(f domain.Field, _, _ string) error {
			return &domain.RequiredError{Field: f}
		},
	}
}

// Length rules skip empty values; emptiness belongs to required.
func minLength(n int) rule {
	return rule{
		tag: "omitempty,min=" + strconv.Itoa(n),
		fail: func(f domain.Field, v, _ string) error {
			return &domain.MinLengthError{Field: f, Required: n, Actual: utf8.RuneCountInString(v)}
		},
	}
}

func maxLength(n int) rule {
	return rule{
		tag: "omitempty,max=" + strconv.Itoa(n),
		fail: func(f domain.Field, v, _ string) error {
			return &domain.MaxLengthError{Field: f, Required: n, Actual: utf8.RuneCountInString(v)}
		},
	}
}

func canonicalDate() rule {
	return rule{
		tag: "omitempty,datetime=" + util.DateLayout,
		fail: func(f domain.Field, v, _ string) error {
			return &domain.InvalidValueError{Field: f, Value: v, Reason: "expected YYYY-MM-DD"}
		},
	}
}

func notBeforeToday() rule {
	return rule{
		tag: "omitempty,mindate",
		fail: func(f domain.Field, v, today string) error {
			return &domain.MinDateError{Field: f, Min: today, Actual: v}
		},
	}
}

var fieldRules = map[domain.Field][]rule{
	domain.FieldID:           {required(), minLength(3), maxLength(10)},
	domain.FieldName:         {required(), minLength(5), maxLength(100)},
	domain.FieldDescription:  {required(), minLength(10), maxLength(200)},
	domain.FieldLogo:         {required()},
	domain.FieldDateRelease:  {required(), canonicalDate(), notBeforeToday()},
	domain.FieldDateRevision: {required()},
}

// Engine evaluates product field rules. It holds no per-form state and is
// safe for concurrent use.
type Engine struct {
	validate *validator.Validate
	verifier domain.IDVerifier
	now      func() time.Time
	logger   zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for the minimum-date rule.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine. verifier backs the id-uniqueness rule; a nil
// verifier disables it.
func New(verifier domain.IDVerifier, opts ...Option) *Engine {
	e := &Engine{
		verifier: verifier,
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "validation").Logger()

	e.validate = validator.New()
	err := e.validate.RegisterValidation("mindate", func(fl validator.FieldLevel) bool {
		// canonical dates compare lexically
		return fl.Field().String() >= util.Today(e.now())
	})
	if err != nil {
		panic(fmt.Sprintf("validation: register mindate: %v", err))
	}
	return e
}

// Today returns the canonical date the minimum-date rule compares against.
func (e *Engine) Today() string {
	return util.Today(e.now())
}

// ValidateField evaluates the synchronous rules of field against value and
// returns every failure, highest priority first.
func (e *Engine) ValidateField(field domain.Field, value string) []error {
	today := e.Today()

	var errs []error
	for _, r := range fieldRules[field] {
		if err := e.validate.Var(value, r.tag); err != nil {
			errs = append(errs, r.fail(field, value, today))
		}
	}
	SortByPriority(errs)
	return errs
}

// ValidateProduct evaluates the synchronous rules of every field.
func (e *Engine) ValidateProduct(p domain.Product) Result {
	res := make(Result)
	for _, f := range domain.AllFields() {
		if errs := e.ValidateField(f, p.Value(f)); len(errs) > 0 {
			res[f] = errs
		}
	}
	return res
}

// CheckIDUnique runs the asynchronous uniqueness rule. Empty ids are left to
// the required rule. A failed lookup resolves to no error so that transient
// outages never block submission.
func (e *Engine) CheckIDUnique(ctx context.Context, id string) error {
	if id == "" || e.verifier == nil {
		return nil
	}

	exists, err := e.verifier.VerifyID(ctx, id)
	if err != nil {
		e.logger.Warn().Err(err).Str("product_id", id).Msg("id verification failed, treating id as available")
		return nil
	}
	if exists {
		return &domain.IDExistsError{ID: id}
	}
	return nil
}

// Result maps each invalid field to its errors, highest priority first.
type Result map[domain.Field][]error

// Valid reports whether no field has errors.
func (r Result) Valid() bool {
	for _, errs := range r {
		if len(errs) > 0 {
			return false
		}
	}
	return true
}

// Add appends err to field, keeping priority order. Nil errors are ignored.
func (r Result) Add(field domain.Field, err error) {
	if err == nil {
		return
	}
	errs := append(r[field], err)
	SortByPriority(errs)
	r[field] = errs
}

// Message returns the surfaced message for field, or "" when it is valid.
func (r Result) Message(field domain.Field) string {
	return Message(r[field])
}
