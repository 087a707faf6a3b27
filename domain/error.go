// Package domain defines error types for the product catalog.
package domain

import (
	"errors"
	"fmt"
)

// RequiredError is reported when a required field is empty.
type RequiredError struct {
	Field Field
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("%s: required", e.Field)
}

// Is allows proper error type checking with errors.Is()
func (e *RequiredError) Is(target error) bool {
	_, ok := target.(*RequiredError)
	return ok
}

// MinLengthError is reported when a value is shorter than the field allows.
type MinLengthError struct {
	Field    Field
	Required int
	Actual   int
}

func (e *MinLengthError) Error() string {
	return fmt.Sprintf("%s: length %d below minimum %d", e.Field, e.Actual, e.Required)
}

// Is allows proper error type checking with errors.Is()
func (e *MinLengthError) Is(target error) bool {
	_, ok := target.(*MinLengthError)
	return ok
}

// MaxLengthError is reported when a value is longer than the field allows.
type MaxLengthError struct {
	Field    Field
	Required int
	Actual   int
}

func (e *MaxLengthError) Error() string {
	return fmt.Sprintf("%s: length %d above maximum %d", e.Field, e.Actual, e.Required)
}

// Is allows proper error type checking with errors.Is()
func (e *MaxLengthError) Is(target error) bool {
	_, ok := target.(*MaxLengthError)
	return ok
}

// IDExistsError is reported when a new product id is already taken.
type IDExistsError struct {
	ID string
}

func (e *IDExistsError) Error() string {
	return fmt.Sprintf("id: %s already exists", e.ID)
}

// Is allows proper error type checking with errors.Is()
func (e *IDExistsError) Is(target error) bool {
	_, ok := target.(*IDExistsError)
	return ok
}

// MinDateError is reported when a date sorts before the allowed minimum.
type MinDateError struct {
	Field  Field
	Min    string
	Actual string
}

func (e *MinDateError) Error() string {
	return fmt.Sprintf("%s: %s is before %s", e.Field, e.Actual, e.Min)
}

// Is allows proper error type checking with errors.Is()
func (e *MinDateError) Is(target error) bool {
	_, ok := target.(*MinDateError)
	return ok
}

// InvalidValueError is the generic fallback for values no other rule describes.
type InvalidValueError struct {
	Field  Field
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: invalid value %q: %s", e.Field, e.Value, e.Reason)
}

// Is allows proper error type checking with errors.Is()
func (e *InvalidValueError) Is(target error) bool {
	_, ok := target.(*InvalidValueError)
	return ok
}

// NetworkError wraps transport and server failures of the products API.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: status=%d message=%s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is allows proper error type checking with errors.Is()
func (e *NetworkError) Is(target error) bool {
	_, ok := target.(*NetworkError)
	return ok
}

// ProductNotFoundError is returned when a product with the given ID is not found
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: id=%s", e.ProductID)
}

// Is allows proper error type checking with errors.Is()
func (e *ProductNotFoundError) Is(target error) bool {
	_, ok := target.(*ProductNotFoundError)
	return ok
}

// DuplicateProductError is returned when attempting to store a product with an existing ID
type DuplicateProductError struct {
	ProductID string
}

func (e *DuplicateProductError) Error() string {
	return fmt.Sprintf("duplicate product: id=%s already exists", e.ProductID)
}

// Is allows proper error type checking with errors.Is()
func (e *DuplicateProductError) Is(target error) bool {
	_, ok := target.(*DuplicateProductError)
	return ok
}

// NewProductNotFoundError creates a new ProductNotFoundError
func NewProductNotFoundError(productID string) error {
	return &ProductNotFoundError{ProductID: productID}
}

// NewDuplicateProductError creates a new DuplicateProductError
func NewDuplicateProductError(productID string) error {
	return &DuplicateProductError{ProductID: productID}
}

// IsProductNotFoundError checks if an error is a ProductNotFoundError
func IsProductNotFoundError(err error) bool {
	var pnf *ProductNotFoundError
	return errors.As(err, &pnf)
}

// IsDuplicateProductError checks if an error is a DuplicateProductError
func IsDuplicateProductError(err error) bool {
	var dpe *DuplicateProductError
	return errors.As(err, &dpe)
}

// IsNetworkError checks if an error is a NetworkError
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsFieldValidationError reports whether err belongs to the per-field
// validation family.
func IsFieldValidationError(err error) bool {
	var (
		req *RequiredError
		mnl *MinLengthError
		mxl *MaxLengthError
		ide *IDExistsError
		mnd *MinDateError
		inv *InvalidValueError
	)
	return errors.As(err, &req) || errors.As(err, &mnl) || errors.As(err, &mxl) ||
		errors.As(err, &ide) || errors.As(err, &mnd) || errors.As(err, &inv)
}
