// Package domain defines core business types and interfaces.
package domain

import (
	"context"
	"fmt"
)

// Product represents a catalog product as exchanged with the products API.
// Dates are canonical YYYY-MM-DD strings.
type Product struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Logo         string `json:"logo"`
	DateRelease  string `json:"date_release"`
	DateRevision string `json:"date_revision"`
}

// Field names a product form field. Values match the JSON keys.
type Field string

const (
	FieldID           Field = "id"
	FieldName         Field = "name"
	FieldDescription  Field = "description"
	FieldLogo         Field = "logo"
	FieldDateRelease  Field = "date_release"
	FieldDateRevision Field = "date_revision"
)

// AllFields returns every product field in form order.
func AllFields() []Field {
	return []Field{
		FieldID,
		FieldName,
		FieldDescription,
		FieldLogo,
		FieldDateRelease,
		FieldDateRevision,
	}
}

// Value returns the value of field f.
func (p Product) Value(f Field) string {
	switch f {
	case FieldID:
		return p.ID
	case FieldName:
		return p.Name
	case FieldDescription:
		return p.Description
	case FieldLogo:
		return p.Logo
	case FieldDateRelease:
		return p.DateRelease
	case FieldDateRevision:
		return p.DateRevision
	}
	return ""
}

// Set assigns value to field f.
func (p *Product) Set(f Field, value string) error {
	switch f {
	case FieldID:
		p.ID = value
	case FieldName:
		p.Name = value
	case FieldDescription:
		p.Description = value
	case FieldLogo:
		p.Logo = value
	case FieldDateRelease:
		p.DateRelease = value
	case FieldDateRevision:
		p.DateRevision = value
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// ProductAPI is the remote products resource.
type ProductAPI interface {
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id string) error
	IDVerifier
}

// IDVerifier reports whether a product id is already taken.
type IDVerifier interface {
	VerifyID(ctx context.Context, id string) (bool, error)
}

// Alerter surfaces a blocking, user-facing message.
type Alerter interface {
	Alert(message string)
}

// ProductStore defines the storage interface backing the local products API.
type ProductStore interface {
	Create(ctx context.Context, product Product) error
	Get(ctx context.Context, id string) (Product, error)
	Update(ctx context.Context, id string, product Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Product, error)
	Exists(ctx context.Context, id string) (bool, error)
}
