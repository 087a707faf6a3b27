package domain

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductFieldAccess(t *testing.T) {
	var p Product
	values := map[Field]string{
		FieldID:           "trj-crd",
		FieldName:         "Tarjeta Credito",
		FieldDescription:  "Tarjeta de consumo",
		FieldLogo:         "https://example.com/logo.png",
		FieldDateRelease:  "2026-10-15",
		FieldDateRevision: "2027-10-15",
	}

	for _, f := range AllFields() {
		require.NoError(t, p.Set(f, values[f]))
	}
	for _, f := range AllFields() {
		assert.Equal(t, values[f], p.Value(f), "field %s", f)
	}

	assert.Error(t, p.Set(Field("price"), "10"))
	assert.Empty(t, p.Value(Field("price")))
}

func TestProductJSONKeys(t *testing.T) {
	b, err := json.Marshal(Product{ID: "abc", DateRelease: "2026-10-15", DateRevision: "2027-10-15"})
	require.NoError(t, err)

	var raw map[string]string
	require.NoError(t, json.Unmarshal(b, &raw))
	for _, f := range AllFields() {
		_, ok := raw[string(f)]
		assert.True(t, ok, "missing json key %s", f)
	}
}

// ---- Interface compile-time test ----

type mockProductAPI struct{}

func (m *mockProductAPI) List(ctx context.Context) ([]Product, error) { return nil, nil }

func (m *mockProductAPI) Create(ctx context.Context, p Product) (Product, error) { return p, nil }

func (m *mockProductAPI) Update(ctx context.Context, p Product) (Product, error) { return p, nil }

func (m *mockProductAPI) Delete(ctx context.Context, id string) error { return nil }

func (m *mockProductAPI) VerifyID(ctx context.Context, id string) (bool, error) { return false, nil }

// compile-time assertion
var _ ProductAPI = (*mockProductAPI)(nil)
