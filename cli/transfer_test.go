package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productcatalog/domain"
	"productcatalog/form"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func productJSON(t *testing.T, products ...domain.Product) string {
	t.Helper()
	b, err := json.Marshal(products)
	require.NoError(t, err)
	return string(b)
}

func TestParseProducts(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"array", `[{"id":"a"},{"id":"b"}]`, []string{"a", "b"}, false},
		{"ndjson", "{\"id\":\"a\"}\n\n{\"id\":\"b\"}\n", []string{"a", "b"}, false},
		{"single object", `{"id":"a"}`, []string{"a"}, false},
		{"empty", "  \n", nil, true},
		{"broken array", `[{"id":"a"`, nil, true},
		{"broken line", "{\"id\":\"a\"}\nnot json\n", nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			products, err := parseProducts([]byte(tc.input))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			ids := make([]string, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestImport(t *testing.T) {
	st := setup(t, seeded("taken", "Existing product"))

	valid := []domain.Product{
		seeded("imp1", "Imported one"),
		seeded("imp2", "Imported two"),
		seeded("imp3", "Imported three"),
	}
	// the revision date is derived on import, whatever the file says
	valid[2].DateRevision = "1999-01-01"
	invalid := seeded("x", "Bad")
	duplicate := seeded("taken", "Duplicate product")

	path := writeFile(t, "products.json", productJSON(t, append(valid, invalid, duplicate)...))

	out, _, err := run("", "import", "--file", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, form.ErrFormInvalid)
	assert.Contains(t, err.Error(), `product "x"`)
	assert.Contains(t, err.Error(), "id: Minimum length is 3 characters")
	assert.Contains(t, err.Error(), "name: Minimum length is 5 characters")
	assert.Contains(t, err.Error(), "id: This ID already exists")
	assert.Equal(t, "imported 3 of 5 products\n", out)

	ctx := context.Background()
	for _, p := range valid {
		stored, err := st.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, revisionDate, stored.DateRevision)
	}
	stored, err := st.Get(ctx, "taken")
	require.NoError(t, err)
	assert.Equal(t, "Existing product", stored.Name)
}

func TestImportNDJSON(t *testing.T) {
	st := setup(t)

	var lines []string
	for _, p := range []domain.Product{seeded("nd1", "Line product one"), seeded("nd2", "Line product two")} {
		b, err := json.Marshal(p)
		require.NoError(t, err)
		lines = append(lines, string(b))
	}
	path := writeFile(t, "products.ndjson", strings.Join(lines, "\n"))

	out, _, err := run("", "import", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "imported 2 of 2 products\n", out)

	products, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestImportRequiresFile(t *testing.T) {
	setup(t)
	_, _, err := run("", "import")
	assert.EqualError(t, err, "--file required")
}

func TestExport(t *testing.T) {
	setup(t,
		seeded("p1", "Visa Gold"),
		seeded("p2", "Mastercard"),
		seeded("p3", "Visa Classic"),
	)
	path := filepath.Join(t.TempDir(), "export.json")

	_, _, err := run("", "export", "--file", path, "--search", "visa")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var exported []domain.Product
	require.NoError(t, json.Unmarshal(b, &exported))
	require.Len(t, exported, 2)
	assert.Equal(t, "p1", exported[0].ID)
	assert.Equal(t, "p3", exported[1].ID)

	_, _, err = run("", "export", "--file", path)
	require.NoError(t, err)
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &exported))
	assert.Len(t, exported, 3)
}

func TestServeStopsWithContext(t *testing.T) {
	setup(t)
	seed := writeFile(t, "seed.json", productJSON(t, seeded("s1", "Seeded product")))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	rootCmd.SetArgs([]string{"serve", "--listen", "127.0.0.1:0", "--seed", seed})
	err := rootCmd.ExecuteContext(ctx)
	assert.NoError(t, err)
}
