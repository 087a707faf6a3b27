package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"productcatalog/config"
	"productcatalog/domain"
	"productcatalog/form"
	"productcatalog/listing"
	"productcatalog/mockapi"
	"productcatalog/navigation"
	"productcatalog/store"
)

// maxImportWorkers bounds concurrent create requests during import.
const maxImportWorkers = 10

func init() {
	// serve
	var seedFile string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local products API",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed []domain.Product
			if seedFile != "" {
				var err error
				if seed, err = readProducts(seedFile); err != nil {
					return err
				}
			}
			st, err := store.NewMemoryStore(seed...)
			if err != nil {
				return err
			}

			httpServer := &http.Server{
				Addr:         cfg.Listen,
				Handler:      mockapi.New(st, cfg.APIPrefix, logger).Handler(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.Listen).Str("prefix", cfg.APIPrefix).Int("products", len(seed)).Msg("starting products API")
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info().Msg("shutting down products API")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
	serveCmd.Flags().String("listen", config.DefaultListen, "listen address")
	serveCmd.Flags().StringVar(&seedFile, "seed", "", "JSON or NDJSON file of initial products")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	rootCmd.AddCommand(serveCmd)

	// import (JSON array or NDJSON)
	var importFile string
	importCmd := &cobra.Command{
		Use:   "import --file <file>",
		Short: "Import products from JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if importFile == "" {
				return errors.New("--file required")
			}
			products, err := readProducts(importFile)
			if err != nil {
				return err
			}

			start := time.Now()
			created, err := importProducts(cmd, products)
			logger.Info().
				Int("created", created).
				Int("total", len(products)).
				Dur("duration", time.Since(start)).
				Msg("import finished")
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d products\n", created, len(products))
			return err
		},
	}
	importCmd.Flags().StringVar(&importFile, "file", "", "input file")
	rootCmd.AddCommand(importCmd)

	// export
	var exportFile, exportSearch string
	exportCmd := &cobra.Command{
		Use:   "export --file <file>",
		Short: "Export products to JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if exportFile == "" {
				return errors.New("--file required")
			}
			products, err := productAPI.List(cmd.Context())
			if err != nil {
				return err
			}
			out := listing.Filter(products, exportSearch, len(products))
			b, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(exportFile, b, 0o644); err != nil {
				return err
			}
			logger.Info().Str("file", exportFile).Int("count", len(out)).Msg("products exported")
			return nil
		},
	}
	exportCmd.Flags().StringVar(&exportFile, "file", "", "output file")
	exportCmd.Flags().StringVar(&exportSearch, "search", "", "filter by name or description")
	rootCmd.AddCommand(exportCmd)
}

// importProducts sends every product through its own create form, at most
// maxImportWorkers at a time. Invalid or rejected products are reported
// together; the rest are created.
func importProducts(cmd *cobra.Command, products []domain.Product) (int, error) {
	var (
		mu      sync.Mutex
		created int
		errs    []error
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(maxImportWorkers)
	for _, p := range products {
		g.Go(func() error {
			if err := importOne(ctx, cmd, p); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			created++
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return created, errors.Join(errs...)
}

func importOne(ctx context.Context, cmd *cobra.Command, p domain.Product) error {
	f := newForm(cmd, navigation.NewHistory(logger))
	for _, field := range domain.AllFields() {
		if field == domain.FieldDateRevision {
			continue
		}
		if err := f.SetField(ctx, field, p.Value(field)); err != nil {
			return fmt.Errorf("product %q: %w", p.ID, err)
		}
	}

	err := f.Submit(ctx)
	if errors.Is(err, form.ErrFormInvalid) {
		var fieldErrs []error
		for _, field := range domain.AllFields() {
			if msg := f.ErrorMessage(field); msg != "" {
				fieldErrs = append(fieldErrs, fmt.Errorf("%s: %s", field, msg))
			}
		}
		return fmt.Errorf("product %q: %w: %w", p.ID, err, errors.Join(fieldErrs...))
	}
	if err != nil {
		return fmt.Errorf("product %q: %w", p.ID, err)
	}
	return nil
}

// readProducts reads a JSON array or newline-delimited JSON objects.
func readProducts(path string) ([]domain.Product, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseProducts(b)
}

func parseProducts(b []byte) ([]domain.Product, error) {
	btrim := bytes.TrimSpace(b)
	if len(btrim) == 0 {
		return nil, errors.New("empty file")
	}

	var products []domain.Product

	// JSON array
	if btrim[0] == '[' {
		if err := json.Unmarshal(btrim, &products); err != nil {
			return nil, err
		}
		return products, nil
	}

	// NDJSON or single JSON object
	scanner := bufio.NewScanner(bytes.NewReader(btrim))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var p domain.Product
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
