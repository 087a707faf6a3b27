// Package cli provides the Cobra-based CLI for the product catalog.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"productcatalog/client"
	"productcatalog/config"
	"productcatalog/domain"
	"productcatalog/form"
	"productcatalog/listing"
	"productcatalog/logging"
	"productcatalog/navigation"
	"productcatalog/validation"
)

var (
	rootCmd = &cobra.Command{
		Use:           "catalog",
		Short:         "Manage the financial product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile := viper.GetString("config"); cfgFile != "" {
				viper.SetConfigFile(cfgFile)
				if err := viper.ReadInConfig(); err != nil {
					return fmt.Errorf("read config: %w", err)
				}
			}

			var err error
			cfg, err = config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			logger = logging.New(cfg)

			// IMPORTANT: allow tests to inject the API
			if productAPI == nil {
				productAPI = client.New(cfg.BaseURL(), cfg.Timeout, logger)
			}
			return nil
		},
	}

	cfg        *config.Config
	logger     = zerolog.Nop()
	productAPI domain.ProductAPI
)

// alertMu serializes alerts from concurrent imports.
var alertMu sync.Mutex

// alerter writes user-facing alerts to the command's error stream.
type alerter struct {
	w io.Writer
}

func (a alerter) Alert(message string) {
	alertMu.Lock()
	defer alertMu.Unlock()
	fmt.Fprintln(a.w, "error:", message)
}

func newForm(cmd *cobra.Command, nav navigation.Navigator) *form.Controller {
	engine := validation.New(productAPI, validation.WithLogger(logger))
	return form.New(productAPI, engine, nav, alerter{cmd.ErrOrStderr()}, logger)
}

func newList(cmd *cobra.Command, nav navigation.Navigator) *listing.Controller {
	engine := listing.NewEngine()
	engine.SetLimit(cfg.PageSize)
	return listing.NewController(productAPI, engine, nav, alerter{cmd.ErrOrStderr()}, logger)
}

func init() {
	// shell
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			for {
				fmt.Fprint(out, "catalog> ")
				line, err := r.ReadString('\n')
				if err != nil {
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}
				rootCmd.SetArgs(strings.Fields(line))
				if err := rootCmd.Execute(); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
				rootCmd.SetArgs(nil)
				resetFlags(rootCmd)
			}
		},
	}
	rootCmd.AddCommand(shellCmd)

	rootCmd.PersistentFlags().String("config", "", "config file")
	rootCmd.PersistentFlags().String("api-url", config.DefaultAPIURL, "products API base url")
	rootCmd.PersistentFlags().String("api-prefix", config.DefaultAPIPrefix, "API gateway path prefix")
	rootCmd.PersistentFlags().Duration("timeout", config.DefaultTimeout, "API request timeout")
	rootCmd.PersistentFlags().Int("page-size", config.DefaultPageSize, "products shown per page")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format: console|json")

	for _, name := range []string{"config", "api-url", "api-prefix", "timeout", "page-size", "log-level", "log-format"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix("CATALOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// list
	var lSearch, lOutput string
	var lLimit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			list := newList(cmd, navigation.NewHistory(logger))
			if err := list.Load(cmd.Context()); err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				list.SetLimit(lLimit)
			}
			list.Search(lSearch)

			state := list.State()
			return renderProducts(cmd.OutOrStdout(), state.Visible, state.Total, lOutput)
		},
	}
	listCmd.Flags().StringVar(&lSearch, "search", "", "filter by name or description")
	listCmd.Flags().IntVar(&lLimit, "limit", 0, "products shown (defaults to --page-size)")
	listCmd.Flags().StringVar(&lOutput, "output", "table", "output format: table|json")
	rootCmd.AddCommand(listCmd)

	// create
	var cValues productFlags
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			nav := navigation.NewHistory(logger)
			nav.Navigate(navigation.Create())
			f := newForm(cmd, nav)
			if err := f.Initialize(cmd.Context(), ""); err != nil {
				return err
			}
			if err := cValues.apply(cmd, f, true); err != nil {
				return err
			}
			return submit(cmd, f)
		},
	}
	cValues.register(createCmd, true)
	rootCmd.AddCommand(createCmd)

	// edit
	var eValues productFlags
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nav := navigation.NewHistory(logger)
			nav.Navigate(navigation.Edit(args[0]))
			f := newForm(cmd, nav)
			if err := f.Initialize(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := eValues.apply(cmd, f, false); err != nil {
				return err
			}
			return submit(cmd, f)
		},
	}
	eValues.register(editCmd, false)
	rootCmd.AddCommand(editCmd)

	// delete
	var force bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := newList(cmd, navigation.NewHistory(logger))
			if err := list.Load(cmd.Context()); err != nil {
				return err
			}
			p, ok := findProduct(list, args[0])
			if !ok {
				return domain.NewProductNotFoundError(args[0])
			}

			out := cmd.OutOrStdout()
			list.RequestDelete(p)
			if !force && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete %s (%s)? (y/N): ", p.Name, p.ID)) {
				list.DismissDelete()
				fmt.Fprintln(out, "aborted")
				return nil
			}
			if err := list.ConfirmDelete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "deleted")
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&force, "force", false, "skip confirmation")
	rootCmd.AddCommand(deleteCmd)

	// check-id
	checkIDCmd := &cobra.Command{
		Use:   "check-id <id>",
		Short: "Check whether a product id can be used",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			engine := validation.New(productAPI, validation.WithLogger(logger))
			if errs := engine.ValidateField(domain.FieldID, id); len(errs) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, validation.Message(errs))
				return errs[0]
			}
			if err := engine.CheckIDUnique(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, validation.Message([]error{err}))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: available\n", id)
			return nil
		},
	}
	rootCmd.AddCommand(checkIDCmd)

	// open
	openCmd := &cobra.Command{
		Use:   "open <path>",
		Short: "Show the view a route path leads to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := navigation.Resolve(args[0])
			nav := navigation.NewHistory(logger)
			nav.Navigate(view)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, view)

			switch view.Name {
			case navigation.ViewCreate, navigation.ViewEdit:
				f := newForm(cmd, nav)
				if err := f.Initialize(cmd.Context(), view.ID); err != nil {
					return err
				}
				return printJSON(out, f.Values())
			}

			list := newList(cmd, nav)
			if err := list.Load(cmd.Context()); err != nil {
				return err
			}
			state := list.State()
			return renderProducts(out, state.Visible, state.Total, "table")
		},
	}
	rootCmd.AddCommand(openCmd)
}

// productFlags are the editable product fields as command flags.
type productFlags struct {
	id, name, description, logo, dateRelease string
}

func (pf *productFlags) register(cmd *cobra.Command, withID bool) {
	if withID {
		cmd.Flags().StringVar(&pf.id, "id", "", "product id (3-10 characters)")
	}
	cmd.Flags().StringVar(&pf.name, "name", "", "name (5-100 characters)")
	cmd.Flags().StringVar(&pf.description, "description", "", "description (10-200 characters)")
	cmd.Flags().StringVar(&pf.logo, "logo", "", "logo url")
	cmd.Flags().StringVar(&pf.dateRelease, "date-release", "", "release date YYYY-MM-DD; the revision date follows one year later")
}

// apply writes the flags into f. In create mode every field is written;
// otherwise only the flags given on the command line.
func (pf *productFlags) apply(cmd *cobra.Command, f *form.Controller, all bool) error {
	fields := []struct {
		flag  string
		field domain.Field
		value string
	}{
		{"id", domain.FieldID, pf.id},
		{"name", domain.FieldName, pf.name},
		{"description", domain.FieldDescription, pf.description},
		{"logo", domain.FieldLogo, pf.logo},
		{"date-release", domain.FieldDateRelease, pf.dateRelease},
	}
	for _, fl := range fields {
		if cmd.Flags().Lookup(fl.flag) == nil {
			continue
		}
		if !all && !cmd.Flags().Changed(fl.flag) {
			continue
		}
		if err := f.SetField(cmd.Context(), fl.field, fl.value); err != nil {
			return err
		}
	}
	return nil
}

// submit sends the form and prints the saved product, or the field errors
// when the form is invalid.
func submit(cmd *cobra.Command, f *form.Controller) error {
	err := f.Submit(cmd.Context())
	if errors.Is(err, form.ErrFormInvalid) {
		w := cmd.ErrOrStderr()
		for _, field := range domain.AllFields() {
			if f.IsInvalid(field) {
				fmt.Fprintf(w, "  %s: %s\n", field, f.ErrorMessage(field))
			}
		}
		return err
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), f.Values())
}

func findProduct(list *listing.Controller, id string) (domain.Product, bool) {
	for _, p := range list.Products() {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	resp := strings.TrimSpace(line)
	return resp == "y" || resp == "Y"
}

func renderProducts(w io.Writer, products []domain.Product, total int, output string) error {
	if output == "json" {
		return printJSON(w, products)
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Description", "Logo", "Release", "Revision")
	for _, p := range products {
		if err := table.Append(p.ID, p.Name, p.Description, p.Logo, p.DateRelease, p.DateRevision); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d of %d products\n", len(products), total)
	return nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// resetFlags restores the local flags of every subcommand to their defaults
// so that one shell line does not leak into the next.
func resetFlags(root *cobra.Command) {
	for _, c := range root.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
