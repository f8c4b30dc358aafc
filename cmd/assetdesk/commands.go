package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"assetdesk/internal/collection"
	"assetdesk/internal/logging"
	"assetdesk/internal/screens"
	"assetdesk/internal/seed"
	"assetdesk/pkg/domain"
)

type cli struct {
	load   configLoader
	logger *logging.Logger
	trace  bool
	app    *app
}

// run executes one command line and always releases what the command opened.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, load configLoader, logger *logging.Logger) error {
	root, c := newRootCmd(load)
	c.logger = logger
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if cerr := c.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(load configLoader) (*cobra.Command, *cli) {
	c := &cli{load: load}
	root := &cobra.Command{
		Use:           "assetdesk",
		Short:         "Asset tracking admin screens",
		Long:          `assetdesk searches, filters, pages, edits and exports the asset, personnel and estate screens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd)
		},
	}
	root.PersistentFlags().BoolVar(&c.trace, "trace", false, "write one JSON trace line per operation to stderr")

	root.AddCommand(c.resourcesCmd())
	root.AddCommand(c.listCmd())
	root.AddCommand(c.exportCmd())
	root.AddCommand(c.createCmd())
	root.AddCommand(c.updateCmd())
	root.AddCommand(c.deleteCmd())
	root.AddCommand(c.seedCmd())
	return root, c
}

func (c *cli) open(cmd *cobra.Command) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	o := appOptions{logger: c.logger}
	if c.trace {
		o.trace = cmd.ErrOrStderr()
	}
	a, err := newApp(cmd.Context(), cfg, o)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.close()
	c.app = nil
	return err
}

func parseKind(name string) (domain.EntityKind, error) {
	return domain.ParseKind(name)
}

type queryFlags struct {
	search  string
	filters []string
	page    int
}

func (q *queryFlags) bind(cmd *cobra.Command, withPage bool) {
	cmd.Flags().StringVarP(&q.search, "search", "s", "", "free-text search")
	cmd.Flags().StringArrayVarP(&q.filters, "filter", "f", nil, "field=value filter, repeatable")
	if withPage {
		cmd.Flags().IntVarP(&q.page, "page", "p", 1, "page number")
	}
}

func (q *queryFlags) apply(s screens.Screen) error {
	for _, f := range q.filters {
		field, value, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("filter %q: want field=value", f)
		}
		if err := s.Filter(strings.TrimSpace(field), strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	if q.search != "" {
		s.Search(q.search)
	}
	if q.page > 1 {
		s.GoTo(q.page)
	}
	return nil
}

func (c *cli) resourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the available screens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := make([][]string, 0, len(domain.Kinds()))
			for _, kind := range domain.Kinds() {
				s, err := c.app.screen(string(kind))
				if err != nil {
					return err
				}
				p := s.Page()
				rows = append(rows, []string{kind.Plural(), fmt.Sprint(p.Total), fmt.Sprint(p.PageSize), strings.Join(s.Filterable(), ", ")})
			}
			renderTable(cmd.OutOrStdout(), []string{"RESOURCE", "RECORDS", "PAGE SIZE", "FILTERS"}, rows)
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "Show one page of a screen",
		Long: `Show one page of a screen after applying search and filters.

Examples:
  assetdesk list assets --filter category=Laptop
  assetdesk list users --search chen --page 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.screen(args[0])
			if err != nil {
				return err
			}
			if err := q.apply(s); err != nil {
				return err
			}
			renderPage(cmd.OutOrStdout(), s.Page())
			return nil
		},
	}
	q.bind(cmd, true)
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var q queryFlags
	var format string
	cmd := &cobra.Command{
		Use:   "export <resource>",
		Short: "Export every record matching the search and filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.screen(args[0])
			if err != nil {
				return err
			}
			f, err := collection.ParseFormat(format)
			if err != nil {
				return err
			}
			if err := q.apply(s); err != nil {
				return err
			}
			art, err := s.Export(cmd.Context(), f)
			renderLatest(cmd.OutOrStdout(), s.Notifications())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "  key:  %s\n  rows: %d\n", art.Key, art.Rows)
			if art.URL != "" {
				fmt.Fprintf(w, "  url:  %s\n", art.URL)
			}
			return nil
		},
	}
	q.bind(cmd, false)
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	return cmd
}

func readRecord(cmd *cobra.Command, data string) (json.RawMessage, error) {
	if data == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		return raw, nil
	}
	if strings.TrimSpace(data) == "" {
		return nil, fmt.Errorf("--data is required")
	}
	return json.RawMessage(data), nil
}

func (c *cli) createCmd() *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "create <resource>",
		Short: "Add a record; omit the identity to have one generated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.screen(args[0])
			if err != nil {
				return err
			}
			raw, err := readRecord(cmd, data)
			if err != nil {
				return err
			}
			_, err = s.Create(cmd.Context(), raw)
			renderLatest(cmd.OutOrStdout(), s.Notifications())
			return err
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "record as a JSON object, or - for stdin")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "update <resource> <id>",
		Short: "Change fields of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.screen(args[0])
			if err != nil {
				return err
			}
			raw, err := readRecord(cmd, data)
			if err != nil {
				return err
			}
			err = s.Update(cmd.Context(), args[1], raw)
			renderLatest(cmd.OutOrStdout(), s.Notifications())
			return err
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "fields as a JSON object, or - for stdin")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a record after the confirmation delay; interrupt to abandon",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.screen(args[0])
			if err != nil {
				return err
			}
			if err := s.RequestDelete(args[1]); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			err = s.ConfirmDelete(ctx, args[1])
			renderLatest(cmd.OutOrStdout(), s.Notifications())
			return err
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Manage seed data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import",
		Short: "Copy the built-in fixtures into the configured sqlite or postgres seed store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := seed.Copy(cmd.Context(), seed.Embedded(), c.app.src)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d resources into %s\n", successStyle.Sprint("Imported"), n, c.app.src.Driver())
			return nil
		},
	})
	return cmd
}
