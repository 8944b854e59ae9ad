package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pabean-labs/bc20-explorer/internal/store"
	"github.com/pabean-labs/bc20-explorer/pkg/filter"
)

// overridden in tests
var timeNow = time.Now

type explainOptions struct {
	file    string
	dialect string
	strict  bool
}

// NewExplainCommand prints the phase 1 SQL a filter compiles to.
func NewExplainCommand() *cobra.Command {
	opts := &explainOptions{}

	cmd := &cobra.Command{
		Use:   "explain [expression]",
		Short: "Compile a filter and print the resulting SQL",
		Example: `  bc20-explorer explain "importir.namaentitas ~ 'maju' and barang.postarif = '8703'"
  bc20-explorer explain --file rules.json --dialect postgres`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := opts.tree(args)
			if err != nil {
				return err
			}
			return explain(cmd.OutOrStdout(), tree, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "JSON rule tree file, - for stdin")
	cmd.Flags().StringVar(&opts.dialect, "dialect", string(store.DuckDB), "placeholder dialect: duckdb or postgres")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on unknown fields and operators")

	return cmd
}

func (o *explainOptions) tree(args []string) (*filter.Group, error) {
	switch {
	case o.file != "" && len(args) > 0:
		return nil, errors.New("pass either an expression or --file, not both")
	case o.file == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return filter.ParseRuleTree(data)
	case o.file != "":
		data, err := os.ReadFile(o.file)
		if err != nil {
			return nil, err
		}
		return filter.ParseRuleTree(data)
	case len(args) == 1:
		return filter.ParseExpression(args[0])
	default:
		return nil, errors.New("an expression or --file is required")
	}
}

func explain(w io.Writer, tree *filter.Group, o *explainOptions) error {
	dialect, err := store.ParseDialect(o.dialect)
	if err != nil {
		return err
	}

	var compilerOpts []filter.CompilerOption
	if o.strict {
		compilerOpts = append(compilerOpts, filter.WithStrict())
	}
	res, err := filter.NewCompiler(compilerOpts...).Compile(tree)
	if err != nil {
		return err
	}

	heading := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	heading.Fprintln(w, "Rule tree")
	fmt.Fprintf(w, "  %s\n\n", tree)

	listOpts := []store.ListOption{store.WithDefaultSort(), store.WithLimit(20)}
	if res.Empty() {
		faint.Fprintln(w, "  (no predicate, searching declarations registered today)")
		listOpts = append([]store.ListOption{store.ByRegistrationDay(timeNow())}, listOpts...)
	} else {
		listOpts = append([]store.ListOption{store.WithPredicate(res.Predicate)}, listOpts...)
	}

	query, args, err := store.NewStore(nil, store.WithDialect(dialect)).Declarations().ListSQL(listOpts...)
	if err != nil {
		return err
	}

	heading.Fprintln(w, "SQL")
	color.New(color.FgGreen).Fprintf(w, "  %s\n\n", query)

	heading.Fprintln(w, "Arguments")
	if len(args) == 0 {
		faint.Fprintln(w, "  (none)")
	}
	for i, a := range args {
		fmt.Fprintf(w, "  %d: %#v\n", i+1, a)
	}

	if len(res.Diagnostics) > 0 {
		fmt.Fprintln(w)
		heading.Fprintln(w, "Diagnostics")
		for _, d := range res.Diagnostics {
			warn.Fprintf(w, "  %s\n", strings.TrimSpace(d.String()))
		}
	}
	return nil
}
