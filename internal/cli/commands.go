package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kbukum/restorm/config"
	"github.com/kbukum/restorm/observability"
	"github.com/kbukum/restorm/version"
)

func newListCommand() *cobra.Command {
	var (
		filters []string
		order   []string
		columns []string
		limit   int
		offset  int
	)
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List the objects of a resource",
		Example: `  # Everyone living in London, oldest first
  restorm list people --filter address__city=London --order -age

  # Two ids at once
  restorm list people --filter id=1 --filter id=2 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd.Context())
			f, err := parseFilters(filters)
			if err != nil {
				return err
			}
			q := a.query(args[0]).Filter(f).OrderBy(order...).Offset(offset)
			if cmd.Flags().Changed("limit") {
				q = q.Limit(limit)
			}
			recs, err := q.List(cmd.Context())
			if err != nil {
				return err
			}
			return renderRecords(cmd.OutOrStdout(), a.output, recs, columns)
		},
	}
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as key=value (repeatable)")
	cmd.Flags().StringSliceVar(&order, "order", nil, "ordering fields, prefix - for descending")
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "table columns, dotted for nested fields")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of objects")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of objects to skip")
	return cmd
}

func newGetCommand() *cobra.Command {
	var filters []string
	cmd := &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Fetch one object by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd.Context())
			f, err := parseFilters(filters)
			if err != nil {
				return err
			}
			rec, err := a.query(args[0]).Filter(f).Fetch(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return renderRecord(cmd.OutOrStdout(), a.output, rec)
		},
	}
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as key=value (repeatable)")
	return cmd
}

func newCountCommand() *cobra.Command {
	var filters []string
	cmd := &cobra.Command{
		Use:   "count <resource>",
		Short: "Count the objects of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd.Context())
			f, err := parseFilters(filters)
			if err != nil {
				return err
			}
			n, err := a.query(args[0]).Filter(f).Count(cmd.Context())
			if err != nil {
				return err
			}
			if a.output == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"count": n})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as key=value (repeatable)")
	return cmd
}

func newResourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "Show the configured resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := fromContext(cmd.Context())
			names := a.cfg.ResourceNames()
			if a.output == "json" {
				return writeJSON(cmd.OutOrStdout(), a.cfg.Resources)
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"name", "path", "results key", "page size"})
			for _, name := range names {
				r := a.cfg.Resources[name]
				t.AppendRow(table.Row{name, r.Path, r.ResultsKey, r.PageSize})
			}
			t.Render()
			return nil
		},
	}
}

func newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping [resource...]",
		Short: "Check that resources answer",
		Long:  "Queries one object from each resource, all configured ones by default.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd.Context())
			names := args
			if len(names) == 0 {
				names = a.cfg.ResourceNames()
			}
			if len(names) == 0 {
				return fmt.Errorf("no resources configured; name one to ping")
			}
			checkers := make([]observability.HealthChecker, len(names))
			for i, name := range names {
				checkers[i] = observability.HealthCheckFunc{Name: name, Probe: a.probe(name)}
			}
			health := observability.Check(cmd.Context(), a.cfg.Name, version.Short(), checkers...)

			if a.output == "json" {
				if err := writeJSON(cmd.OutOrStdout(), health); err != nil {
					return err
				}
			} else {
				renderHealth(cmd, health)
			}
			if health.Status != observability.HealthStatusUp {
				return fmt.Errorf("%s is %s", a.cfg.API.BaseURL, health.Status)
			}
			return nil
		},
	}
}

func renderHealth(cmd *cobra.Command, health *observability.ServiceHealth) {
	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"resource", "status", "latency", "message"})
	for _, c := range health.Components {
		t.AppendRow(table.Row{c.Name, c.Status, c.Latency.Round(time.Millisecond), c.Message})
	}
	t.Render()
}

func newVersionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := version.Full()
			if short {
				v = version.Short()
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.ServiceName, v)
			return err
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the short version only")
	return cmd
}
