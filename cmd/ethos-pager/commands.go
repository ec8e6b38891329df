package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/ethos-paging/pkg/paging"
)

// pagingFlags are shared by the rows and pages commands.
type pagingFlags struct {
	version    string
	offset     int
	pageSize   int
	pageCount  int
	rowCount   int
	criteria   string
	namedQuery string
	filter     map[string]string
	queryAPI   string
}

func (f *pagingFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.version, "accept", paging.DefaultVersion, "representation version sent as Accept header")
	flags.IntVar(&f.offset, "offset", -1, "zero-based row to start at (negative: start at 0)")
	flags.IntVar(&f.pageSize, "page-size", 0, "rows per page (0: server maximum)")
	flags.IntVar(&f.pageCount, "page-count", -1, "number of pages to fetch (negative: all)")
	flags.IntVar(&f.rowCount, "row-count", -1, "number of rows to return (negative: all)")
	flags.StringVar(&f.criteria, "criteria", "", "criteria filter JSON")
	flags.StringVar(&f.namedQuery, "named-query", "", "named query as name=JSON")
	flags.StringToStringVar(&f.filter, "filter", nil, "plain key=value filter, repeatable")
	flags.StringVar(&f.queryAPI, "qapi", "", "query API request body (POST)")

	cmd.MarkFlagsMutuallyExclusive("criteria", "named-query", "filter", "qapi")
}

// request builds the paging request for resource.
func (f *pagingFlags) request(resource string) (paging.Request, error) {
	filter, err := f.buildFilter()
	if err != nil {
		return paging.Request{}, err
	}

	opts := []paging.Option{
		paging.WithVersion(f.version),
		paging.WithFilter(filter),
		paging.WithPageSize(f.pageSize),
	}
	if f.offset >= 0 {
		opts = append(opts, paging.WithOffset(f.offset))
	}
	if f.pageCount >= 0 {
		opts = append(opts, paging.WithPageCount(f.pageCount))
	}
	if f.rowCount >= 0 {
		opts = append(opts, paging.WithRowCount(f.rowCount))
	}
	return paging.NewRequest(resource, opts...), nil
}

func (f *pagingFlags) buildFilter() (paging.Filter, error) {
	switch {
	case f.criteria != "":
		return paging.CriteriaFilter(f.criteria), nil
	case f.namedQuery != "":
		name, query, ok := strings.Cut(f.namedQuery, "=")
		if !ok || name == "" {
			return paging.Filter{}, fmt.Errorf("named query %q: want name=JSON", f.namedQuery)
		}
		return paging.NamedQueryFilter(name, query), nil
	case len(f.filter) > 0:
		return paging.MapFilter(f.filter), nil
	case f.queryAPI != "":
		return paging.QueryAPIFilter(f.queryAPI), nil
	default:
		return paging.Filter{}, nil
	}
}

func newRowsCommand(a *app) *cobra.Command {
	f := &pagingFlags{}
	cmd := &cobra.Command{
		Use:   "rows <resource>",
		Short: "Print one JSON row per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(args[0])
			if err != nil {
				return err
			}
			rows, err := a.client.GetRows(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, row := range rows {
				fmt.Fprintln(a.out, row)
			}
			a.logger.Debug().Int("rows", len(rows)).Msg("Rows printed")
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newPagesCommand(a *app) *cobra.Command {
	f := &pagingFlags{}
	cmd := &cobra.Command{
		Use:   "pages <resource>",
		Short: "Print each page body on its own line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(args[0])
			if err != nil {
				return err
			}
			pages, err := a.client.GetPageStrings(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, page := range pages {
				fmt.Fprintln(a.out, page)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newCountCommand(a *app) *cobra.Command {
	f := &pagingFlags{}
	cmd := &cobra.Command{
		Use:   "count <resource>",
		Short: "Print the number of matching items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := f.buildFilter()
			if err != nil {
				return err
			}
			total, err := a.client.TotalCount(cmd.Context(), args[0], f.version, filter)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, total)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newGetCommand(a *app) *cobra.Command {
	var version string
	cmd := &cobra.Command{
		Use:   "get <resource> [id]",
		Short: "Print a single page, or one item by id",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				resp *paging.Response
				err  error
			)
			if len(args) == 2 {
				resp, err = a.client.GetByID(cmd.Context(), args[0], args[1], version)
			} else {
				resp, err = a.client.Get(cmd.Context(), args[0], version)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, resp.Content)
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "accept", paging.DefaultVersion, "representation version sent as Accept header")
	return cmd
}
