package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	cerrors "github.com/matzehuels/convroute/pkg/errors"
	"github.com/matzehuels/convroute/pkg/format"
	"github.com/matzehuels/convroute/pkg/search"
)

// defaultRouteLimit is the number of routes listed when --limit is not set.
const defaultRouteLimit = 5

// routeOpts holds the command-line flags for the route command.
type routeOpts struct {
	handler string        // required handler for the last hop
	simple  bool          // prefer a direct conversion, ignore handler
	limit   int           // maximum routes to list, 0 for all
	timeout time.Duration // per-search budget override
	json    bool          // machine-readable output
	stats   bool          // print cache and search metrics
}

// routeResult is the JSON output of the route command.
type routeResult struct {
	From   string             `json:"from"`
	To     string             `json:"to"`
	Simple bool               `json:"simple"`
	Routes []routeJSON        `json:"routes"`
	Stats  *search.CacheStats `json:"stats,omitempty"`
}

type routeJSON struct {
	Route string            `json:"route"`
	Cost  float64           `json:"cost"`
	Steps []format.PathStep `json:"steps"`
}

// routeCommand creates the route command.
func (c *CLI) routeCommand() *cobra.Command {
	opts := routeOpts{limit: defaultRouteLimit}

	cmd := &cobra.Command{
		Use:   "route FROM_MIME TO_MIME",
		Short: "List conversion routes between two formats, cheapest first",
		Example: `  convroute route image/jpeg video/mp4
  convroute route text/markdown application/pdf --handler pandoc
  convroute route image/png audio/wav --limit 0 --json`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeMIME,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, mime := range args {
				if err := cerrors.ValidateMIME(mime); err != nil {
					return err
				}
			}
			if opts.limit < 0 {
				return cerrors.New(cerrors.ErrCodeInvalidInput, "--limit must not be negative")
			}
			if cmd.Flags().Changed("timeout") {
				opts.timeout = max(opts.timeout, 0)
			} else {
				opts.timeout = -1
			}
			return c.runRoute(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.handler, "handler", "", "only list routes whose last step uses this handler")
	cmd.Flags().BoolVar(&opts.simple, "simple", false, "prefer a direct conversion and ignore --handler")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", opts.limit, "maximum number of routes (0 for all)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "search timeout (0 disables; default from config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print routes as JSON")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print search metrics")

	return cmd
}

// runRoute searches routes from one MIME type to another and prints them.
// A negative opts.timeout keeps the configured timeout.
func (c *CLI) runRoute(ctx context.Context, w io.Writer, from, to string, opts routeOpts) error {
	e, _, err := c.newEngine(ctx)
	if err != nil {
		return err
	}
	if opts.timeout >= 0 {
		e.SetSearchTimeout(opts.timeout)
	}

	g := e.Graph()
	for _, mime := range []string{from, to} {
		if _, ok := g.Index(mime); !ok {
			return cerrors.New(cerrors.ErrCodeUnknownFormat, "no handler supports %s", mime)
		}
	}
	if opts.handler != "" {
		if _, ok := g.Handler(format.NewHandlerName(opts.handler)); !ok {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "unknown handler %q", opts.handler)
		}
	}

	src := format.PathStep{Format: format.Descriptor{MIME: from}}
	dst := format.PathStep{Handler: format.NewHandlerName(opts.handler), Format: format.Descriptor{MIME: to}}

	result := routeResult{From: from, To: to, Simple: opts.simple, Routes: []routeJSON{}}
	for path := range e.SearchPath(ctx, src, dst, opts.simple) {
		cost, _ := e.PathCost(path)
		result.Routes = append(result.Routes, routeJSON{
			Route: format.PathString(path),
			Cost:  cost,
			Steps: path,
		})
		if opts.limit > 0 && len(result.Routes) >= opts.limit {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stats := e.CacheStats()
	if opts.stats {
		result.Stats = &stats
	}
	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printRoutes(w, result, stats.Metrics.TimeoutCount > 0)
	return nil
}

// printRoutes prints the route command's text output.
func printRoutes(w io.Writer, r routeResult, timedOut bool) {
	if len(r.Routes) == 0 {
		printWarning(w, "No route from %s to %s", r.From, r.To)
		if timedOut {
			printDetail(w, "the search timed out; try a longer --timeout")
		}
	} else {
		printSuccess(w, "%s from %s to %s", fmtCount(len(r.Routes), "route"), StyleTitle.Render(r.From), StyleTitle.Render(r.To))
		for i, route := range r.Routes {
			printRoute(w, i+1, route.Steps, route.Cost)
		}
	}

	if r.Stats == nil {
		return
	}
	m := r.Stats.Metrics
	fmt.Fprintln(w)
	printKeyValue(w, "searches", fmt.Sprint(m.TotalSearches))
	printKeyValue(w, "avg search", fmt.Sprintf("%.3fms", m.AverageSearchTimeMs))
	printKeyValue(w, "longest search", fmt.Sprintf("%.3fms", m.LongestSearchMs))
	printKeyValue(w, "timeouts", fmt.Sprint(m.TimeoutCount))
	printKeyValue(w, "cache", fmt.Sprintf("%d/%d entries, %.0f%% hit rate", r.Stats.Size, r.Stats.MaxSize, r.Stats.HitRate*100))
}
