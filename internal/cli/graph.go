package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	cerrors "github.com/matzehuels/convroute/pkg/errors"
	"github.com/matzehuels/convroute/pkg/fgraph"
	"github.com/matzehuels/convroute/pkg/search"
)

// Graph output formats.
const (
	graphFormatText = "text"
	graphFormatJSON = "json"
	graphFormatDOT  = "dot"
	graphFormatSVG  = "svg"
)

var graphFormats = []string{graphFormatText, graphFormatJSON, graphFormatDOT, graphFormatSVG}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var outFormat, output string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Dump the format graph",
		Long: `Dump the format graph built from the configured handlers.

Formats:
  text  nodes with their outgoing conversions and costs (default)
  json  nodes, edges and effective cost rules
  dot   Graphviz source
  svg   rendered with Graphviz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(graphFormats, outFormat) {
				return cerrors.New(cerrors.ErrCodeInvalidInput, "unknown graph format %q (want one of %v)", outFormat, graphFormats)
			}
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), outFormat, output)
		},
	}

	cmd.Flags().StringVarP(&outFormat, "format", "f", graphFormatText, "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, stdout, stderr io.Writer, outFormat, output string) error {
	logger := loggerFromContext(ctx)
	e, _, err := c.newEngine(ctx)
	if err != nil {
		return err
	}

	data, err := renderGraph(ctx, stderr, e, outFormat)
	if err != nil {
		return err
	}

	out, err := openOutput(stdout, output)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	if output != "" {
		logger.Infof("Wrote %s graph to %s", outFormat, output)
	}
	return nil
}

// renderGraph encodes the engine's current graph in outFormat. Progress for
// slow renders goes to status.
func renderGraph(ctx context.Context, status io.Writer, e *search.Engine, outFormat string) ([]byte, error) {
	var b bytes.Buffer
	switch outFormat {
	case graphFormatText:
		if err := e.Print(&b); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case graphFormatJSON:
		if err := e.Data().WriteJSON(&b); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case graphFormatDOT:
		return []byte(e.Graph().ToDOT()), nil
	case graphFormatSVG:
		spin := newSpinner(ctx, status, "Rendering graph with Graphviz...")
		spin.Start()
		svg, err := fgraph.RenderSVG(ctx, e.Graph().ToDOT())
		spin.Stop()
		if err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
		return svg, nil
	default:
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "unknown graph format %q", outFormat)
	}
}
