package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavcrawl/pkg/api"
	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/render"
)

// Render output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored graph over a read-only HTTP API",
		Long: `Serve exposes the store over HTTP:

  GET /healthz
  GET /artifacts[?status=resolved|placeholder]
  GET /artifacts/{group:artifact:version}
  GET /artifacts/{group:artifact:version}/graph[?depth=N&format=dot|svg]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			s, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			printInfo("Listening on %s", StyleLink.Render("http://"+addr))
			printDetail("Store: %s", cfg.Store.Backend)
			return api.NewServer(addr, api.NewHandler(s, c.Logger)).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		format   string
		depth    int
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render <coordinate>",
		Short: "Render a record's stored neighbourhood as DOT or SVG",
		Long:  `Render draws the records reachable from a coordinate within depth hops along dependency, parent and module edges.`,
		Example: `  mavcrawl render org.apache.hadoop:hadoop-common:3.3.6 -o hadoop.svg
  mavcrawl render com.google.guava:guava:33.0.0-jre --format dot --depth 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			co, err := artifact.Parse(args[0])
			if err != nil {
				return err
			}
			if format == "" {
				format = formatFromPath(output)
			}
			if format != formatDOT && format != formatSVG {
				return fmt.Errorf("unknown format %q (use %s or %s)", format, formatDOT, formatSVG)
			}
			if depth < 0 || depth > api.MaxGraphDepth {
				return fmt.Errorf("depth must be between 0 and %d", api.MaxGraphDepth)
			}

			cfg, err := c.config()
			if err != nil {
				return err
			}
			s, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			g, err := render.Neighbourhood(ctx, s, co, depth)
			if err != nil {
				return err
			}
			data := []byte(render.ToDOT(g, render.Options{Detailed: detailed}))
			if format == formatSVG {
				if data, err = render.RenderSVG(ctx, string(data)); err != nil {
					return err
				}
			}

			if output == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered %s", co)
			printStats(len(g.Nodes), len(g.Edges))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "dot or svg (default from output extension, else dot)")
	cmd.Flags().IntVarP(&depth, "depth", "d", 2, "hops from the coordinate")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with status and description")
	return cmd
}

func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return formatSVG
	}
	return formatDOT
}
