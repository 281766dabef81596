package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/store"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		noCache bool
		props   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <coordinate>",
		Short: "Show an artifact's descriptor metadata",
		Long:  `Resolve fetches an artifact's POM, follows its parent chain for inherited properties and prints the resolved metadata. Nothing is stored.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			co, err := artifact.Parse(args[0])
			if err != nil {
				return err
			}
			rt, err := c.open(ctx, openOptions{noCache: noCache})
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			spinner := newSpinnerWithContext(ctx, "Resolving "+co.String()+"...")
			spinner.Start()
			raw, err := rt.client.FetchPOM(ctx, co)
			if err != nil {
				spinner.StopWithError("Descriptor unavailable")
				return err
			}
			meta, err := rt.inspector().Inspect(ctx, co, raw)
			if err != nil {
				spinner.StopWithError("Descriptor unparsable")
				return err
			}
			info, infoErr := rt.client.FileInfo(ctx, co)
			spinner.StopWithSuccess(co.String())

			printKeyValue("Description", orDash(meta.Description))
			printKeyValue("Source", orDash(meta.SourceCodeURL))
			if meta.Parent != nil {
				printKeyValue("Parent", meta.Parent.String())
			} else {
				printKeyValue("Parent", "-")
			}
			if infoErr == nil {
				if info.LastModified != nil {
					printKeyValue("Modified", info.LastModified.Format("2006-01-02 15:04"))
				}
				printKeyValue("Size", orDash(info.Size))
			} else {
				c.Logger.Debug("file info unavailable", "coord", co, "err", infoErr)
			}
			if len(meta.Modules) > 0 {
				printKeyValue("Modules", fmt.Sprint(len(meta.Modules)))
				for _, m := range meta.Modules {
					printDetail("%s", m)
				}
			}
			printKeyValue("Properties", fmt.Sprint(meta.Properties.Len()))
			if props {
				for _, k := range meta.Properties.Keys() {
					v, _ := meta.Properties.Get(k)
					printDetail("%s = %s", k, v)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the HTTP response cache")
	cmd.Flags().BoolVar(&props, "properties", false, "list the accumulated properties")
	return cmd
}

// probeCommand creates the probe command.
func (c *CLI) probeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <coordinate>",
		Short: "List an artifact's direct transitive dependencies",
		Long:  `Probe runs the dependency-tree tool against a synthetic project depending only on the artifact and prints its direct dependencies with their scopes.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			co, err := artifact.Parse(args[0])
			if err != nil {
				return err
			}
			rt, err := c.open(ctx, openOptions{noCache: true})
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(ctx, "Probing "+co.String()+"...")
			spinner.Start()
			deps, err := rt.prober().Probe(ctx, co)
			if err != nil {
				spinner.StopWithError("Probe failed")
				return err
			}
			spinner.Stop()
			prog.done("Probe finished", "coord", co, "dependencies", len(deps))

			for _, d := range deps {
				fmt.Printf("%s %s\n", d.Coordinate, StyleDim.Render(d.Scope))
			}
			return nil
		},
	}
	return cmd
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <coordinate>",
		Short: "Print a stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			co, err := artifact.Parse(args[0])
			if err != nil {
				return err
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

			rec, err := s.Get(ctx, co)
			if errors.Is(err, store.ErrNotFound) {
				printWarning("No record for %s", co)
				printNextStep("Crawl it", "mavcrawl crawl "+co.String())
				return err
			}
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			printRecord(rec)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")
	return cmd
}

// printRecord prints rec as labelled lines.
func printRecord(rec *artifact.Record) {
	fmt.Println(StyleTitle.Render(rec.Coordinate.String()))
	printKeyValue("Status", string(rec.Status))
	printKeyValue("Description", orDash(rec.Description))
	printKeyValue("Source", orDash(rec.SourceCodeURL))
	if rec.LastModified != nil {
		printKeyValue("Modified", rec.LastModified.Format("2006-01-02 15:04"))
	}
	printKeyValue("Size", orDash(rec.SizeBytes))
	if rec.Parent != nil {
		printKeyValue("Parent", rec.Parent.String())
	}
	if rec.CrawlRun != "" {
		printKeyValue("Run", rec.CrawlRun)
	}
	if len(rec.Children) > 0 {
		printKeyValue("Children", fmt.Sprint(len(rec.Children)))
		for _, ch := range rec.Children {
			printDetail("%s", ch)
		}
	}
	printKeyValue("Dependencies", fmt.Sprint(len(rec.Dependencies)))
	for _, d := range rec.Dependencies {
		printDetail("%s (%s)", d.Coordinate, d.Scope)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
