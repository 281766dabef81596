package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavcrawl/internal/config"
	"github.com/matzehuels/mavcrawl/pkg/integrations/maven"
)

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fmt.Print(cfg.String())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.configPath != "" {
				fmt.Println(c.configPath)
				return nil
			}
			fmt.Println(config.DefaultPath())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "repositories",
		Short: "List repository presets and configured repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			for _, name := range maven.PresetNames() {
				if _, ok := cfg.Repositories[name]; ok {
					continue
				}
				r, _ := maven.Preset(name)
				printRepository(name, r, name == cfg.Repository)
			}
			for _, name := range slices.Sorted(maps.Keys(cfg.Repositories)) {
				printRepository(name, cfg.Repositories[name], name == cfg.Repository)
			}
			return nil
		},
	})

	return cmd
}

func printRepository(name string, r maven.Repository, selected bool) {
	marker := "  "
	if selected {
		marker = StyleHighlight.Render(iconArrow) + " "
	}
	fmt.Println(marker + StyleValue.Render(name) + " " + StyleDim.Render(r.WithDefaults().BaseURL))
}
