package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archlog/pkg/config"
)

// configCommand prints the effective configuration.
func (c *CLI) configCommand() *cobra.Command {
	var pathOnly bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration: defaults, overlaid by the config file,
overlaid by GITHUB_TOKEN and GITLAB_TOKEN. Tokens are masked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				p, err := config.Path()
				if err != nil {
					return err
				}
				path = p
			}
			if pathOnly {
				fmt.Fprintln(out, path)
				return nil
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			printInfo("%s", StyleDim.Render(path))
			fmt.Fprint(out, cfg.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&pathOnly, "path", false, "print only the config file path")
	return cmd
}
