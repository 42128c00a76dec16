package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ipkg/internal/app"
)

func (c *CLI) newPackagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "List resolved packages, dependencies first",
		Long: "List resolved packages, one rank per line. Packages on a line only depend on packages " +
			"on earlier lines.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			graph, _ := cmd.Flags().GetBool("graph")
			flat, _ := cmd.Flags().GetBool("flat")
			return c.app.Packages(cmd.Context(), cmd.OutOrStdout(), app.PackagesOptions{
				Graph: graph,
				Flat:  flat,
			})
		},
	}
	cmd.Flags().BoolP("graph", "g", false, "Print each package followed by its direct dependencies")
	cmd.Flags().BoolP("flat", "f", false, "Print one entry per line")
	return cmd
}

func (c *CLI) newParentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parents <package>",
		Short: "List the packages requesting a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Parents(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func (c *CLI) newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <package>...",
		Short: "Check out packages and print their paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Path(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

func (c *CLI) newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Print the source files of every package as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Sources(cmd.Context(), cmd.OutOrStdout())
		},
	}
}
