package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ipkg/internal/app"
)

func (c *CLI) newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Check out every dependency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Checkout(cmd.Context())
		},
	}
}

func (c *CLI) newCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <package>",
		Short: "Copy a dependency into a working directory and use it from there",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("path")
			return c.app.Clone(cmd.Context(), args[0], app.CloneOptions{Dir: dir})
		},
	}
	cmd.Flags().StringP("path", "p", app.DefaultCloneDir, "Directory receiving the working copy")
	return cmd
}

func (c *CLI) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Re-resolve dependencies ignoring the lockfile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Update(cmd.Context())
		},
	}
}
