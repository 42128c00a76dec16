// Package commands implements the CLI commands for ipkg.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/ipkg/internal/app"
	"go.trai.ch/ipkg/internal/build"
)

// CLI represents the command line interface for ipkg.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Configure(opts app.GlobalOptions)
	Packages(ctx context.Context, w io.Writer, opts app.PackagesOptions) error
	Parents(ctx context.Context, w io.Writer, name string) error
	Path(ctx context.Context, w io.Writer, pkgs []string) error
	Checkout(ctx context.Context) error
	Clone(ctx context.Context, name string, opts app.CloneOptions) error
	Sources(ctx context.Context, w io.Writer) error
	Update(ctx context.Context) error
	Config(ctx context.Context, w io.Writer) error
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "ipkg",
		Short:         "A dependency manager for hardware IP packages",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("json-log", false, "Log as JSON lines")
	rootCmd.PersistentFlags().Bool("offline", false, "Resolve without network access")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		jsonLog, _ := cmd.Flags().GetBool("json-log")
		offline, _ := cmd.Flags().GetBool("offline")
		a.Configure(app.GlobalOptions{Verbose: verbose, JSONLog: jsonLog, Offline: offline})
	}

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newPackagesCmd())
	rootCmd.AddCommand(c.newParentsCmd())
	rootCmd.AddCommand(c.newPathCmd())
	rootCmd.AddCommand(c.newCheckoutCmd())
	rootCmd.AddCommand(c.newCloneCmd())
	rootCmd.AddCommand(c.newSourcesCmd())
	rootCmd.AddCommand(c.newUpdateCmd())
	rootCmd.AddCommand(c.newConfigCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
