// Command portfolio serves the portfolio site and offers a few maintenance
// commands against the same configuration.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "portfolio",
		Short: "Personal portfolio site",
		Long: `portfolio serves the portfolio pages, the project filter, the contact
form and the admin area. Configuration comes from the environment, with a
.env file in the working directory loaded first.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newProjectsCmd())
	root.AddCommand(newCleanupCmd())
	return root
}
