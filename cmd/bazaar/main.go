package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import migrations and seeders so their init() funcs register them.
	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	_ "github.com/shashiranjanraj/bazaar/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "bazaar",
	Short:         "bazaar: multi-role marketplace backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}
