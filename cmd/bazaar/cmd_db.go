package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/database/seeders"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// bazaar migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
		return migration.New(database.DB, cmd.OutOrStdout()).Run()
	},
}

// bazaar migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch…")
		return migration.New(database.DB, cmd.OutOrStdout()).Rollback()
	},
}

// bazaar migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		rows, err := migration.New(database.DB, nil).Status()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "STATUS\tBATCH\tMIGRATION")
		for _, s := range rows {
			state, batch := "Pending", "-"
			if s.Ran {
				state, batch = "Ran", fmt.Sprint(s.Batch)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", state, batch, s.Name)
		}
		return w.Flush()
	},
}

// bazaar seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		if err := seeders.RunAll(database.DB, cmd.OutOrStdout()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Demo accounts use the password %q.\n", seeders.DemoPassword)
		return nil
	},
}
