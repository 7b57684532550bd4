package cmd

import (
	"github.com/atinyakov/inventory/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		conn, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := db.Migrate(ctx, conn, log); err != nil {
			return err
		}
		cmd.Println("Database is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
