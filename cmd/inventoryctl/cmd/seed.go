package cmd

import (
	"github.com/atinyakov/inventory/internal/db"
	"github.com/atinyakov/inventory/internal/models"
	"github.com/atinyakov/inventory/internal/repository"
	"github.com/spf13/cobra"
)

// demoCatalogue is inserted without an owner; such rows are read-only
// through the API.
var demoCatalogue = []models.Item{
	{
		Name:        "Laptop Pro 14 inch",
		Description: "High-performance laptop with the latest processor, suited to professionals and content creators.",
		ImageRef:    "https://placehold.co/600x400/EEE/31343C?text=Laptop+Pro",
	},
	{
		Name:        "RGB Mechanical Keyboard",
		Description: "Keyboard with responsive blue switches and customizable RGB lighting.",
		ImageRef:    "https://placehold.co/600x400/31343C/EEE?text=Keyboard+RGB",
	},
	{
		Name:        "Wireless Gaming Mouse",
		Description: "Lightweight mouse with a high-precision sensor and lag-free wireless connectivity.",
		ImageRef:    "https://placehold.co/600x400/5A67D8/FFFFFF?text=Mouse+Gaming",
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo catalogue",
	Long:  `Inserts unowned demo items. Items already seeded under the same name are skipped.`,
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

		n, err := repository.NewPostgresItemRepository(conn).SeedCatalogue(ctx, demoCatalogue)
		if err != nil {
			return err
		}
		cmd.Printf("Seeded %d item(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
