package cmd

import (
	"fmt"
	"strconv"

	"github.com/atinyakov/inventory/internal/assets"
	"github.com/atinyakov/inventory/internal/repository"
	"github.com/atinyakov/inventory/internal/service"
	"github.com/spf13/cobra"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Item administration",
}

var itemsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an item regardless of owner",
	Long:  `Deletes the item and reclaims its stored image. This is the only way to remove unowned catalogue items.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid item id %q", args[0])
		}

		ctx := cmd.Context()
		conn, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		store, err := assets.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			return err
		}
		items := service.NewItemService(repository.NewPostgresItemRepository(conn), store, log)

		item, err := items.AdminDelete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete item %d: %w", id, err)
		}
		cmd.Printf("Deleted item %d (%s)\n", item.ID, item.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(itemsCmd)
	itemsCmd.AddCommand(itemsRmCmd)
}
