package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/centavo-dev/centavo/internal/cache"
	"github.com/centavo-dev/centavo/internal/ledger"
	"github.com/centavo-dev/centavo/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending and income categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesRenameCmd())
	cmd.AddCommand(categoriesRemoveCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			withTotals, _ := cmd.Flags().GetBool("totals")
			userID, _ := cmd.Flags().GetInt64("user")

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if withTotals {
				if userID == 0 {
					user, err := store.DefaultUser(ctx)
					if err != nil {
						return err
					}
					userID = user.ID
				}
				totals, err := store.ListCategoryTotals(ctx, userID)
				if err != nil {
					return err
				}
				for _, total := range totals {
					fmt.Printf("%-30s %-5s %12s\n", total.Name, total.Type, total.Total.StringFixed(2))
				}
				return nil
			}

			categories, err := store.ListCategories(ctx)
			if err != nil {
				return err
			}
			for _, cat := range categories {
				marker := " "
				if cat.IsSystem {
					marker = "*"
				}
				fmt.Printf("%4d %s %-5s %s\n", cat.ID, marker, cat.Type, cat.Name)
			}
			fmt.Println("\n* system category (immutable)")
			return nil
		},
	}

	cmd.Flags().Bool("totals", false, "include per-category totals")
	cmd.Flags().Int64("user", 0, "user id for totals (default: the admin user)")

	return cmd
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			catType, _ := cmd.Flags().GetString("type")

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records := ledger.NewService(store, cache.NewMemory())
			cat, err := records.CreateCategory(ctx, args[0], model.TransactionType(catType))
			if err != nil {
				return err
			}

			fmt.Printf("created category %d: %s (%s)\n", cat.ID, cat.Name, cat.Type)
			return nil
		},
	}

	cmd.Flags().String("type", string(model.TypeExit), "ENTRY or EXIT")

	return cmd
}

func categoriesRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [id] [name]",
		Short: "Rename a category (system categories are immutable)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category id %q: %w", args[0], err)
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records := ledger.NewService(store, cache.NewMemory())
			if err := records.RenameCategory(ctx, id, args[1]); err != nil {
				return err
			}

			fmt.Printf("renamed category %d to %s\n", id, args[1])
			return nil
		},
	}
}

func categoriesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a category (system categories are undeletable)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category id %q: %w", args[0], err)
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records := ledger.NewService(store, cache.NewMemory())
			if err := records.DeleteCategory(ctx, id); err != nil {
				return err
			}

			fmt.Printf("deleted category %d\n", id)
			return nil
		},
	}
}
