package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/centavo-dev/centavo/internal/cache"
	"github.com/centavo-dev/centavo/internal/ledger"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/service"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Short:   "Manage transactions",
		Aliases: []string{"transactions"},
	}

	cmd.AddCommand(txListCmd())
	cmd.AddCommand(txAddCmd())
	cmd.AddCommand(txRemoveCmd())

	return cmd
}

func txListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			userID, _ := cmd.Flags().GetInt64("user")
			month, _ := cmd.Flags().GetInt("month")
			year, _ := cmd.Flags().GetInt("year")
			categoryID, _ := cmd.Flags().GetInt64("category")
			search, _ := cmd.Flags().GetString("search")
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if userID == 0 {
				user, err := store.DefaultUser(ctx)
				if err != nil {
					return err
				}
				userID = user.ID
			}

			transactions, err := store.ListTransactions(ctx, service.TransactionFilter{
				UserID:     userID,
				Month:      month,
				Year:       year,
				CategoryID: categoryID,
				Search:     search,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			for _, txn := range transactions {
				fmt.Printf("%s  %s  %-5s %12s  %s\n",
					txn.ID,
					txn.Date.Format("2006-01-02"),
					txn.Type,
					txn.Value.StringFixed(2),
					txn.Description)
			}
			fmt.Printf("%d transaction(s)\n", len(transactions))
			return nil
		},
	}

	cmd.Flags().Int64("user", 0, "user id (default: the admin user)")
	cmd.Flags().Int("month", 0, "calendar month filter (1-12)")
	cmd.Flags().Int("year", 0, "calendar year filter")
	cmd.Flags().Int64("category", 0, "category id filter")
	cmd.Flags().String("search", "", "substring filter over description/memo")
	cmd.Flags().Int("limit", 50, "maximum rows to print (0 for all)")

	return cmd
}

func txAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a manual transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			userID, _ := cmd.Flags().GetInt64("user")
			description, _ := cmd.Flags().GetString("description")
			rawValue, _ := cmd.Flags().GetString("value")
			txnType, _ := cmd.Flags().GetString("type")
			categoryID, _ := cmd.Flags().GetInt64("category")
			rawDate, _ := cmd.Flags().GetString("date")

			value, err := decimal.NewFromString(rawValue)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", rawValue, err)
			}

			date := time.Now()
			if rawDate != "" {
				date, err = time.ParseInLocation("2006-01-02", rawDate, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", rawDate, err)
				}
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if userID == 0 {
				user, err := store.DefaultUser(ctx)
				if err != nil {
					return err
				}
				userID = user.ID
			}

			txn := model.Transaction{
				Description: description,
				Value:       value,
				Type:        model.TransactionType(txnType),
				Date:        date,
				CategoryID:  categoryID,
				UserID:      userID,
			}
			if txnType == "" {
				txn.Type = model.TypeForAmount(value)
			}

			records := ledger.NewService(store, cache.NewMemory())
			if err := records.CreateTransaction(ctx, &txn); err != nil {
				return err
			}

			fmt.Printf("created transaction %s\n", txn.ID)
			return nil
		},
	}

	cmd.Flags().Int64("user", 0, "owning user id (default: the admin user)")
	cmd.Flags().String("description", "", "transaction description")
	cmd.Flags().String("value", "", "amount (negative for expenses)")
	cmd.Flags().String("type", "", "ENTRY or EXIT (default: derived from the value sign)")
	cmd.Flags().Int64("category", 0, "category id")
	cmd.Flags().String("date", "", "date as YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func txRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records := ledger.NewService(store, cache.NewMemory())
			if err := records.DeleteTransaction(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("deleted transaction %s\n", args[0])
			return nil
		},
	}
}
