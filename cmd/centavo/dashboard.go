package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/centavo-dev/centavo/internal/cache"
	"github.com/centavo-dev/centavo/internal/dashboard"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show financial summary, trends and projections",
		RunE:  runDashboard,
	}

	cmd.Flags().Int64("user", 0, "user id (default: the admin user)")
	cmd.Flags().Int("month", 0, "calendar month filter (1-12)")
	cmd.Flags().Int("year", 0, "calendar year filter")
	cmd.Flags().Int64("category", 0, "category id filter")
	cmd.Flags().String("search", "", "substring filter over description/memo")
	cmd.Flags().Bool("json", false, "emit the raw payload as JSON")

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, _ := cmd.Flags().GetInt64("user")
	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	categoryID, _ := cmd.Flags().GetInt64("category")
	search, _ := cmd.Flags().GetString("search")
	asJSON, _ := cmd.Flags().GetBool("json")

	if month < 0 || month > 12 {
		return fmt.Errorf("month must be between 1 and 12")
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

	engine := dashboard.NewEngine(store, cache.NewMemory())
	payload, err := engine.Dashboard(ctx, userID, dashboard.Filters{
		Month:      month,
		Year:       year,
		CategoryID: categoryID,
		Search:     search,
	})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	renderDashboard(payload)
	return nil
}

func renderDashboard(p *dashboard.Payload) {
	fmt.Println("Summary")
	fmt.Printf("  income        %12s\n", p.Summary.TotalIncome.StringFixed(2))
	fmt.Printf("  expense       %12s\n", p.Summary.TotalExpense.StringFixed(2))
	fmt.Printf("  balance       %12s\n", p.Summary.Balance.StringFixed(2))
	fmt.Printf("  daily average %12s\n", p.Summary.DailyAverage.StringFixed(2))
	fmt.Printf("  transactions  %12d\n", p.Summary.TransactionCount)
	if p.Summary.BiggestExpense != nil {
		fmt.Printf("  biggest expense: %s (%s on %s)\n",
			p.Summary.BiggestExpense.Description,
			p.Summary.BiggestExpense.Value.StringFixed(2),
			p.Summary.BiggestExpense.Date.Format("2006-01-02"))
	}

	fmt.Println("\nLast 6 months")
	for _, point := range p.History {
		fmt.Printf("  %s  income %12s  expense %12s\n",
			point.Date, point.Income.StringFixed(2), point.Expense.StringFixed(2))
	}

	if len(p.Categories) > 0 {
		fmt.Println("\nSpending by category")
		for _, item := range p.Categories {
			fmt.Printf("  %-30s %12s\n", item.Name, item.Value.StringFixed(2))
		}
	}

	if len(p.TopMerchants) > 0 {
		fmt.Println("\nTop merchants")
		for i, item := range p.TopMerchants {
			fmt.Printf("  %2d. %-30s %12s\n", i+1, item.Name, item.Value.StringFixed(2))
		}
	}

	if len(p.Projection) > 0 {
		fmt.Println("\nProjection (vs 3-month average)")
		for _, item := range p.Projection {
			fmt.Printf("  %-30s current %12s  average %12s  [%s]\n",
				item.Name, item.Current.StringFixed(2), item.Average.StringFixed(2), item.Status)
		}
	}
}
