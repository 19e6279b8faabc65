package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/centavo-dev/centavo/internal/cache"
	"github.com/centavo-dev/centavo/internal/ledger"
	"github.com/centavo-dev/centavo/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
		Long: `Classification rules map keywords in transaction descriptions to
categories. Rules run in priority order (higher first, newest wins ties)
and the first match decides; unmatched descriptions land in "` + model.FallbackCategory + `".
Changing rules never reclassifies existing transactions.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesEditCmd())
	cmd.AddCommand(rulesRemoveCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ruleList, err := store.ListActiveRules(ctx)
			if err != nil {
				return err
			}

			for _, rule := range ruleList {
				fmt.Printf("%4d  p%-3d %-11s %-30q -> %s\n",
					rule.ID, rule.Priority, rule.MatchType, rule.Keyword, rule.CategoryName)
			}
			fmt.Printf("%d rule(s)\n", len(ruleList))
			return nil
		},
	}
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [keyword]",
		Short: "Create a classification rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			categoryID, _ := cmd.Flags().GetInt64("category")
			match, _ := cmd.Flags().GetString("match")
			priority, _ := cmd.Flags().GetInt("priority")

			match = strings.ToUpper(match)
			if !model.ValidMatchType(match) {
				return fmt.Errorf("invalid match type %q (CONTAINS, EXACT or STARTS_WITH)", match)
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule := model.CategoryRule{
				Keyword:    args[0],
				MatchType:  model.MatchType(match),
				Priority:   priority,
				CategoryID: categoryID,
			}

			records := ledger.NewService(store, cache.NewMemory())
			if err := records.CreateRule(ctx, &rule); err != nil {
				return err
			}

			fmt.Printf("created rule %d: %q -> category %d\n", rule.ID, rule.Keyword, rule.CategoryID)
			return nil
		},
	}

	cmd.Flags().Int64("category", 0, "target category id")
	cmd.Flags().String("match", string(model.MatchContains), "match type: CONTAINS, EXACT or STARTS_WITH")
	cmd.Flags().Int("priority", 10, "priority (higher runs first)")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func rulesEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Update a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule id %q: %w", args[0], err)
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule, err := store.GetRuleByID(ctx, id)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("keyword") {
				rule.Keyword, _ = cmd.Flags().GetString("keyword")
			}
			if cmd.Flags().Changed("match") {
				match, _ := cmd.Flags().GetString("match")
				match = strings.ToUpper(match)
				if !model.ValidMatchType(match) {
					return fmt.Errorf("invalid match type %q (CONTAINS, EXACT or STARTS_WITH)", match)
				}
				rule.MatchType = model.MatchType(match)
			}
			if cmd.Flags().Changed("priority") {
				rule.Priority, _ = cmd.Flags().GetInt("priority")
			}
			if cmd.Flags().Changed("category") {
				rule.CategoryID, _ = cmd.Flags().GetInt64("category")
			}

			records := ledger.NewService(store, cache.NewMemory())
			if err := records.UpdateRule(ctx, rule); err != nil {
				return err
			}

			fmt.Printf("updated rule %d\n", id)
			return nil
		},
	}

	cmd.Flags().String("keyword", "", "new keyword")
	cmd.Flags().String("match", "", "new match type")
	cmd.Flags().Int("priority", 0, "new priority")
	cmd.Flags().Int64("category", 0, "new target category id")

	return cmd
}

func rulesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a rule (already-classified transactions keep their category)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule id %q: %w", args[0], err)
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records := ledger.NewService(store, cache.NewMemory())
			if err := records.DeleteRule(ctx, id); err != nil {
				return err
			}

			fmt.Printf("deleted rule %d\n", id)
			return nil
		},
	}
}
