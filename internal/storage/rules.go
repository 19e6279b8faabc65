package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/centavo-dev/centavo/internal/common"
	"github.com/centavo-dev/centavo/internal/model"
)

// ListActiveRules returns every classification rule joined with its
// category name, ordered by priority DESC then created_at DESC (newest
// rule wins ties). The classifier consumes this ordering as-is.
func (s *SQLiteStorage) ListActiveRules(ctx context.Context) ([]model.CategoryRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT r.id, r.keyword, r.match_type, r.priority, r.category_id, c.name, r.created_at
		FROM category_rules r
		JOIN categories c ON c.id = r.category_id
		ORDER BY r.priority DESC, r.created_at DESC, r.id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var ruleList []model.CategoryRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		ruleList = append(ruleList, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	slog.Debug("loaded classification rules", "count", len(ruleList))
	return ruleList, nil
}

// GetRuleByID returns a rule or common.ErrNotFound.
func (s *SQLiteStorage) GetRuleByID(ctx context.Context, id int64) (*model.CategoryRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT r.id, r.keyword, r.match_type, r.priority, r.category_id, c.name, r.created_at
		FROM category_rules r
		JOIN categories c ON c.id = r.category_id
		WHERE r.id = ?`

	rule, err := scanRule(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: rule %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rule: %w", err)
	}
	return rule, nil
}

// CreateRule persists a new classification rule. Updating or deleting
// rules never reclassifies existing transactions; classification is
// snapshot-at-import.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.CategoryRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	if _, err := s.GetCategoryByID(ctx, rule.CategoryID); err != nil {
		return err
	}

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO category_rules (keyword, match_type, priority, category_id, created_at)
		VALUES (?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		rule.Keyword, string(rule.MatchType), rule.Priority, rule.CategoryID, rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule id: %w", err)
	}
	rule.ID = id

	slog.Info("created classification rule",
		"keyword", rule.Keyword,
		"match_type", rule.MatchType,
		"priority", rule.Priority)
	return nil
}

// UpdateRule rewrites a rule's keyword, match type, priority and category.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.CategoryRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	query := `
		UPDATE category_rules
		SET keyword = ?, match_type = ?, priority = ?, category_id = ?
		WHERE id = ?`

	return s.execAffectingOne(ctx,
		fmt.Errorf("%w: rule %d", common.ErrNotFound, rule.ID),
		query,
		rule.Keyword, string(rule.MatchType), rule.Priority, rule.CategoryID, rule.ID)
}

// DeleteRule removes a rule by id.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.execAffectingOne(ctx,
		fmt.Errorf("%w: rule %d", common.ErrNotFound, id),
		`DELETE FROM category_rules WHERE id = ?`, id)
}

func scanRule(row rowScanner) (*model.CategoryRule, error) {
	var rule model.CategoryRule
	var matchType string
	err := row.Scan(
		&rule.ID,
		&rule.Keyword,
		&matchType,
		&rule.Priority,
		&rule.CategoryID,
		&rule.CategoryName,
		&rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.MatchType = model.MatchType(matchType)
	return &rule, nil
}
