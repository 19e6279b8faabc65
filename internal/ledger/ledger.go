// Package ledger provides record management over the store, keeping the
// dashboard result cache coherent: every mutation clears it.
package ledger

import (
	"context"
	"fmt"

	"github.com/centavo-dev/centavo/internal/common"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/service"
)

// Service wraps the store's mutating operations with cache invalidation.
// Reads go straight to the store.
type Service struct {
	store service.Storage
	cache service.ResultCache
}

// NewService creates a ledger service.
func NewService(store service.Storage, cache service.ResultCache) *Service {
	return &Service{store: store, cache: cache}
}

// CreateTransaction persists a manual transaction entry. Manual entries
// carry an explicit type; a negative value on an ENTRY is inconsistent
// and rejected.
func (s *Service) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if txn != nil && txn.Type == model.TypeEntry && txn.Value.IsNegative() {
		return fmt.Errorf("%w: ENTRY transactions cannot carry a negative value", common.ErrValidation)
	}

	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

// UpdateTransaction rewrites a transaction.
func (s *Service) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := s.store.UpdateTransaction(ctx, txn); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

// DeleteTransaction removes a transaction.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

// CreateCategory creates a user category.
func (s *Service) CreateCategory(ctx context.Context, name string, categoryType model.TransactionType) (*model.Category, error) {
	cat, err := s.store.CreateCategory(ctx, name, categoryType, false)
	if err != nil {
		return nil, err
	}
	s.cache.Clear()
	return cat, nil
}

// RenameCategory renames a non-system category.
func (s *Service) RenameCategory(ctx context.Context, id int64, name string) error {
	if err := s.store.UpdateCategory(ctx, id, name); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

// DeleteCategory removes a non-system category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

// CreateRule adds a classification rule. Existing transactions keep the
// category they were classified with at import time.
func (s *Service) CreateRule(ctx context.Context, rule *model.CategoryRule) error {
	if err := s.store.CreateRule(ctx, rule); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

// UpdateRule rewrites a rule.
func (s *Service) UpdateRule(ctx context.Context, rule *model.CategoryRule) error {
	if err := s.store.UpdateRule(ctx, rule); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

// DeleteRule removes a rule.
func (s *Service) DeleteRule(ctx context.Context, id int64) error {
	if err := s.store.DeleteRule(ctx, id); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}
