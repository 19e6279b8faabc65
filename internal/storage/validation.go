// Package storage provides the data persistence layer for the centavo application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/centavo-dev/centavo/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidUserID = errors.New("user id must be positive")
	ErrInvalidRule   = errors.New("invalid classification rule")
	ErrInvalidType   = errors.New("transaction type must be ENTRY or EXIT")
	ErrZeroDate      = errors.New("transaction date cannot be zero")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction validates a transaction before persistence.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := validateString(txn.Description, "description"); err != nil {
		return err
	}
	if txn.Type != model.TypeEntry && txn.Type != model.TypeExit {
		return ErrInvalidType
	}
	if txn.Date.IsZero() {
		return ErrZeroDate
	}
	if txn.UserID <= 0 {
		return ErrInvalidUserID
	}
	return nil
}

// validateRule validates a classification rule before persistence.
func validateRule(rule *model.CategoryRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := validateString(rule.Keyword, "keyword"); err != nil {
		return err
	}
	if !model.ValidMatchType(string(rule.MatchType)) {
		return fmt.Errorf("%w: unknown match type %q", ErrInvalidRule, rule.MatchType)
	}
	if rule.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidRule)
	}
	return nil
}
