// Package model defines the core data structures for the centavo application.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a transaction is income or expense.
type TransactionType string

const (
	// TypeEntry represents income (money in).
	TypeEntry TransactionType = "ENTRY"
	// TypeExit represents expense (money out).
	TypeExit TransactionType = "EXIT"
)

// TypeForAmount derives the transaction type from a signed amount.
// Statement exports encode expenses as negative values.
func TypeForAmount(amount decimal.Decimal) TransactionType {
	if amount.IsNegative() {
		return TypeExit
	}
	return TypeEntry
}

// Transaction represents a single financial transaction.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	ID          string // Store-assigned opaque identifier.
	ExternalID  string // Statement FITID; unique when present, empty for manual entries.
	Description string
	Memo        string
	RefNum      string
	Type        TransactionType
	Value       decimal.Decimal // Signed; negative iff Type is EXIT for imported rows.
	CategoryID  int64
	UserID      int64
}

// StatementEntry is a raw transaction as decoded from a bank statement,
// before classification and persistence.
type StatementEntry struct {
	Posted     time.Time
	ExternalID string
	Name       string
	Memo       string
	RefNum     string
	Amount     decimal.Decimal
}

// NoDescription is the fallback description for statement entries that
// carry neither a memo nor a name.
const NoDescription = "Sem descrição"

// Description resolves the entry description: memo first, then name,
// then the fallback label.
func (e StatementEntry) Description() string {
	if memo := strings.TrimSpace(e.Memo); memo != "" {
		return memo
	}
	if name := strings.TrimSpace(e.Name); name != "" {
		return name
	}
	return NoDescription
}
