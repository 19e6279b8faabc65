// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// Zero values mean "no constraint".
type TransactionFilter struct {
	Search     string // case-insensitive substring over description and memo
	UserID     int64
	CategoryID int64
	Month      int // 1-12; with Year an exact calendar month, alone any year
	Year       int
	Limit      int
	Offset     int
}

// CategoryTotal is a per-category sum of transaction values of the
// category's own type.
type CategoryTotal struct {
	Name  string
	Type  model.TransactionType
	Total decimal.Decimal
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	// GetTransactionByExternalID returns (nil, nil) when no transaction
	// carries the given statement id; this is the dedupe lookup.
	GetTransactionByExternalID(ctx context.Context, externalID string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	// Category operations
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	// GetCategoryByName returns (nil, nil) when the name has no row.
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, categoryType model.TransactionType, isSystem bool) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) error
	DeleteCategory(ctx context.Context, id int64) error
	ListCategoryTotals(ctx context.Context, userID int64) ([]CategoryTotal, error)

	// Classification rule operations
	// ListActiveRules returns rules ordered by priority DESC then
	// created_at DESC; the classifier relies on this ordering.
	ListActiveRules(ctx context.Context) ([]model.CategoryRule, error)
	GetRuleByID(ctx context.Context, id int64) (*model.CategoryRule, error)
	CreateRule(ctx context.Context, rule *model.CategoryRule) error
	UpdateRule(ctx context.Context, rule *model.CategoryRule) error
	DeleteRule(ctx context.Context, id int64) error

	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)

	// Database management
	Migrate(ctx context.Context) error
	Seed(ctx context.Context) error
	Close() error
}

// IdentityProvider resolves the owning user for statement imports when
// no explicit uploader is supplied.
type IdentityProvider interface {
	DefaultUser(ctx context.Context) (*model.User, error)
}

// ResultCache memoizes computed dashboard payloads. Implementations are
// process-wide shared state; any write to transactions, categories or
// rules must Clear the whole namespace.
type ResultCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Clear()
}
