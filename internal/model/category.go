package model

import "time"

// Category names with special meaning to the pipeline.
const (
	// FallbackCategory is assigned when no classification rule matches.
	FallbackCategory = "A Revisar"
	// InternalTransferCategory marks money moved between the user's own
	// accounts; excluded from every dashboard computation.
	InternalTransferCategory = "Transferências internas"
	// UncategorizedLabel is the breakdown label for transactions whose
	// category row is missing.
	UncategorizedLabel = "Sem Categoria"
)

// Category represents a spending or income category.
// Names are unique; system categories cannot be updated or deleted.
type Category struct {
	CreatedAt time.Time
	Name      string
	Type      TransactionType
	ID        int64
	IsSystem  bool
}
