package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/centavo-dev/centavo/internal/common"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/service"
)

const transactionColumns = `id, external_id, description, memo, ref_num, value, type, date, category_id, user_id, created_at`

// CreateTransaction persists a new transaction, assigning its id.
// A clash on external_id surfaces as common.ErrDuplicateEntry; the unique
// index makes the import dedupe check authoritative under concurrency.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		txn.ID,
		nullableString(txn.ExternalID),
		txn.Description,
		txn.Memo,
		txn.RefNum,
		txn.Value,
		string(txn.Type),
		txn.Date,
		nullableID(txn.CategoryID),
		txn.UserID,
		txn.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: external_id %s", common.ErrDuplicateEntry, txn.ExternalID)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	slog.Debug("created transaction", "id", txn.ID, "type", txn.Type, "value", txn.Value)
	return nil
}

// GetTransactionByID returns a transaction or common.ErrNotFound.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

	txn, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// GetTransactionByExternalID looks up a transaction by its statement id.
// Returns (nil, nil) when the id is unknown; this is the dedupe check.
func (s *SQLiteStorage) GetTransactionByExternalID(ctx context.Context, externalID string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE external_id = ?`

	txn, err := scanTransaction(s.db.QueryRowContext(ctx, query, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction by external id: %w", err)
	}
	return txn, nil
}

// ListTransactions returns transactions matching the filter, newest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.UserID <= 0 {
		return nil, ErrInvalidUserID
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []any{filter.UserID}

	if filter.CategoryID > 0 {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.Search != "" {
		query += ` AND (description LIKE ? OR memo LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	switch {
	case filter.Month > 0 && filter.Year > 0:
		query += ` AND strftime('%Y-%m', date) = ?`
		args = append(args, fmt.Sprintf("%04d-%02d", filter.Year, filter.Month))
	case filter.Month > 0:
		query += ` AND strftime('%m', date) = ?`
		args = append(args, fmt.Sprintf("%02d", filter.Month))
	case filter.Year > 0:
		query += ` AND strftime('%Y', date) = ?`
		args = append(args, fmt.Sprintf("%04d", filter.Year))
	}

	query += ` ORDER BY date DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// UpdateTransaction rewrites a transaction's mutable fields.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := validateString(txn.ID, "id"); err != nil {
		return err
	}

	query := `
		UPDATE transactions
		SET description = ?, memo = ?, value = ?, type = ?, date = ?, category_id = ?
		WHERE id = ?`

	return s.execAffectingOne(ctx,
		fmt.Errorf("%w: transaction %s", common.ErrNotFound, txn.ID),
		query,
		txn.Description, txn.Memo, txn.Value, string(txn.Type), txn.Date,
		nullableID(txn.CategoryID), txn.ID)
}

// DeleteTransaction removes a transaction by id.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	return s.execAffectingOne(ctx,
		fmt.Errorf("%w: transaction %s", common.ErrNotFound, id),
		`DELETE FROM transactions WHERE id = ?`, id)
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var externalID, memo, refNum sql.NullString
	var categoryID sql.NullInt64
	var txnType string

	err := row.Scan(
		&txn.ID,
		&externalID,
		&txn.Description,
		&memo,
		&refNum,
		&txn.Value,
		&txnType,
		&txn.Date,
		&categoryID,
		&txn.UserID,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.ExternalID = externalID.String
	txn.Memo = memo.String
	txn.RefNum = refNum.String
	txn.Type = model.TransactionType(txnType)
	txn.CategoryID = categoryID.Int64
	return &txn, nil
}

// nullableString maps "" to NULL so the partial unique index on
// external_id only covers real statement ids.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}
