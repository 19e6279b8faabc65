package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavo-dev/centavo/internal/cache"
	"github.com/centavo-dev/centavo/internal/common"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/storage"
)

func setupService(t *testing.T) (*Service, *storage.SQLiteStorage, *cache.Memory) {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	user := model.User{Name: "Test", Email: "test@centavo.local", IsAdmin: true}
	require.NoError(t, store.CreateUser(ctx, &user))

	resultCache := cache.NewMemory()
	return NewService(store, resultCache), store, resultCache
}

func warmCache(c *cache.Memory) {
	c.Set("dashboard_1_all_all_all_all", "payload")
}

func TestService_TransactionWritesClearCache(t *testing.T) {
	svc, store, resultCache := setupService(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Alimentação", model.TypeExit, false)
	require.NoError(t, err)

	warmCache(resultCache)
	txn := model.Transaction{
		Description: "SUPERMERCADO",
		Value:       decimal.RequireFromString("-42.00"),
		Type:        model.TypeExit,
		Date:        time.Now(),
		CategoryID:  cat.ID,
		UserID:      1,
	}
	require.NoError(t, svc.CreateTransaction(ctx, &txn))
	assert.Equal(t, 0, resultCache.Len())

	warmCache(resultCache)
	txn.Description = "MERCADO NOVO"
	require.NoError(t, svc.UpdateTransaction(ctx, &txn))
	assert.Equal(t, 0, resultCache.Len())

	warmCache(resultCache)
	require.NoError(t, svc.DeleteTransaction(ctx, txn.ID))
	assert.Equal(t, 0, resultCache.Len())
}

func TestService_FailedWritesKeepCache(t *testing.T) {
	svc, _, resultCache := setupService(t)
	ctx := context.Background()

	warmCache(resultCache)
	err := svc.DeleteTransaction(ctx, "nonexistent")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, 1, resultCache.Len(), "a failed write must not invalidate")
}

func TestService_CreateTransactionRejectsNegativeIncome(t *testing.T) {
	svc, store, resultCache := setupService(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Salário", model.TypeEntry, false)
	require.NoError(t, err)

	warmCache(resultCache)
	txn := model.Transaction{
		Description: "SALARIO INVERTIDO",
		Value:       decimal.RequireFromString("-5000.00"),
		Type:        model.TypeEntry,
		Date:        time.Now(),
		CategoryID:  cat.ID,
		UserID:      1,
	}
	err = svc.CreateTransaction(ctx, &txn)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, 1, resultCache.Len())
}

func TestService_CategoryWritesClearCache(t *testing.T) {
	svc, _, resultCache := setupService(t)
	ctx := context.Background()

	warmCache(resultCache)
	cat, err := svc.CreateCategory(ctx, "Lazer", model.TypeExit)
	require.NoError(t, err)
	assert.False(t, cat.IsSystem, "user categories are never system rows")
	assert.Equal(t, 0, resultCache.Len())

	warmCache(resultCache)
	require.NoError(t, svc.RenameCategory(ctx, cat.ID, "Diversão"))
	assert.Equal(t, 0, resultCache.Len())

	warmCache(resultCache)
	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	assert.Equal(t, 0, resultCache.Len())
}

func TestService_SystemCategoryProtection(t *testing.T) {
	svc, store, resultCache := setupService(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, model.FallbackCategory, model.TypeExit, true)
	require.NoError(t, err)

	warmCache(resultCache)
	assert.ErrorIs(t, svc.RenameCategory(ctx, cat.ID, "Outra"), common.ErrValidation)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, cat.ID), common.ErrValidation)
	assert.Equal(t, 1, resultCache.Len())
}

func TestService_RuleWritesClearCache(t *testing.T) {
	svc, store, resultCache := setupService(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Transporte", model.TypeExit, false)
	require.NoError(t, err)

	warmCache(resultCache)
	rule := model.CategoryRule{Keyword: "UBER", MatchType: model.MatchContains, Priority: 10, CategoryID: cat.ID}
	require.NoError(t, svc.CreateRule(ctx, &rule))
	assert.Equal(t, 0, resultCache.Len())

	warmCache(resultCache)
	rule.Priority = 20
	require.NoError(t, svc.UpdateRule(ctx, &rule))
	assert.Equal(t, 0, resultCache.Len())

	warmCache(resultCache)
	require.NoError(t, svc.DeleteRule(ctx, rule.ID))
	assert.Equal(t, 0, resultCache.Len())
}
