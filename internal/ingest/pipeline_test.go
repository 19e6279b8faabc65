package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavo-dev/centavo/internal/cache"
	"github.com/centavo-dev/centavo/internal/common"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/service"
	"github.com/centavo-dev/centavo/internal/storage"
)

const sampleStatement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260315120000[-3:BRT]
<LANGUAGE>POR
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>BRL
<BANKACCTFROM>
<BANKID>0260
<ACCTID>1234567-8
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260301120000[-3:BRT]
<DTEND>20260331120000[-3:BRT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260305120000[-3:BRT]
<TRNAMT>-25.50
<FITID>FIT-001
<NAME>UBER TRIP SAO PAULO
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260310120000[-3:BRT]
<TRNAMT>-125.00
<FITID>FIT-002
<NAME>LOJA MISTERIOSA 77
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260315120000[-3:BRT]
<TRNAMT>5000.00
<FITID>FIT-003
<NAME>REMUNERACAO MENSAL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>4849.50
<DTASOF>20260331120000[-3:BRT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func setupPipeline(t *testing.T) (*Pipeline, *storage.SQLiteStorage, *cache.Memory) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	admin := model.User{Name: "Admin", Email: "admin@centavo.local", IsAdmin: true}
	require.NoError(t, store.CreateUser(ctx, &admin))

	resultCache := cache.NewMemory()
	return NewPipeline(store, store, resultCache), store, resultCache
}

func seedRule(t *testing.T, store *storage.SQLiteStorage, keyword, category string) {
	t.Helper()
	ctx := context.Background()

	cat, err := store.GetCategoryByName(ctx, category)
	require.NoError(t, err)
	if cat == nil {
		cat, err = store.CreateCategory(ctx, category, model.TypeExit, false)
		require.NoError(t, err)
	}

	rule := model.CategoryRule{Keyword: keyword, MatchType: model.MatchContains, Priority: 10, CategoryID: cat.ID}
	require.NoError(t, store.CreateRule(ctx, &rule))
}

func TestPipeline_IngestClassifiesAndPersists(t *testing.T) {
	pipeline, store, _ := setupPipeline(t)
	ctx := context.Background()
	seedRule(t, store, "UBER", "Transporte")
	seedRule(t, store, "REMUNERACAO", "Salário")

	summary, err := pipeline.Ingest(ctx, strings.NewReader(sampleStatement), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 0, summary.Duplicates)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.RulesActive)

	admin, err := store.DefaultUser(ctx)
	require.NoError(t, err)
	transactions, err := store.ListTransactions(ctx, service.TransactionFilter{UserID: admin.ID})
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	byExternal := make(map[string]model.Transaction, len(transactions))
	for _, txn := range transactions {
		byExternal[txn.ExternalID] = txn
	}

	// Matched rules classify; the sign decides the type
	uber := byExternal["FIT-001"]
	assert.Equal(t, model.TypeExit, uber.Type)
	assert.True(t, uber.Value.Equal(decimal.RequireFromString("-25.50")))
	transporte, err := store.GetCategoryByName(ctx, "Transporte")
	require.NoError(t, err)
	assert.Equal(t, transporte.ID, uber.CategoryID)

	salary := byExternal["FIT-003"]
	assert.Equal(t, model.TypeEntry, salary.Type)

	// No rule matched: the review category gets created on demand
	review, err := store.GetCategoryByName(ctx, model.FallbackCategory)
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, review.ID, byExternal["FIT-002"].CategoryID)
}

func TestPipeline_ReingestIsIdempotent(t *testing.T) {
	pipeline, store, _ := setupPipeline(t)
	ctx := context.Background()

	first, err := pipeline.Ingest(ctx, strings.NewReader(sampleStatement), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Processed)

	second, err := pipeline.Ingest(ctx, strings.NewReader(sampleStatement), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 3, second.Duplicates)
	assert.Equal(t, 3, second.Total)

	admin, err := store.DefaultUser(ctx)
	require.NoError(t, err)
	transactions, err := store.ListTransactions(ctx, service.TransactionFilter{UserID: admin.ID})
	require.NoError(t, err)
	assert.Len(t, transactions, 3, "re-ingesting must not duplicate rows")
}

func TestPipeline_CacheInvalidation(t *testing.T) {
	pipeline, _, resultCache := setupPipeline(t)
	ctx := context.Background()

	resultCache.Set("dashboard_1_all_all_all_all", "stale")
	_, err := pipeline.Ingest(ctx, strings.NewReader(sampleStatement), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, resultCache.Len(), "writes must clear cached payloads")

	// A run that writes nothing keeps the cache warm
	resultCache.Set("dashboard_1_all_all_all_all", "fresh")
	summary, err := pipeline.Ingest(ctx, strings.NewReader(sampleStatement), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, resultCache.Len())
}

func TestPipeline_OwnerResolution(t *testing.T) {
	pipeline, store, _ := setupPipeline(t)
	ctx := context.Background()

	other := model.User{Name: "Outro", Email: "outro@centavo.local"}
	require.NoError(t, store.CreateUser(ctx, &other))

	summary, err := pipeline.Ingest(ctx, strings.NewReader(sampleStatement), other.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)

	transactions, err := store.ListTransactions(ctx, service.TransactionFilter{UserID: other.ID})
	require.NoError(t, err)
	assert.Len(t, transactions, 3)

	_, err = pipeline.Ingest(ctx, strings.NewReader(sampleStatement), 9999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPipeline_NoDefaultUser(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	pipeline := NewPipeline(store, store, cache.NewMemory())
	_, err = pipeline.Ingest(ctx, strings.NewReader(sampleStatement), 0)
	assert.ErrorIs(t, err, common.ErrNoDefaultUser)
}

func TestPipeline_MalformedStatement(t *testing.T) {
	pipeline, _, resultCache := setupPipeline(t)
	ctx := context.Background()

	resultCache.Set("key", "warm")
	_, err := pipeline.Ingest(ctx, strings.NewReader("garbage"), 0)
	assert.ErrorIs(t, err, common.ErrMalformedStatement)
	assert.Equal(t, 1, resultCache.Len(), "a failed parse writes nothing and keeps the cache")
}

func TestPipeline_IngestFileRemovesConsumedStatement(t *testing.T) {
	pipeline, _, _ := setupPipeline(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "extrato.ofx")
	require.NoError(t, os.WriteFile(path, []byte(sampleStatement), 0o600))

	summary, err := pipeline.IngestFile(ctx, path, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "consumed statement file should be removed")
}
