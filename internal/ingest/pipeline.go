// Package ingest orchestrates statement imports: parse, dedupe, classify,
// persist.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/centavo-dev/centavo/internal/common"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/ofx"
	"github.com/centavo-dev/centavo/internal/rules"
	"github.com/centavo-dev/centavo/internal/service"
)

// Summary reports the outcome of one statement import.
type Summary struct {
	Processed   int `json:"processed"`
	Duplicates  int `json:"duplicates"`
	Total       int `json:"total"`
	RulesActive int `json:"rulesActive"`
}

// Pipeline ingests bank statement files. Re-running the same file is
// safe: entries are deduplicated by their statement id.
type Pipeline struct {
	store      service.Storage
	identity   service.IdentityProvider
	cache      service.ResultCache
	parser     *ofx.Parser
	classifier *rules.Classifier
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(store service.Storage, identity service.IdentityProvider, cache service.ResultCache) *Pipeline {
	return &Pipeline{
		store:      store,
		identity:   identity,
		cache:      cache,
		parser:     ofx.NewParser(),
		classifier: rules.NewClassifier(),
	}
}

// IngestFile imports a statement file and removes it once consumed.
func (p *Pipeline) IngestFile(ctx context.Context, path string, ownerID int64) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement file: %w", err)
	}

	summary, err := p.Ingest(ctx, f, ownerID)
	_ = f.Close()
	if err != nil {
		return summary, err
	}

	if err := os.Remove(path); err != nil {
		slog.Warn("failed to remove consumed statement file", "path", path, "error", err)
	}
	return summary, nil
}

// Ingest parses a statement and persists its new transactions for the
// given owner (the default admin user when ownerID is zero).
//
// There is no batch rollback: a failure mid-batch leaves the already
// written prefix committed. Retrying the whole file is safe because the
// dedupe check skips it.
func (p *Pipeline) Ingest(ctx context.Context, r io.Reader, ownerID int64) (summary *Summary, err error) {
	owner, err := p.resolveOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	entries, err := p.parser.Parse(ctx, r)
	if err != nil {
		return nil, err
	}

	// Rules load once per batch so every entry classifies against the
	// same snapshot.
	ruleList, err := p.store.ListActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	summary = &Summary{Total: len(entries), RulesActive: len(ruleList)}

	// Cached aggregates go stale as soon as anything is written, even
	// when a later entry aborts the batch.
	defer func() {
		if summary != nil && summary.Processed > 0 {
			p.cache.Clear()
		}
	}()

	for _, entry := range entries {
		duplicate, err := p.isDuplicate(ctx, entry)
		if err != nil {
			return summary, err
		}
		if duplicate {
			summary.Duplicates++
			continue
		}

		description := entry.Description()
		categoryName := p.classifier.Classify(description, ruleList)

		category, err := p.resolveCategory(ctx, categoryName, entry)
		if err != nil {
			return summary, err
		}

		txn := model.Transaction{
			ExternalID:  entry.ExternalID,
			Description: description,
			Memo:        entry.Memo,
			RefNum:      entry.RefNum,
			Value:       entry.Amount,
			Type:        model.TypeForAmount(entry.Amount),
			Date:        entry.Posted,
			CategoryID:  category.ID,
			UserID:      owner.ID,
		}

		if err := p.store.CreateTransaction(ctx, &txn); err != nil {
			// A racing import can slip past the lookup; the unique
			// index on external_id turns that into a duplicate, not
			// a double insert.
			if errors.Is(err, common.ErrDuplicateEntry) {
				summary.Duplicates++
				continue
			}
			return summary, err
		}
		summary.Processed++
	}

	slog.Info("statement ingested",
		"processed", summary.Processed,
		"duplicates", summary.Duplicates,
		"total", summary.Total,
		"rules_active", summary.RulesActive,
		"user", owner.ID)

	return summary, nil
}

func (p *Pipeline) resolveOwner(ctx context.Context, ownerID int64) (*model.User, error) {
	if ownerID > 0 {
		return p.store.GetUserByID(ctx, ownerID)
	}
	return p.identity.DefaultUser(ctx)
}

func (p *Pipeline) isDuplicate(ctx context.Context, entry model.StatementEntry) (bool, error) {
	if entry.ExternalID == "" {
		return false, nil
	}
	existing, err := p.store.GetTransactionByExternalID(ctx, entry.ExternalID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// resolveCategory finds the category named by the classifier, creating
// it when absent. New categories take their type from the amount sign
// and are never system rows. Kept as an explicit two-step rather than a
// side effect of classification.
func (p *Pipeline) resolveCategory(ctx context.Context, name string, entry model.StatementEntry) (*model.Category, error) {
	category, err := p.store.GetCategoryByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if category != nil {
		return category, nil
	}

	category, err = p.store.CreateCategory(ctx, name, model.TypeForAmount(entry.Amount), false)
	if err != nil {
		// Lost a create race; the row exists now.
		if errors.Is(err, common.ErrDuplicateEntry) {
			existing, lookupErr := p.store.GetCategoryByName(ctx, name)
			if lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return category, nil
}
