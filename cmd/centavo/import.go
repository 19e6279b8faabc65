package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/centavo-dev/centavo/internal/cache"
	"github.com/centavo-dev/centavo/internal/common"
	"github.com/centavo-dev/centavo/internal/ingest"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX statement files",
		Long: `Import bank statement exports. Each transaction is deduplicated by its
statement id, classified through your keyword rules and persisted.
Re-importing a file is safe and reports the duplicates it skipped.

Examples:
  # Import a single statement
  centavo import ~/Downloads/extrato_jan.ofx

  # Import everything the bank exported this month
  centavo import ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Int64("user", 0, "owning user id (default: the admin user)")
	cmd.Flags().Bool("keep", false, "keep statement files after import")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ownerID, _ := cmd.Flags().GetInt64("user")
	keep, _ := cmd.Flags().GetBool("keep")
	ctx := cmd.Context()

	var files []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// Not a glob; require the file to exist
			if _, err := os.Stat(pattern); err != nil {
				return fmt.Errorf("no files found matching %s", pattern)
			}
			files = append(files, pattern)
			continue
		}
		files = append(files, matches...)
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	pipeline := ingest.NewPipeline(store, store, cache.NewMemory())

	bar := progressbar.Default(int64(len(files)), "importing")
	total := ingest.Summary{}

	for _, path := range files {
		var summary *ingest.Summary
		var err error

		if keep {
			f, openErr := os.Open(path)
			if openErr != nil {
				return fmt.Errorf("failed to open %s: %w", path, openErr)
			}
			summary, err = pipeline.Ingest(ctx, f, ownerID)
			_ = f.Close()
		} else {
			summary, err = pipeline.IngestFile(ctx, path, ownerID)
		}
		if err != nil {
			return common.NewUserError(fmt.Sprintf("import of %s failed", filepath.Base(path)), err)
		}

		total.Processed += summary.Processed
		total.Duplicates += summary.Duplicates
		total.Total += summary.Total
		total.RulesActive = summary.RulesActive
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Printf("\nImported %d file(s): %d processed, %d duplicates of %d entries (%d rules active)\n",
		len(files), total.Processed, total.Duplicates, total.Total, total.RulesActive)
	return nil
}
