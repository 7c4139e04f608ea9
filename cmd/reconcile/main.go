// Command reconcile runs the spreadsheet reconciliation pipeline against a
// local file, for backfills and operational reprocessing outside the console.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/opsconsole/ledgersync/internal/config"
	"github.com/opsconsole/ledgersync/internal/db"
	"github.com/opsconsole/ledgersync/internal/reconcile"
	"github.com/opsconsole/ledgersync/internal/repository"
	"github.com/opsconsole/ledgersync/internal/spreadsheet"

	"github.com/spf13/cobra"
)

var (
	filePath         string
	uploadType       string
	companyAccountID int64
	batchSize        int
	configPath       string
)

var rootCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a spreadsheet of financial line items against the ledger",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&filePath, "file", "", "spreadsheet to reconcile (.xlsx or .csv)")
	rootCmd.Flags().StringVar(&uploadType, "type", "invoice", "upload type: invoice or expense")
	rootCmd.Flags().Int64Var(&companyAccountID, "company-account", 0, "company account id scoping the invoice natural key")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 0, "records per batch (default from config)")
	rootCmd.Flags().StringVar(&configPath, "config", ".", "directory containing config.yaml")
	_ = rootCmd.MarkFlagRequired("file")
}

func run(cmd *cobra.Command, args []string) error {
	kind := reconcile.UploadKind(uploadType)
	if kind != reconcile.UploadInvoices && kind != reconcile.UploadExpenses {
		return fmt.Errorf("unknown upload type %q", uploadType)
	}
	if kind == reconcile.UploadInvoices && companyAccountID == 0 {
		return fmt.Errorf("--company-account is required for invoice uploads")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if batchSize <= 0 {
		batchSize = cfg.Upload.BatchSize
	}

	payload, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	parsed, err := spreadsheet.Read(filePath, payload)
	if err != nil {
		return err
	}
	if parsed.LargeDataset {
		log.Printf("Large dataset: %d rows, this may take a while", parsed.RowCount)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	conn, err := db.NewConnection(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer conn.Close()

	service := reconcile.NewService(
		repository.NewInvoiceRepository(conn.Pool),
		repository.NewExpenseRepository(conn.Pool),
		repository.NewUploadLogRepository(conn.Pool),
		spreadsheet.NewNormalizer(cfg.NormalizerOptions()),
	)

	req := reconcile.Request{
		Kind:             kind,
		FileName:         filePath,
		CompanyAccountID: companyAccountID,
		Options: reconcile.Options{
			BatchSize:  batchSize,
			BatchDelay: cfg.Upload.BatchDelay,
			OnProgress: func(processed, total int) {
				fmt.Printf("\rprocessed %d/%d", processed, total)
			},
			OnBatchComplete: func(batchIndex, size int) {
				log.Printf("Completed batch %d: %d rows", batchIndex, size)
			},
		},
	}

	start := time.Now()
	outcome, err := service.Run(ctx, parsed.Rows, req)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("aborted after %d rows: %w", outcome.Processed, err)
	}

	fmt.Printf("done in %s: %d processed (%d inserted, %d updated, %d skipped)\n",
		time.Since(start).Round(time.Millisecond),
		outcome.Processed, outcome.Inserted, outcome.Updated, outcome.Skipped)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
