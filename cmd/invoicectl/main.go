// Command invoicectl runs the supplier invoice pipeline from the command
// line: parse extracted text into a reviewed draft, export it for review,
// correct price-history records and run the nightly outlier scan.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/nortenlab/invoicedraft/internal/domain/allocation"
	"github.com/nortenlab/invoicedraft/internal/domain/feedback"
	"github.com/nortenlab/invoicedraft/internal/domain/parse"
	"github.com/nortenlab/invoicedraft/internal/export"
	"github.com/nortenlab/invoicedraft/internal/ingest"
	"github.com/nortenlab/invoicedraft/pkg/config"
)

func main() {
	var (
		inputPath    = flag.String("input", "", "path to extracted invoice text")
		supplier     = flag.String("supplier", "", "supplier name as printed on the document")
		usedOCR      = flag.Bool("ocr", false, "text came from the OCR fallback")
		feedbackCSV  = flag.String("feedback", "", "feedback snapshot CSV (overrides the database snapshot)")
		outPath      = flag.String("out", "", "write the draft as a review workbook (xlsx)")
		allocate     = flag.Bool("allocate", false, "allocate surcharges per policy and record prices")
		allocMode    = flag.String("mode", "", "override the allocation policy (per_kg, per_piece, none)")
		scanOutliers = flag.Bool("scan-outliers", false, "scan all price series for outliers and exit")
		daemon       = flag.Bool("daemon", false, "run the cron scheduler and metrics endpoint until interrupted")
		correctID    = flag.Int64("correct-record", 0, "price-history record id to correct")
		correctPrice = flag.String("correct-price", "", "confirmed price for -correct-record")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	deps, err := InitDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to init dependencies", slog.Any("error", err))
		os.Exit(1)
	}
	defer deps.Close()

	ctx := context.Background()

	switch {
	case *correctID != 0 || *correctPrice != "":
		err = runCorrect(ctx, deps, *correctID, *correctPrice)
	case *scanOutliers:
		deps.Scheduler.ScanOnce()
	case *daemon:
		err = runDaemon(deps)
	case *inputPath != "":
		err = runParse(ctx, deps, *inputPath, *supplier, *usedOCR, *feedbackCSV, *outPath, *allocate, *allocMode)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// runParse parses one document and prints the draft as JSON. With -out the
// draft is additionally written as a review workbook, with -allocate the
// allocated prices are recorded into price history.
func runParse(ctx context.Context, deps *Dependencies, inputPath, supplier string, usedOCR bool, feedbackCSV, outPath string, allocate bool, allocMode string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var entries []feedback.Entry
	csvPath := feedbackCSV
	if csvPath == "" {
		csvPath = deps.Config.Parser.FeedbackCSV
	}
	if csvPath != "" {
		entries, err = ingest.LoadFeedbackFile(csvPath)
		if err != nil {
			return err
		}
	} else if deps.FeedbackRepo != nil {
		entries, err = deps.FeedbackRepo.ListForSupplier(ctx, supplier)
		if err != nil {
			return err
		}
	}

	draft, err := deps.Pipeline.ParseInvoiceText(ctx, string(raw), supplier, entries, parse.Options{UsedOCR: usedOCR})
	if err != nil {
		return err
	}

	if outPath != "" {
		suggestions, err := collectSuggestions(draft, entries)
		if err != nil {
			return err
		}
		if err := export.WriteReviewWorkbook(draft, suggestions, outPath); err != nil {
			return err
		}
		deps.Logger.Info("review workbook written", slog.String("path", outPath))
	}

	if allocate {
		if err := runAllocation(ctx, deps, draft, allocMode); err != nil {
			return err
		}
	}

	if deps.Archive != nil {
		info, err := deps.Archive.Store(ctx, draft.Supplier,
			filepath.Base(inputPath), "text/plain", bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("archiving source document: %w", err)
		}
		deps.Logger.Info("source document archived",
			slog.String("document_id", info.ID.String()),
			slog.String("supplier", draft.Supplier))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(draft)
}

// collectSuggestions runs the feedback suggester for product lines nothing
// matched, so the review workbook can offer prior corrections to pick from.
func collectSuggestions(draft parse.InvoiceDraft, entries []feedback.Entry) ([]export.LineSuggestion, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	suggester, err := feedback.NewSuggester(entries)
	if err != nil {
		return nil, err
	}
	defer suggester.Close()

	var out []export.LineSuggestion
	for _, line := range draft.Items {
		if line.LineType != parse.LineTypeProduct || line.HasIssue(feedback.IssueManuallyAssigned) {
			continue
		}
		description := line.ProductName
		if description == "" {
			description = line.Source.Raw
		}
		candidates, err := suggester.Suggest(description, 3)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			continue
		}
		out = append(out, export.LineSuggestion{
			LineNo:      line.LineNo,
			Description: description,
			Candidates:  candidates,
		})
	}
	return out, nil
}

// runAllocation resolves the supplier's allocation policy, distributes the
// document's surcharge pool and records the allocated prices.
func runAllocation(ctx context.Context, deps *Dependencies, draft parse.InvoiceDraft, modeFlag string) error {
	invoiceDate, err := time.Parse("2006-01-02", draft.InvoiceDate)
	if err != nil {
		return fmt.Errorf("allocation needs a parsed invoice date, got %q", draft.InvoiceDate)
	}

	var explicit *allocation.Mode
	if modeFlag != "" {
		m := allocation.Mode(modeFlag)
		switch m {
		case allocation.ModePerKg, allocation.ModePerPiece, allocation.ModeNone:
			explicit = &m
		default:
			return fmt.Errorf("unknown allocation mode %q", modeFlag)
		}
	}

	mode, err := deps.PolicyStore.ResolveMode(ctx, explicit, draft.Supplier, invoiceDate)
	if err != nil {
		return fmt.Errorf("resolving allocation policy: %w", err)
	}

	prepared := allocation.PrepareDraft(draft)
	for _, w := range prepared.Warnings {
		deps.Logger.Warn("line skipped for allocation", slog.String("reason", w))
	}

	shares := allocation.AllocateSurcharges(prepared.Items, prepared.TotalSurchargeNet, mode)
	recorded, err := deps.History.RecordAllocatedPrices(ctx, draft.Supplier, draft.InvoiceNo, invoiceDate, prepared.Items, shares)
	if err != nil {
		return fmt.Errorf("recording allocated prices: %w", err)
	}

	deps.Logger.Info("allocated prices recorded",
		slog.String("supplier", draft.Supplier),
		slog.String("invoice_no", draft.InvoiceNo),
		slog.String("mode", string(mode)),
		slog.Int("records", recorded),
	)
	return nil
}

func runCorrect(ctx context.Context, deps *Dependencies, recordID int64, priceStr string) error {
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", priceStr, err)
	}
	return deps.History.CorrectPrice(ctx, recordID, price)
}

// runDaemon starts the scheduler and the metrics endpoint and blocks until
// SIGINT or SIGTERM.
func runDaemon(deps *Dependencies) error {
	if err := deps.Scheduler.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer deps.Scheduler.Stop()

	if deps.Config.Observability.MetricsEnabled {
		addr := fmt.Sprintf(":%d", deps.Config.Observability.MetricsPort)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				deps.Logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		defer srv.Close()
		deps.Logger.Info("metrics endpoint listening", slog.String("addr", addr))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	deps.Logger.Info("shutting down")
	return nil
}
