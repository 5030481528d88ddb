// Package pipeline wires the template parser, feedback matcher and draft
// validator into the single entry point the surrounding application calls
// once text has been extracted from a PDF or the OCR fallback.
package pipeline

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/nortenlab/invoicedraft/internal/domain/feedback"
	"github.com/nortenlab/invoicedraft/internal/domain/parse"
	"github.com/nortenlab/invoicedraft/internal/domain/validate"
	"github.com/nortenlab/invoicedraft/internal/observability"
)

// FeedbackSource loads the feedback snapshot for a supplier when the caller
// does not pass one explicitly.
type FeedbackSource interface {
	ListForSupplier(ctx context.Context, supplier string) ([]feedback.Entry, error)
}

// Service runs the parse pipeline.
type Service struct {
	logger   *slog.Logger
	feedback FeedbackSource
}

// NewService creates the pipeline service. feedbackSource may be nil when
// callers always pass snapshots themselves.
func NewService(logger *slog.Logger, feedbackSource FeedbackSource) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, feedback: feedbackSource}
}

// ParseInvoiceText converts raw extracted text into a validated draft.
// entries may be nil: with a configured feedback source the supplier's
// snapshot is loaded, otherwise matching is skipped. Document content never
// causes an error; malformed input degrades into warnings on the draft.
func (s *Service) ParseInvoiceText(ctx context.Context, text, supplierName string, entries []feedback.Entry, opts parse.Options) (parse.InvoiceDraft, error) {
	ctx, span := observability.Tracer().Start(ctx, "pipeline.ParseInvoiceText")
	defer span.End()

	if entries == nil && s.feedback != nil {
		loaded, err := s.feedback.ListForSupplier(ctx, supplierName)
		if err != nil {
			return parse.InvoiceDraft{}, err
		}
		entries = loaded
	}

	draft := parse.ParseText(text, supplierName, opts)
	draft = feedback.NewMatcher(entries).Apply(draft)
	draft = validate.Revalidate(draft)

	span.SetAttributes(
		attribute.String("invoice.template", draft.Parser.TemplateID),
		attribute.Int("invoice.items", len(draft.Items)),
		attribute.Int("invoice.warnings", len(draft.Warnings)),
	)
	observability.DocumentsParsed.WithLabelValues(draft.Parser.TemplateID).Inc()
	observability.LinesRecovered.Add(float64(len(draft.Items)))
	observability.DocumentWarnings.Add(float64(len(draft.Warnings)))
	observability.FeedbackMatches.Add(float64(countMatched(draft)))

	s.logger.Info("invoice parsed",
		slog.String("supplier", supplierName),
		slog.String("template", draft.Parser.TemplateID),
		slog.String("invoice_no", draft.InvoiceNo),
		slog.Int("items", len(draft.Items)),
		slog.Int("warnings", len(draft.Warnings)),
		slog.Bool("used_ocr", opts.UsedOCR),
	)
	return draft, nil
}

func countMatched(draft parse.InvoiceDraft) int {
	n := 0
	for _, line := range draft.Items {
		if line.HasIssue(feedback.IssueManuallyAssigned) {
			n++
		}
	}
	return n
}
