// Package observability holds the process-wide metrics and tracer used by
// the extraction pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the shared tracer for the core entry points.
func Tracer() trace.Tracer {
	return otel.Tracer("github.com/nortenlab/invoicedraft")
}

var (
	// DocumentsParsed counts parsed invoices by template.
	DocumentsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicedraft_documents_parsed_total",
		Help: "Invoices run through the template parser, by template id.",
	}, []string{"template"})

	// LinesRecovered counts line items recovered from invoice tables.
	LinesRecovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoicedraft_lines_recovered_total",
		Help: "Invoice line items recovered across all documents.",
	})

	// DocumentWarnings counts document-level parse warnings.
	DocumentWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoicedraft_document_warnings_total",
		Help: "Document-level warnings attached by the parser or validator.",
	})

	// FeedbackMatches counts lines rewritten from prior manual corrections.
	FeedbackMatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoicedraft_feedback_matches_total",
		Help: "Parsed lines upgraded from the feedback snapshot.",
	})

	// OutlierRepairs counts price points repaired during series correction.
	OutlierRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoicedraft_price_outliers_repaired_total",
		Help: "Price-history points repaired by the outlier corrector.",
	})
)
