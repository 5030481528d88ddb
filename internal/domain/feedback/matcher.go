package feedback

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/nortenlab/invoicedraft/internal/domain/parse"
)

const (
	IssueManuallyAssigned = "manually assigned"
	IssueFuzzyMatch       = "fuzzy match"

	confidenceExact = 0.96
	confidenceFuzzy = 0.90
)

// Matcher indexes a feedback snapshot for one supplier and rewrites parsed
// product lines that match a prior correction. All indices key on normalized
// values so OCR casing and punctuation noise do not break lookups.
type Matcher struct {
	bySKU      map[string]*Entry
	byCombined map[string]*Entry
	byDesc     map[string]*Entry
	entries    []*Entry
}

// NewMatcher builds the lookup indices from a snapshot of feedback entries.
// Entries with nothing to apply are skipped. When several entries share a
// key, the one with a concrete product assignment wins, then the most
// recently updated.
func NewMatcher(entries []Entry) *Matcher {
	m := &Matcher{
		bySKU:      make(map[string]*Entry),
		byCombined: make(map[string]*Entry),
		byDesc:     make(map[string]*Entry),
	}
	for i := range entries {
		e := &entries[i]
		if e.AssignedProductID == nil && e.AssignedProductSKU == "" &&
			e.AssignedProductName == "" && e.AssignedUOM == "" {
			continue
		}
		m.entries = append(m.entries, e)

		desc := parse.NormalizeDescription(e.DetectedDescription)
		sku := parse.NormalizeSKU(e.DetectedSKU)
		if sku != "" {
			indexEntry(m.bySKU, sku, e)
		}
		if desc != "" && sku != "" {
			indexEntry(m.byCombined, desc+"\x00"+sku, e)
		}
		if desc != "" {
			indexEntry(m.byDesc, desc, e)
		}
	}
	return m
}

func indexEntry(idx map[string]*Entry, key string, e *Entry) {
	cur, ok := idx[key]
	if !ok {
		idx[key] = e
		return
	}
	if e.hasAssignment() != cur.hasAssignment() {
		if e.hasAssignment() {
			idx[key] = e
		}
		return
	}
	if e.UpdatedAt.After(cur.UpdatedAt) {
		idx[key] = e
	}
}

// Apply runs the matcher over every product line of the draft and returns
// the rewritten draft. Re-applying on an already matched draft is a no-op.
func (m *Matcher) Apply(draft parse.InvoiceDraft) parse.InvoiceDraft {
	if len(m.entries) == 0 {
		return draft
	}
	items := make([]parse.InvoiceLineDraft, len(draft.Items))
	copy(items, draft.Items)
	for i, line := range items {
		if line.LineType != parse.LineTypeProduct {
			continue
		}
		items[i] = m.applyToLine(line)
	}
	out := draft
	out.Items = items
	return out
}

// applyToLine tries the strategies in priority order; the first hit wins:
// exact SKU, exact description+SKU, exact description, fuzzy description.
func (m *Matcher) applyToLine(line parse.InvoiceLineDraft) parse.InvoiceLineDraft {
	sku := parse.NormalizeSKU(line.ProductSKU)
	candidates := descCandidates(line)

	if sku != "" {
		if e, ok := m.bySKU[sku]; ok {
			return applyMatch(line, e, false)
		}
		for _, desc := range candidates {
			if e, ok := m.byCombined[desc+"\x00"+sku]; ok {
				return applyMatch(line, e, false)
			}
		}
	}
	for _, desc := range candidates {
		if e, ok := m.byDesc[desc]; ok {
			return applyMatch(line, e, false)
		}
	}
	if e := m.closestByDescription(candidates); e != nil {
		return applyMatch(line, e, true)
	}
	return line
}

// descCandidates returns the normalized description keys for a line: the raw
// source span and the cleaned product name, deduplicated.
func descCandidates(line parse.InvoiceLineDraft) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range []string{line.Source.Raw, line.ProductName} {
		key := parse.NormalizeDescription(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

// closestByDescription is the edit-distance fallback. A candidate is accepted
// when its Levenshtein distance stays within max(2, floor(0.2·maxlen)), a
// relative tolerance so short and long descriptions scale differently. The
// globally closest entry wins; ties prefer concrete assignments, then
// recency.
func (m *Matcher) closestByDescription(candidates []string) *Entry {
	var best *Entry
	bestDist := -1
	for _, e := range m.entries {
		desc := parse.NormalizeDescription(e.DetectedDescription)
		if desc == "" {
			continue
		}
		for _, cand := range candidates {
			dist := fuzzy.LevenshteinDistance(cand, desc)
			if dist > fuzzyTolerance(len(cand), len(desc)) {
				continue
			}
			switch {
			case bestDist < 0 || dist < bestDist:
				best, bestDist = e, dist
			case dist == bestDist && betterEntry(e, best):
				best = e
			}
		}
	}
	return best
}

func fuzzyTolerance(a, b int) int {
	maxLen := a
	if b > maxLen {
		maxLen = b
	}
	tol := maxLen / 5
	if tol < 2 {
		tol = 2
	}
	return tol
}

func betterEntry(e, cur *Entry) bool {
	if e.hasAssignment() != cur.hasAssignment() {
		return e.hasAssignment()
	}
	return e.UpdatedAt.After(cur.UpdatedAt)
}

// applyMatch rewrites the line from the entry, raises confidence and tags
// provenance. A match that changes nothing observable leaves the line as is.
func applyMatch(line parse.InvoiceLineDraft, e *Entry, fuzzyMatch bool) parse.InvoiceLineDraft {
	updated, changed := e.apply(line)

	confidence := confidenceExact
	if fuzzyMatch {
		confidence = confidenceFuzzy
	}
	// A line already carrying the provenance tags with nothing left to
	// rewrite was matched on an earlier pass. Its confidence may since have
	// been capped by validation issues, so it must not be raised again.
	if !changed && updated.HasIssue(IssueManuallyAssigned) &&
		(!fuzzyMatch || updated.HasIssue(IssueFuzzyMatch)) {
		return line
	}

	if updated.Confidence < confidence {
		updated.Confidence = confidence
	}
	updated = updated.WithIssue(IssueManuallyAssigned, updated.Confidence)
	if fuzzyMatch {
		updated = updated.WithIssue(IssueFuzzyMatch, updated.Confidence)
	}
	return updated
}
