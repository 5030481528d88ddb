package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reNumericToken = regexp.MustCompile(`^-?\d[\d.,]*$`)
	rePercentToken = regexp.MustCompile(`^(\d[\d.,]*)%$`)
	reBareInteger  = regexp.MustCompile(`^\d+$`)
	reHasLetter    = regexp.MustCompile(`[A-Za-z]`)
	reHasDigit     = regexp.MustCompile(`\d`)
)

// maxBareTaxRate is the cutoff for the bare-number tax heuristic: when a bare
// integer ≤ 25 sits between unit price and line total it is read as a tax
// percentage, not a price. Tuned against the supported supplier layouts; a
// plausible guess, kept explicit on purpose.
const maxBareTaxRate = 25

// rowFields is the outcome of tokenizing one reassembled logical row.
type rowFields struct {
	PosNo       int
	SKU         string
	Description string
	Qty         decimal.Decimal
	UOM         UOM
	UnitPrice   decimal.Decimal
	TaxRate     *decimal.Decimal
	LineTotal   decimal.Decimal
	Warnings    []string
	Raw         string
}

func isNumericToken(s string) bool {
	if !reNumericToken.MatchString(s) {
		return false
	}
	return reHasDigit.MatchString(s)
}

// tokenizeRow splits a reassembled row into whitespace tokens and pops typed
// fields from the tail inward: total, optional tax rate, unit price, unit,
// quantity. Trailing fields are denominated far more consistently than the
// free-text head, which is why the walk runs right to left. Returns ok=false
// when a required numeric field is missing.
func tokenizeRow(buffer string, sanitize func(string) string) (rowFields, bool) {
	var rf rowFields
	rf.Raw = CollapseSpaces(buffer)

	raw := strings.Fields(buffer)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if sanitize != nil {
			t = sanitize(t)
		}
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) < 4 {
		return rf, false
	}

	pop := func() string {
		t := tokens[len(tokens)-1]
		tokens = tokens[:len(tokens)-1]
		return t
	}
	peek := func() string { return tokens[len(tokens)-1] }

	// a. line total
	if !isNumericToken(peek()) {
		return rf, false
	}
	rf.LineTotal = ParseLocaleNumber(pop(), DefaultPrecision)

	// b. optional tax rate: "7%" style, or a bare plausible small integer
	if len(tokens) > 0 {
		if m := rePercentToken.FindStringSubmatch(peek()); m != nil {
			rate := ParseLocaleNumber(m[1], 2)
			rf.TaxRate = &rate
			pop()
		} else if reBareInteger.MatchString(peek()) {
			if v, err := strconv.Atoi(peek()); err == nil && v <= maxBareTaxRate {
				rate := decimal.NewFromInt(int64(v))
				rf.TaxRate = &rate
				pop()
			}
		}
	}

	// c. unit price
	if len(tokens) == 0 || !isNumericToken(peek()) {
		return rf, false
	}
	rf.UnitPrice = ParseLocaleNumber(pop(), DefaultPrecision)

	// d. unit token; a numeric token here means the unit is missing and the
	// token is already the quantity
	rf.UOM = UOMPiece
	if len(tokens) > 0 && !isNumericToken(peek()) {
		token := pop()
		uom, warning, ok := ToAllowedUOM(token)
		switch {
		case ok && warning != "":
			rf.UOM = uom
			rf.Warnings = append(rf.Warnings, warning)
		case ok:
			rf.UOM = uom
		default:
			rf.Warnings = append(rf.Warnings, warning+", assuming STUECK")
		}
	} else {
		rf.Warnings = append(rf.Warnings, "missing unit token, assuming STUECK")
	}

	// e. quantity
	if len(tokens) == 0 || !isNumericToken(peek()) {
		return rf, false
	}
	rf.Qty = ParseLocaleNumber(pop(), DefaultPrecision)

	// Leading tokens: optional position number, optional SKU, description.
	if len(tokens) > 0 && reBareInteger.MatchString(tokens[0]) && len(tokens[0]) <= 3 {
		rf.PosNo, _ = strconv.Atoi(tokens[0])
		tokens = tokens[1:]
	}
	if len(tokens) > 1 && looksLikeSKU(tokens[0]) {
		rf.SKU = tokens[0]
		tokens = tokens[1:]
	}
	rf.Description = CollapseSpaces(strings.Join(tokens, " "))
	if rf.Description == "" {
		return rf, false
	}
	return rf, true
}

// looksLikeSKU reports whether a token is a plausible article identifier: a
// short alphanumeric code carrying a digit plus a letter, hyphen or slash, or
// a bare numeric article code of at least four digits.
func looksLikeSKU(token string) bool {
	if len(token) > 15 || !reHasDigit.MatchString(token) {
		return false
	}
	if reHasLetter.MatchString(token) || strings.ContainsAny(token, "-/") {
		return true
	}
	return reBareInteger.MatchString(token) && len(token) >= 4
}
