package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"
)

// DefaultPrecision is the rounding applied to parsed monetary values.
const DefaultPrecision = 4

var (
	reThousandsDot = regexp.MustCompile(`\.(\d{3})(\D|$)`)
	reDecimalComma = regexp.MustCompile(`,(\d+)$`)
	reDate         = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})$`)
)

// ParseLocaleNumber parses a locale-formatted number ("1.234,50") into a
// decimal rounded to the given precision. Malformed or empty input yields
// zero: a single bad cell must never abort the whole document.
func ParseLocaleNumber(s string, precision int32) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}
	// A dot followed by exactly three digits and a non-digit (or end) is a
	// thousands separator. Applied repeatedly for "1.234.567".
	for {
		next := reThousandsDot.ReplaceAllString(s, "$1$2")
		if next == s {
			break
		}
		s = next
	}
	s = reDecimalComma.ReplaceAllString(s, ".$1")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(precision)
}

// ToISODate converts "D.M.Y" (also / and - separators, 2-digit years) into
// "YYYY-MM-DD". Unparseable input is returned unchanged; the caller treats a
// non-ISO result as a soft validation issue.
func ToISODate(s string) string {
	m := reDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return s
	}
	if len(m[3]) == 3 {
		return s
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// ToAllowedUOM maps a free-form unit token onto the closed vocabulary.
// It tolerates common misspellings and one domain substitution (bucket
// containers are tracked by weight). Unknown tokens return ok=false plus a
// warning; the caller decides whether to default or reject.
func ToAllowedUOM(token string) (uom UOM, warning string, ok bool) {
	t := strings.ToUpper(FoldDiacritics(strings.TrimSpace(token)))
	t = strings.TrimRight(t, ".")
	switch t {
	case "KG":
		return UOMKilogram, "", true
	case "TU":
		return UOMCase, "", true
	case "STUECK", "ST", "STK", "STCK", "STUEK", "STUCK":
		return UOMPiece, "", true
	}
	if strings.Contains(t, "EIMER") {
		// Bucket goods are costed by weight; the substitution changes the
		// physical meaning of the unit, so it always carries a warning.
		return UOMKilogram, fmt.Sprintf("unit %q interpreted as KG (bucket container)", token), true
	}
	if t == "" {
		return "", "missing unit token", false
	}
	return "", fmt.Sprintf("unknown unit %q", token), false
}

// Keyword vocabularies for line classification. Matched with Aho-Corasick so
// every pattern is checked in one pass over the description.
var (
	shippingVocab = []string{
		"FRACHT", "VERSAND", "SPEDITION", "TRANSPORT", "LIEFERKOSTEN",
		"LIEFERPAUSCHALE", "ZUSTELLUNG", "PORTO", "SHIPPING", "FREIGHT",
	}
	// "FEE" is deliberately absent: as a substring it fires inside common
	// German words ("Kaffee").
	surchargeVocab = []string{
		"ZUSCHLAG", "MAUT", "ENERGIE", "DIESEL", "KRAFTSTOFF", "GEBUEHR",
		"PAUSCHALE", "SURCHARGE", "FUEL",
	}

	shippingMatcher  = ahocorasick.NewStringMatcher(shippingVocab)
	surchargeMatcher = ahocorasick.NewStringMatcher(surchargeVocab)
)

// GuessLineType classifies a description into shipping, surcharge or product.
// Shipping vocabulary wins over surcharge vocabulary.
func GuessLineType(description string) LineType {
	needle := []byte(strings.ToUpper(FoldDiacritics(description)))
	if len(shippingMatcher.MatchThreadSafe(needle)) > 0 {
		return LineTypeShipping
	}
	if len(surchargeMatcher.MatchThreadSafe(needle)) > 0 {
		return LineTypeSurcharge
	}
	return LineTypeProduct
}

// DefaultTaxRate returns the VAT rate assumed for a line type when the
// invoice does not state one: 19% for shipping, the reduced 7% otherwise.
func DefaultTaxRate(lt LineType) decimal.Decimal {
	if lt == LineTypeShipping {
		return decimal.NewFromInt(19)
	}
	return decimal.NewFromInt(7)
}
