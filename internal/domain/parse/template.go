package parse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// TemplateID tags one supported supplier layout. The set is closed: unknown
// suppliers fall back to TemplateGeneric with a low-confidence warning.
type TemplateID string

const (
	TemplateHartmann TemplateID = "hartmann"
	TemplateVollmer  TemplateID = "vollmer"
	TemplateGeneric  TemplateID = "generic"
)

type metaPattern struct {
	Key   string
	Label string
	re    *regexp.Regexp
}

// template bundles everything supplier-specific: header field patterns,
// table vocabulary, token sanitation and post-processing.
type template struct {
	id            TemplateID
	version       string
	currency      string
	reInvoiceNo   *regexp.Regexp
	reInvoiceDate *regexp.Regexp
	reGrossTotal  *regexp.Regexp
	meta          []metaPattern
	headerVocab   []string
	reTableEnd    *regexp.Regexp
	sanitizeToken func(string) string
	postProcess   func([]InvoiceLineDraft) ([]InvoiceLineDraft, []string)
}

var defaultMetaPatterns = []metaPattern{
	{"customer_no", "Kundennummer", regexp.MustCompile(`(?i)Kunden-?(?:Nr\.?|Nummer)\s*[:.]?\s*([A-Za-z0-9/-]+)`)},
	{"order_no", "Bestellnummer", regexp.MustCompile(`(?i)(?:Bestell|Auftrags)-?(?:Nr\.?|Nummer)\s*[:.]?\s*([A-Za-z0-9/-]+)`)},
	{"delivery_note", "Lieferschein", regexp.MustCompile(`(?i)Lieferschein(?:-?(?:Nr\.?|Nummer))?\s*[:.]?\s*([A-Za-z0-9/-]+)`)},
	{"delivery_date", "Lieferdatum", regexp.MustCompile(`(?i)Lieferdatum\s*[:.]?\s*(\d{1,2}[./-]\d{1,2}[./-]\d{2,4})`)},
	{"debtor_no", "Debitorennummer", regexp.MustCompile(`(?i)Debitoren-?(?:Nr\.?|Nummer)\s*[:.]?\s*([A-Za-z0-9/-]+)`)},
}

var defaultHeaderVocab = []string{
	"pos", "art", "artikel", "bezeichnung", "beschreibung", "menge",
	"einheit", "einh", "preis", "einzelpreis", "gesamt", "betrag", "summe",
}

var defaultTableEnd = regexp.MustCompile(`(?i)^(zwischensumme|nettobetrag|summe|gesamtbetrag|gesamt|mwst|umsatzsteuer|übertrag|uebertrag)`)

// Position codes Hartmann uses for pooled energy and fuel surcharges. Their
// amounts are spread over the KG weight of the product lines on the same
// document.
var hartmannSurchargeCodes = map[string]bool{
	"9800": true,
	"9801": true,
	"9850": true,
}

var templates = map[TemplateID]*template{
	TemplateHartmann: {
		id:            TemplateHartmann,
		version:       "1.3",
		currency:      "EUR",
		reInvoiceNo:   regexp.MustCompile(`(?i)Rechnung\s*(?:Nr\.?|Nummer)?\s*[:.]?\s*([A-Za-z0-9/-]+)`),
		reInvoiceDate: regexp.MustCompile(`(?i)Rechnungsdatum\s*[:.]?\s*(\d{1,2}[./-]\d{1,2}[./-]\d{2,4})`),
		reGrossTotal:  regexp.MustCompile(`(?i)(?:Rechnungsbetrag|Bruttobetrag|Endbetrag)\s*[:.]?\s*(?:EUR\s*)?(-?[\d.,]+)`),
		meta:          defaultMetaPatterns,
		headerVocab:   defaultHeaderVocab,
		reTableEnd:    defaultTableEnd,
		postProcess:   redistributeHartmannSurcharges,
	},
	TemplateVollmer: {
		id:            TemplateVollmer,
		version:       "1.1",
		currency:      "EUR",
		reInvoiceNo:   regexp.MustCompile(`(?i)Beleg-?(?:Nr\.?|Nummer)\s*[:.]?\s*([A-Za-z0-9/-]+)`),
		reInvoiceDate: regexp.MustCompile(`(?i)Belegdatum\s*[:.]?\s*(\d{1,2}[./-]\d{1,2}[./-]\d{2,4})`),
		reGrossTotal:  regexp.MustCompile(`(?i)Gesamtbetrag\s*(?:brutto)?\s*[:.]?\s*(?:EUR\s*)?(-?[\d.,]+)`),
		meta:          defaultMetaPatterns,
		headerVocab:   defaultHeaderVocab,
		reTableEnd:    defaultTableEnd,
		// Vollmer marks discounted positions with trailing asterisks.
		sanitizeToken: func(t string) string { return strings.TrimRight(t, "*") },
	},
	TemplateGeneric: {
		id:            TemplateGeneric,
		version:       "1.0",
		currency:      "EUR",
		reInvoiceNo:   regexp.MustCompile(`(?i)Rechnung\s*(?:Nr\.?|Nummer)?\s*[:.]?\s*([A-Za-z0-9/-]+)`),
		reInvoiceDate: regexp.MustCompile(`(?i)(?:Rechnungs)?datum\s*[:.]?\s*(\d{1,2}[./-]\d{1,2}[./-]\d{2,4})`),
		reGrossTotal:  regexp.MustCompile(`(?i)(?:Rechnungsbetrag|Gesamtbetrag|Bruttobetrag|Endbetrag)\s*[:.]?\s*(?:EUR\s*)?(-?[\d.,]+)`),
		meta:          defaultMetaPatterns,
		headerVocab:   defaultHeaderVocab,
		reTableEnd:    defaultTableEnd,
	},
}

// supplierDispatch maps supplier-name substrings onto templates. Checked in
// order; first hit wins.
var supplierDispatch = []struct {
	substr string
	id     TemplateID
}{
	{"hartmann", TemplateHartmann},
	{"vollmer", TemplateVollmer},
}

// templateFor resolves a supplier name to its template. recognized=false
// means the generic fallback was applied; callers attach a document warning.
func templateFor(supplierName string) (tmpl *template, recognized bool) {
	name := strings.ToLower(FoldDiacritics(supplierName))
	for _, d := range supplierDispatch {
		if strings.Contains(name, d.substr) {
			return templates[d.id], true
		}
	}
	return templates[TemplateGeneric], false
}

const issueSurchargeAllocated = "energy surcharge allocated by weight"
const issueSurchargeNotAllocable = "surcharge not allocable: no product weight on document"

// redistributeHartmannSurcharges folds lines carrying one of the known energy
// or fuel surcharge position codes into the KG product lines of the same
// document, proportionally to weight. The absorbed surcharge line is removed;
// with zero total weight it stays and is flagged instead of being dropped.
func redistributeHartmannSurcharges(items []InvoiceLineDraft) ([]InvoiceLineDraft, []string) {
	totalWeight := decimal.Zero
	for _, it := range items {
		if it.LineType == LineTypeProduct && it.UOM == UOMKilogram {
			totalWeight = totalWeight.Add(it.Qty)
		}
	}

	var warnings []string
	out := make([]InvoiceLineDraft, 0, len(items))
	pool := decimal.Zero
	for _, it := range items {
		if !hartmannSurchargeCodes[it.ProductSKU] {
			out = append(out, it)
			continue
		}
		if totalWeight.IsZero() {
			out = append(out, it.WithIssue(issueSurchargeNotAllocable, it.Confidence))
			warnings = append(warnings, issueSurchargeNotAllocable)
			continue
		}
		pool = pool.Add(it.LineTotalNet)
	}
	if pool.IsZero() {
		return out, warnings
	}

	perKg := pool.Div(totalWeight)
	for i, it := range out {
		if it.LineType != LineTypeProduct || it.UOM != UOMKilogram {
			continue
		}
		it.UnitPriceNet = it.UnitPriceNet.Add(perKg).Round(DefaultPrecision)
		it.LineTotalNet = it.Qty.Mul(it.UnitPriceNet).Round(DefaultPrecision)
		out[i] = it.WithIssue(issueSurchargeAllocated, it.Confidence)
	}
	return out, warnings
}
