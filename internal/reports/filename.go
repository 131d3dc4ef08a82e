package reports

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]+`)

// Letters that do not decompose under NFD.
var asciiFold = map[rune]rune{'ł': 'l', 'Ł': 'L', 'đ': 'd', 'Đ': 'D', 'ø': 'o', 'Ø': 'O'}

// SafeFilename folds diacritics to ASCII and replaces every other run of
// characters outside [a-zA-Z0-9-_] with a single underscore.
func SafeFilename(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if folded, ok := asciiFold[r]; ok {
				return folded
			}
			return r
		}),
		norm.NFC,
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	out := strings.Trim(unsafeFilenameChars.ReplaceAllString(folded, "_"), "_")
	if out == "" {
		return "report"
	}
	return out
}

// KPIRFilename names the PDF download of a period.
func KPIRFilename(periodTitle string) string {
	return "kpir-" + SafeFilename(periodTitle) + ".pdf"
}

// ContractorsFilename names the XLSX download of a contractor query.
func ContractorsFilename(q ContractorQuery) string {
	return "raport-kontrahenci-" + q.DateFrom.Format(dateLayout) + "_" + q.DateTo.Format(dateLayout) + ".xlsx"
}
