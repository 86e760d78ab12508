package issue

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// strokes are letters without a canonical decomposition.
var strokes = strings.NewReplacer( //nolint:gochecknoglobals // read-only
	"Ł", "L", "ł", "l",
	"Đ", "D", "đ", "d",
	"Ø", "O", "ø", "o",
)

// StripAccents removes diacritics: "é" becomes "e", "Ç" becomes "C", "Ł" becomes "L".
// Trackers may reject or mis-render accented text in summaries.
func StripAccents(s string) string {
	// a transformer keeps state, build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strokes.Replace(out)
}
