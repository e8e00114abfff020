package capture

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips diacritical marks from a string (e.g. "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SnapshotFileName builds a filesystem-safe name for a saved frame from an
// event title and capture time, e.g. "johns-wedding-20260828-153045.jpg".
func SnapshotFileName(title string, taken time.Time) string {
	slug := removeDiacritics(title)
	slug = strings.ToLower(slug)

	var b strings.Builder
	lastDash := true
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug = strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "snapshot"
	}

	return slug + "-" + taken.Format("20060102-150405") + ".jpg"
}
