package docpage

import (
	"regexp"
	"strings"
)

var (
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	boldPattern       = regexp.MustCompile(`\*\*(.+?)\*\*`)

	escaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
	)
)

// Escape replaces the markup-significant characters & < > " and '.
func Escape(s string) string {
	return escaper.Replace(s)
}

// RenderInline escapes s and then applies the inline transforms: backtick spans
// become <code>, double-asterisk spans become <strong>. Unbalanced delimiters are
// left as literal text.
func RenderInline(s string) string {
	t := Escape(s)
	t = inlineCodePattern.ReplaceAllString(t, "<code>$1</code>")
	t = boldPattern.ReplaceAllString(t, "<strong>$1</strong>")
	return t
}
