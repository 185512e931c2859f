package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// replacer transliterates common accented Latin characters so catalog and
// post titles keep their letters instead of dropping them.
var replacer = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "å", "a", "ã", "a",
	"ç", "c",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o", "ø", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ý", "y", "ÿ", "y",
	"ğ", "g", "ş", "s", "ß", "ss",
)

// Generate creates a URL-friendly slug from the given name.
//
// Examples:
//
//	Generate("Café Latte Machine") == "cafe-latte-machine"
//	Generate("Hello   World!") == "hello-world"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = replacer.Replace(s)

	// Any run of non-alphanumerics, hyphens included, collapses into one
	// separator.
	s = nonAlnum.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
