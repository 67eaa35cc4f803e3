package scraper

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CandidateTags are the elements inspected for category headers and
// product entries.
var CandidateTags = []string{"h2", "h3", "h4", "p"}

// ProductKeywords is the fixed product-type vocabulary. CHARGR is a
// misspelling that appears on the storefront.
var ProductKeywords = []string{
	"CHARGER", "CHARGR", "BODY", "MOTOR", "KIT", "PART", "CONNECTOR", "BMS",
	"BATTERY", "MACHINE", "CABLE", "SWITCH", "LIGHT", "HELMET", "DISC",
	"GLASS", "TYRE", "CELL", "BOX", "RESIN", "TUBE", "PAPER", "PVC",
}

const currencySymbol = "₹"

var (
	productPattern = regexp.MustCompile(`(?i)^\[?([A-Z0-9]+\])? ?[A-Z0-9 ]+(` + strings.Join(ProductKeywords, "|") + `)`)
	codePattern    = regexp.MustCompile(`\(([^)]+)\)`)
	pricePresence  = regexp.MustCompile(currencySymbol + `\d+`)
	priceValue     = regexp.MustCompile(currencySymbol + `([\d,]+)`)
	gstPattern     = regexp.MustCompile(`\+GST ?(\d+%)`)
	unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// IsCategoryHeader reports whether text is an all-caps heading: longer than
// three characters, at least one uppercase letter, and no lowercase letters
// or digits.
func IsCategoryHeader(text string) bool {
	if utf8.RuneCountInString(text) <= 3 {
		return false
	}

	hasUpper := false
	for _, r := range text {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r), unicode.IsDigit(r):
			return false
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}
	return hasUpper
}

func IsProductEntry(text string) bool {
	return productPattern.MatchString(text)
}

// ExtractCode returns the contents of the first parenthesized group.
func ExtractCode(name string) string {
	if m := codePattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return ""
}

func HasPrice(text string) bool {
	return pricePresence.MatchString(text)
}

// ExtractPrice returns the digits following the currency symbol with
// grouping separators removed.
func ExtractPrice(priceText string) string {
	if m := priceValue.FindStringSubmatch(priceText); m != nil {
		return strings.ReplaceAll(m[1], ",", "")
	}
	return ""
}

func ExtractGST(priceText string) string {
	if m := gstPattern.FindStringSubmatch(priceText); m != nil {
		return m[1]
	}
	return ""
}

// SanitizeFilename maps every character outside [A-Za-z0-9_-] to '_'.
func SanitizeFilename(name string) string {
	return unsafeFilename.ReplaceAllString(name, "_")
}

// ResolveImageURL makes src absolute against origin. Anything already
// starting with "http" is returned unchanged.
func ResolveImageURL(origin, src string) string {
	if strings.HasPrefix(src, "http") {
		return src
	}
	if !strings.HasSuffix(origin, "/") {
		origin += "/"
	}
	return origin + strings.TrimLeft(src, "/")
}

// ImageExtension returns the extension of the URL path, query and fragment
// excluded.
func ImageExtension(imageURL string) string {
	if u, err := url.Parse(imageURL); err == nil {
		return path.Ext(u.Path)
	}
	return path.Ext(imageURL)
}

// ImageFilename derives the local file name for a product image.
func ImageFilename(code, name, imageURL string) string {
	base := code
	if base == "" {
		base = name
	}
	return SanitizeFilename(base) + ImageExtension(imageURL)
}
