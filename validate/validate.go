// Package validate holds the character-class checks applied to free-text
// form fields before anything reaches the database.
package validate

import (
	"regexp"
	"strings"
	"unicode"
)

// space is the browser whitespace set: RE2 \s plus \v, the Zs separators
// (NBSP included), U+2028, U+2029 and the BOM.
const space = `\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}`

var (
	lettersRe  = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ` + space + `'-]+$`)
	passwordRe = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ0-9` + space + `!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]+$`)
	priceRe    = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

	decimalRe  = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	infinityRe = regexp.MustCompile(`^[+-]?Infinity$`)
	radixRe    = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
)

// LettersOnly reports whether s is made of Latin letters (accented forms
// included), whitespace, apostrophes and hyphens. Used for names.
func LettersOnly(s string) bool {
	return lettersRe.MatchString(s)
}

// PasswordCharset reports whether s only uses the letters charset, digits
// and the accepted symbol set.
func PasswordCharset(s string) bool {
	return passwordRe.MatchString(s)
}

// PriceFormat reports whether s is an unsigned integer with an optional
// fractional part of one or two digits.
func PriceFormat(s string) bool {
	return priceRe.MatchString(s)
}

// IsNumeric is the loose "is this a number at all" check done before
// PriceFormat. It follows browser number coercion: surrounding whitespace
// is ignored, blank input counts as zero, and Infinity as well as
// unsigned 0x, 0o and 0b literals are numbers. Callers reject missing
// fields first.
func IsNumeric(s string) bool {
	t := trimSpace(s)
	if t == "" {
		return true
	}
	return decimalRe.MatchString(t) || infinityRe.MatchString(t) || radixRe.MatchString(t)
}

// IsDecimal reports whether s, once trimmed, is a plain signed decimal
// with an optional exponent, the form a numeric column can compare with.
func IsDecimal(s string) bool {
	return decimalRe.MatchString(trimSpace(s))
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
