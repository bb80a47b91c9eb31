package util

import "unicode"

func IsNumber(r rune) bool {
	return r >= '0' && r <= '9'
}

func IsHexNumber(r rune) bool {
	return IsNumber(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func IsUnderScore(r rune) bool {
	return r == '_'
}

// IsLetter accepts any unicode letter, identifiers are not restricted to ascii.
func IsLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func IsLetterOrUnderscoreOrNumber(r rune) bool {
	return IsLetter(r) || IsUnderScore(r) || unicode.IsDigit(r)
}

func IsSpace(r rune) bool {
	return unicode.IsSpace(r)
}

// IsASCIIPrintable reports whether r can be written into a C literal without escaping.
func IsASCIIPrintable(r rune) bool {
	return r >= 0x20 && r < 0x7f
}
