package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	dashCaseRegexp   = regexp.MustCompile(`-+([a-z0-9])`)
	nonWordRegexp    = regexp.MustCompile(`\W`)
	camelCaseRegexp  = regexp.MustCompile(`([A-Z])`)
	identifierRegexp = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
	titleCaser       = cases.Title(language.Und, cases.NoLower)
)

// DashCaseToCamelCase converts a dash-case string to camelCase
func DashCaseToCamelCase(input string) string {
	return dashCaseRegexp.ReplaceAllStringFunc(input, func(match string) string {
		parts := dashCaseRegexp.FindStringSubmatch(match)
		return strings.ToUpper(parts[1])
	})
}

// CamelCaseToDashCase converts "fooBar" to "foo-bar".
func CamelCaseToDashCase(input string) string {
	return camelCaseRegexp.ReplaceAllStringFunc(input, func(m string) string {
		return "-" + strings.ToLower(m)
	})
}

// SplitAtColon splits a string at the colon character
func SplitAtColon(input string, defaultValues []string) []string {
	return splitAt(input, ':', defaultValues)
}

// SplitAtPeriod splits a string at the period character
func SplitAtPeriod(input string, defaultValues []string) []string {
	return splitAt(input, '.', defaultValues)
}

func splitAt(input string, character rune, defaultValues []string) []string {
	index := strings.IndexRune(input, character)
	if index == -1 {
		return defaultValues
	}
	return []string{
		strings.TrimSpace(input[:index]),
		strings.TrimSpace(input[index+1:]),
	}
}

// SanitizeIdentifier sanitizes an identifier name by replacing non-word characters with underscores
func SanitizeIdentifier(name string) string {
	return nonWordRegexp.ReplaceAllString(name, "_")
}

// IsIdentifier reports whether name can be used as a JavaScript identifier as-is.
func IsIdentifier(name string) bool {
	return identifierRegexp.MatchString(name)
}

// Capitalize upper-cases the first letter and leaves the rest untouched.
// "for" -> "For", "trackBy" -> "TrackBy".
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return titleCaser.String(s[:1]) + s[1:]
}
