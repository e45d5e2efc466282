// Package naming provides the case conversions shared by the type resolver,
// the method binding compiler and the emitters.
//
// Word segmentation splits on every non-alphanumeric rune, between a lowercase
// rune and a following uppercase rune, and before the last rune of an uppercase
// run that is followed by a lowercase rune ("HTTPServer" -> "HTTP", "Server").
// Digits never start a new word on their own.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type wordMode int

const (
	modeBoundary wordMode = iota
	modeLower
	modeUpper
)

// Words splits s into its words.
func Words(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	var out []string
	for _, field := range fields {
		runes := []rune(field)
		start := 0
		mode := modeBoundary
		for i, c := range runes {
			if i+1 == len(runes) {
				out = append(out, string(runes[start:]))
				break
			}
			next := runes[i+1]

			nextMode := mode
			if unicode.IsLower(c) {
				nextMode = modeLower
			} else if unicode.IsUpper(c) {
				nextMode = modeUpper
			}

			switch {
			case nextMode == modeLower && unicode.IsUpper(next):
				out = append(out, string(runes[start:i+1]))
				start = i + 1
				mode = modeBoundary
			case mode == modeUpper && unicode.IsUpper(c) && unicode.IsLower(next):
				out = append(out, string(runes[start:i]))
				start = i
				mode = modeBoundary
			default:
				mode = nextMode
			}
		}
	}
	return out
}

// ToSnakeCase converts s to snake_case.
// Example: "clientId" -> "client_id", "group-id" -> "group_id"
func ToSnakeCase(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// ToUpperCamelCase converts s to UpperCamelCase.
// Example: "USERINFO" -> "Userinfo", "client_id" -> "ClientId"
func ToUpperCamelCase(s string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(caser.String(w))
	}
	return b.String()
}

// ToLowerCamelCase converts s to lowerCamelCase.
// Example: "client_id" -> "clientId"
func ToLowerCamelCase(s string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	for i, w := range Words(s) {
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(caser.String(w))
	}
	return b.String()
}

// IsUpperCase reports whether every rune of s is an uppercase letter.
// The empty string is upper case.
func IsUpperCase(s string) bool {
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
