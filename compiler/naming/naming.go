// Package naming maps raw snake_case schema identifiers to the naming
// conventions used by the generated artifacts.
package naming

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidIdentifier is returned by Validate.
var ErrInvalidIdentifier = errors.New("naming: invalid identifier")

// initialisms are upper-cased as a whole in Go struct field names.
var initialisms = map[string]bool{
	"api":  true,
	"html": true,
	"http": true,
	"id":   true,
	"ip":   true,
	"json": true,
	"sql":  true,
	"uri":  true,
	"url":  true,
	"uuid": true,
}

// segments splits a raw identifier on underscores, dropping empty parts.
func segments(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool { return r == '_' })
}

// TypeName converts a raw identifier to a type name: user_profile => UserProfile.
func TypeName(raw string) string {
	var b strings.Builder
	for _, s := range segments(raw) {
		b.WriteString(Exported(s))
	}
	return b.String()
}

// MemberName converts a raw identifier to a member name: user_profile => userProfile.
func MemberName(raw string) string {
	return Unexported(TypeName(raw))
}

// MemberNameWithDigits is like MemberName, but keeps purely numeric segments
// literal and delimited by underscores: field_2_name => field_2_Name.
func MemberNameWithDigits(raw string) string {
	parts := segments(raw)
	var b strings.Builder
	for i, s := range parts {
		switch {
		case isNumeric(s):
			b.WriteString("_" + s)
			if i < len(parts)-1 {
				b.WriteString("_")
			}
		case i == 0:
			b.WriteString(Unexported(s))
		default:
			b.WriteString(Exported(s))
		}
	}
	return b.String()
}

// FileSlug converts a raw identifier to its file and path form: user_profile => user-profile.
func FileSlug(raw string) string {
	return strings.ReplaceAll(raw, "_", "-")
}

// StructField returns the exported Go field name of a column. Digit segments
// are kept as in MemberNameWithDigits and initialisms are upper-cased:
// user_id => UserID, field_2_name => Field_2_Name.
func StructField(raw string) string {
	parts := segments(raw)
	var b strings.Builder
	for i, s := range parts {
		switch {
		case isNumeric(s):
			if i > 0 {
				b.WriteString("_")
			}
			b.WriteString(s)
			if i < len(parts)-1 {
				b.WriteString("_")
			}
		case initialisms[strings.ToLower(s)]:
			b.WriteString(strings.ToUpper(s))
		default:
			b.WriteString(Exported(s))
		}
	}
	name := b.String()
	if name != "" && !unicode.IsLetter(rune(name[0])) {
		name = "X" + name
	}
	return name
}

// PackageName returns a Go package name for a raw identifier.
func PackageName(raw string) string {
	name := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(raw))
	if token.IsKeyword(name) {
		name += "pkg"
	}
	return name
}

// Plural returns the plural of a type name. If the word has no distinct
// plural form, List is appended.
func Plural(name string) string {
	p := inflect.Pluralize(name)
	if p == name {
		return name + "List"
	}
	return p
}

// Title returns a human readable form of a raw identifier: user_profile => User Profile.
func Title(raw string) string {
	// Casers keep state and must not be shared between goroutines.
	return cases.Title(language.English).String(strings.Join(segments(raw), " "))
}

// Exported upper-cases the first rune of s.
func Exported(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Unexported lower-cases the first rune of s.
func Unexported(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// Validate reports whether raw can be normalized into valid identifiers.
// Empty, non-ASCII and digit-leading identifiers are rejected.
func Validate(raw string) error {
	switch {
	case raw == "":
		return fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	case len(segments(raw)) == 0:
		return fmt.Errorf("%w: %q has no name segment", ErrInvalidIdentifier, raw)
	case raw[0] >= '0' && raw[0] <= '9':
		return fmt.Errorf("%w: %q starts with a digit", ErrInvalidIdentifier, raw)
	}
	for _, r := range raw {
		if r > unicode.MaxASCII || !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidIdentifier, raw, r)
		}
	}
	return nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
