// Package casing converts identifiers between the naming conventions used on
// the two sides of a component boundary (kebab-case in markup, camelCase in
// script).
package casing

import (
	"strings"
	"unicode"
)

// Style names the spelling a rename edit must be written in.
type Style uint8

const (
	Preserve Style = iota
	Camel
	Kebab
	Pascal
)

func (s Style) String() string {
	switch s {
	case Camel:
		return "camel"
	case Kebab:
		return "kebab"
	case Pascal:
		return "pascal"
	default:
		return "preserve"
	}
}

// Apply respells name in the style. Preserve returns name untouched.
func (s Style) Apply(name string) string {
	switch s {
	case Camel:
		return Camelize(name)
	case Kebab:
		return Hyphenate(name)
	case Pascal:
		return Capitalize(Camelize(name))
	default:
		return name
	}
}

// Camelize turns "bar-foo" into "barFoo". Names without hyphens are returned
// as is.
func Camelize(name string) string {
	if !strings.Contains(name, "-") {
		return name
	}
	var b strings.Builder
	upper := false
	for _, r := range name {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Hyphenate turns "barFoo" and "BarFoo" into "bar-foo".
func Hyphenate(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func Capitalize(name string) string {
	for i, r := range name {
		return string(unicode.ToUpper(r)) + name[i+len(string(r)):]
	}
	return name
}

// IsKebab reports whether name contains a hyphen and is otherwise lower case.
func IsKebab(name string) bool {
	return strings.Contains(name, "-") && strings.ToLower(name) == name
}
