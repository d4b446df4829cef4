// Package readings resolves every character of a text to the readings
// (pronunciations) listed for it by a prioritized set of sources.
package readings

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/samber/lo"

	"github.com/jusunglee/romanization/internal/graphemes"
)

// Type is a set of reading sources. Each source owns one bit; sets combine
// with |.
type Type uint32

// Has reports whether every flag in other is also set in t.
func (t Type) Has(other Type) bool {
	return other != 0 && t&other == other
}

// Flags returns the individual flags of t from lowest to highest bit.
func (t Type) Flags() []Type {
	flags := make([]Type, 0, bits.OnesCount32(uint32(t)))
	for rest := uint32(t); rest != 0; rest &= rest - 1 {
		flags = append(flags, Type(rest&-rest))
	}
	return flags
}

// Reading is one pronunciation of a character from one source.
type Reading struct {
	Type  Type
	Value string
}

// Character is a single character of a String with all of its readings, in
// source priority order and then in the order each source lists them.
type Character struct {
	Character string
	Readings  []Reading
}

// Flatten renders the readings of c for display. A character without
// readings is returned as is, a single distinct reading is returned bare and
// several distinct readings are space-joined inside square brackets.
func (c Character) Flatten() string {
	values := lo.Uniq(lo.Map(c.Readings, func(r Reading, _ int) string { return r.Value }))
	switch len(values) {
	case 0:
		return c.Character
	case 1:
		return values[0]
	default:
		return "[" + strings.Join(values, " ") + "]"
	}
}

// First returns the value of the first reading, or the character itself.
func (c Character) First() string {
	if len(c.Readings) == 0 {
		return c.Character
	}
	return c.Readings[0].Value
}

func (c Character) String() string {
	return fmt.Sprintf("'%s' %s", c.Character, c.Flatten())
}

// String is a text split into characters, each carrying its readings.
type String struct {
	Characters []Character
}

// Flatten concatenates the flattened form of every character.
func (s String) Flatten() string {
	var b strings.Builder
	for _, c := range s.Characters {
		b.WriteString(c.Flatten())
	}
	return b.String()
}

// First concatenates the first reading of every character, falling back to
// the character for those without readings.
func (s String) First() string {
	var b strings.Builder
	for _, c := range s.Characters {
		b.WriteString(c.First())
	}
	return b.String()
}

func (s String) String() string {
	return s.Flatten()
}

// Lookup returns the readings a source lists for a character.
type Lookup interface {
	Readings(character string) ([]string, bool)
}

// Map is a Lookup backed by a plain map.
type Map map[string][]string

func (m Map) Readings(character string) ([]string, bool) {
	r, ok := m[character]
	return r, ok
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(character string) ([]string, bool)

func (f LookupFunc) Readings(character string) ([]string, bool) {
	return f(character)
}

// Source binds a lookup to the single flag its readings are tagged with.
type Source struct {
	Type   Type
	Lookup Lookup
}

// Resolve splits text into characters and collects, for each one, the
// readings of every requested source in the order the sources are given.
func Resolve(text string, requested Type, sources []Source) String {
	units := graphemes.Split(text)
	chars := make([]Character, len(units))
	for i, unit := range units {
		var found []Reading
		for _, src := range sources {
			if !requested.Has(src.Type) {
				continue
			}
			values, ok := src.Lookup.Readings(unit)
			if !ok {
				continue
			}
			for _, v := range values {
				found = append(found, Reading{Type: src.Type, Value: v})
			}
		}
		chars[i] = Character{Character: unit, Readings: found}
	}
	return String{Characters: chars}
}

// Resolver is a fixed set of sources and requested types, built once and
// safe for concurrent use.
type Resolver struct {
	requested Type
	sources   []Source
}

func NewResolver(requested Type, sources ...Source) *Resolver {
	return &Resolver{requested: requested, sources: append([]Source(nil), sources...)}
}

func (r *Resolver) Requested() Type {
	return r.requested
}

func (r *Resolver) Resolve(text string) String {
	return Resolve(text, r.requested, r.sources)
}
