package field

import (
	"errors"
	"fmt"

	"github.com/tbxark/reliefwizard/patch"
	"github.com/tbxark/reliefwizard/types"
)

type Kind string

const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindEnum     Kind = "enum"
	KindLocation Kind = "location"
	KindTags     Kind = "tags"
	KindFlag     Kind = "flag"
)

// Location is the payload handed over by the location picker.
type Location struct {
	Address string  `json:"address" msgpack:"address"`
	Lat     float64 `json:"lat" msgpack:"lat"`
	Lng     float64 `json:"lng" msgpack:"lng"`
}

type Definition struct {
	Name        string
	Kind        Kind
	Label       string
	Description string
	// Default seeds the store; nil means the kind's empty value.
	Default any
	// Options lists the labels offered for enum and tags fields.
	Options []string
}

func (d Definition) DisplayName() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

func (d Definition) Pointer() string {
	return "/" + patch.EscapePointer(d.Name)
}

func (d Definition) Info(required bool) types.FieldInfo {
	return types.FieldInfo{
		Name:        d.Name,
		Pointer:     d.Pointer(),
		DisplayName: d.DisplayName(),
		Description: d.Description,
		Required:    required,
	}
}

var (
	ErrEmptySchema    = errors.New("schema has no fields")
	ErrDuplicateField = errors.New("duplicate field name")
	ErrUnknownKind    = errors.New("unknown field kind")
)

// Schema is the ordered, immutable set of field definitions of a form.
type Schema struct {
	defs  []Definition
	index map[string]int
}

func NewSchema(defs ...Definition) (*Schema, error) {
	if len(defs) == 0 {
		return nil, ErrEmptySchema
	}
	s := &Schema{
		defs:  make([]Definition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("field %d: empty name", len(s.defs))
		}
		if _, dup := s.index[d.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, d.Name)
		}
		switch d.Kind {
		case KindText, KindNumber, KindEnum, KindLocation, KindTags, KindFlag:
		default:
			return nil, fmt.Errorf("%w %q for field %s", ErrUnknownKind, d.Kind, d.Name)
		}
		d.Options = append([]string(nil), d.Options...)
		s.index[d.Name] = len(s.defs)
		s.defs = append(s.defs, d)
	}
	return s, nil
}

// MustSchema is NewSchema for statically declared schemas.
func MustSchema(defs ...Definition) *Schema {
	s, err := NewSchema(defs...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Lookup(name string) (Definition, bool) {
	if s == nil {
		return Definition{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Definition{}, false
	}
	return s.defs[i], true
}

func (s *Schema) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

func (s *Schema) Definitions() []Definition {
	if s == nil {
		return nil
	}
	return append([]Definition(nil), s.defs...)
}

func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.defs))
	for i, d := range s.defs {
		names[i] = d.Name
	}
	return names
}

// AllowedPaths returns the patch paths that may be touched: every field
// pointer plus element paths for tag sets.
func (s *Schema) AllowedPaths() map[string]bool {
	if s == nil {
		return map[string]bool{}
	}
	paths := make(map[string]bool, len(s.defs))
	for _, d := range s.defs {
		paths[d.Pointer()] = true
		switch d.Kind {
		case KindTags:
			paths[d.Pointer()+"/-"] = true
		case KindLocation:
			paths[d.Pointer()+"/*"] = true
		}
	}
	return paths
}

// Empty returns the empty sentinel of a kind.
func Empty(kind Kind) any {
	switch kind {
	case KindNumber:
		return float64(0)
	case KindLocation:
		return (*Location)(nil)
	case KindTags:
		return []string{}
	case KindFlag:
		return false
	default:
		return ""
	}
}
