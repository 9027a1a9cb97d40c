// Package schema holds the resource-kind descriptors shared by validation,
// query building, form rendering and the create wizard.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed kinds.yaml
var defaultDocument []byte

// FieldType is the declared value type of a resource attribute.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeText    FieldType = "text"
	TypeEnum    FieldType = "enum"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeList    FieldType = "list"
	TypeObjects FieldType = "objects"
)

// FilterMode selects how a list query parameter constrains results.
type FilterMode string

const (
	// FilterEquals matches a scalar attribute exactly.
	FilterEquals FilterMode = "equals"
	// FilterContains matches when an array attribute holds the value.
	FilterContains FilterMode = "contains"
	// FilterRange applies inclusive numeric bounds.
	FilterRange FilterMode = "range"
)

// Field describes one attribute of a resource kind.
type Field struct {
	Name      string    `yaml:"name" json:"name"`
	Label     string    `yaml:"label" json:"label"`
	Type      FieldType `yaml:"type" json:"type"`
	Required  bool      `yaml:"required" json:"required"`
	MaxLength int       `yaml:"maxLength" json:"maxLength,omitempty"`
	Min       *float64  `yaml:"min" json:"min,omitempty"`
	Max       *float64  `yaml:"max" json:"max,omitempty"`
	MinItems  int       `yaml:"minItems" json:"minItems,omitempty"`
	Format    string    `yaml:"format" json:"format,omitempty"`
	Default   string    `yaml:"default" json:"default,omitempty"`
	Enum      string    `yaml:"enum" json:"-"`
	Options   []string  `yaml:"-" json:"options,omitempty"`
}

// Numeric reports whether the field holds a number.
func (f *Field) Numeric() bool {
	return f.Type == TypeNumber || f.Type == TypeInteger
}

// Filter declares a list query parameter.
type Filter struct {
	Param    string     `yaml:"param" json:"param,omitempty"`
	Field    string     `yaml:"field" json:"field"`
	Mode     FilterMode `yaml:"mode" json:"mode"`
	MinParam string     `yaml:"minParam" json:"minParam,omitempty"`
	MaxParam string     `yaml:"maxParam" json:"maxParam,omitempty"`
}

// Step is one page of the create wizard.
type Step struct {
	Title  string   `yaml:"title" json:"title"`
	Fields []string `yaml:"fields" json:"fields,omitempty"`
	Images bool     `yaml:"images" json:"images,omitempty"`
}

// Kind is the descriptor of one resource kind.
type Kind struct {
	Name          string   `yaml:"name" json:"name"`
	Path          string   `yaml:"path" json:"path"`
	Collection    string   `yaml:"collection" json:"collection"`
	Singular      string   `yaml:"singular" json:"singular"`
	Label         string   `yaml:"label" json:"label"`
	MediaDir      string   `yaml:"mediaDir" json:"mediaDir"`
	MaxImages     int      `yaml:"maxImages" json:"maxImages"`
	Fields        []Field  `yaml:"fields" json:"fields"`
	SearchFields  []string `yaml:"searchFields" json:"searchFields"`
	Filters       []Filter `yaml:"filters" json:"filters"`
	SummaryFields []string `yaml:"summaryFields" json:"summaryFields"`
	Steps         []Step   `yaml:"steps" json:"steps"`

	byName map[string]*Field
}

// Field returns the named field descriptor.
func (k *Kind) Field(name string) (*Field, bool) {
	f, ok := k.byName[name]
	return f, ok
}

// Registry is the parsed set of kinds plus their shared enumerations.
type Registry struct {
	Enums map[string][]string `yaml:"enums" json:"enums"`
	Kinds []*Kind             `yaml:"kinds" json:"kinds"`

	byName map[string]*Kind
	byPath map[string]*Kind
}

var (
	// ErrUnknownKind is returned by Lookup for names that match no kind.
	ErrUnknownKind = errors.New("unknown resource kind")

	identPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	pathPattern  = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

var reservedParams = map[string]bool{"page": true, "limit": true, "search": true}

// Default parses the embedded kinds document.
func Default() (*Registry, error) {
	return Load(defaultDocument)
}

// MustDefault is Default that panics on error. The embedded document is
// covered by tests, so a failure here is a build defect.
func MustDefault() *Registry {
	reg, err := Default()
	if err != nil {
		panic(err)
	}
	return reg
}

// Load parses and validates a kinds document.
func Load(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse kinds document: %w", err)
	}
	if len(reg.Kinds) == 0 {
		return nil, errors.New("kinds document declares no kinds")
	}

	reg.byName = make(map[string]*Kind, len(reg.Kinds))
	reg.byPath = make(map[string]*Kind, len(reg.Kinds))
	for _, k := range reg.Kinds {
		if err := reg.prepare(k); err != nil {
			return nil, fmt.Errorf("kind %q: %w", k.Name, err)
		}
		if _, dup := reg.byName[k.Name]; dup {
			return nil, fmt.Errorf("duplicate kind name %q", k.Name)
		}
		if _, dup := reg.byPath[k.Path]; dup {
			return nil, fmt.Errorf("duplicate kind path %q", k.Path)
		}
		reg.byName[k.Name] = k
		reg.byPath[k.Path] = k
	}
	return &reg, nil
}

// Lookup finds a kind by name ("item") or by path ("items").
func (r *Registry) Lookup(name string) (*Kind, error) {
	if k, ok := r.byName[name]; ok {
		return k, nil
	}
	if k, ok := r.byPath[name]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, name)
}

func (r *Registry) prepare(k *Kind) error {
	if !identPattern.MatchString(k.Name) {
		return errors.New("name must be an identifier")
	}
	if !pathPattern.MatchString(k.Path) {
		return fmt.Errorf("invalid path %q", k.Path)
	}
	if k.Collection == "" {
		k.Collection = k.Path
	}
	if k.Singular == "" {
		k.Singular = k.Name
	}
	if k.MediaDir == "" {
		k.MediaDir = k.Path
	}
	if !pathPattern.MatchString(k.MediaDir) {
		return fmt.Errorf("invalid media directory %q", k.MediaDir)
	}
	if k.MaxImages <= 0 {
		return errors.New("maxImages must be positive")
	}

	k.byName = make(map[string]*Field, len(k.Fields))
	for i := range k.Fields {
		f := &k.Fields[i]
		if !identPattern.MatchString(f.Name) {
			return fmt.Errorf("field name %q must be an identifier", f.Name)
		}
		if _, dup := k.byName[f.Name]; dup {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		switch f.Type {
		case TypeString, TypeText, TypeNumber, TypeInteger, TypeBoolean, TypeObjects:
		case TypeEnum, TypeList:
			if f.Enum == "" && f.Type == TypeEnum {
				return fmt.Errorf("field %q: enum type needs an enum reference", f.Name)
			}
		default:
			return fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
		}
		if f.Enum != "" {
			opts, ok := r.Enums[f.Enum]
			if !ok || len(opts) == 0 {
				return fmt.Errorf("field %q: unknown enum %q", f.Name, f.Enum)
			}
			f.Options = opts
		}
		if f.Label == "" {
			f.Label = f.Name
		}
		k.byName[f.Name] = f
	}

	for _, name := range k.SearchFields {
		f, ok := k.byName[name]
		if !ok {
			return fmt.Errorf("search field %q is not declared", name)
		}
		if f.Type != TypeString && f.Type != TypeText {
			return fmt.Errorf("search field %q must be textual", name)
		}
	}
	for _, name := range k.SummaryFields {
		if _, ok := k.byName[name]; !ok {
			return fmt.Errorf("summary field %q is not declared", name)
		}
	}

	params := make(map[string]bool)
	claim := func(p string) error {
		if p == "" {
			return errors.New("filter parameter name is empty")
		}
		if reservedParams[p] || params[p] {
			return fmt.Errorf("filter parameter %q is reserved or duplicated", p)
		}
		params[p] = true
		return nil
	}
	for _, flt := range k.Filters {
		f, ok := k.byName[flt.Field]
		if !ok {
			return fmt.Errorf("filter field %q is not declared", flt.Field)
		}
		switch flt.Mode {
		case FilterEquals:
			if f.Type == TypeList || f.Type == TypeObjects {
				return fmt.Errorf("equals filter on %q needs a scalar field", flt.Field)
			}
			if err := claim(flt.Param); err != nil {
				return err
			}
		case FilterContains:
			if f.Type != TypeList {
				return fmt.Errorf("contains filter on %q needs a list field", flt.Field)
			}
			if err := claim(flt.Param); err != nil {
				return err
			}
		case FilterRange:
			if !f.Numeric() {
				return fmt.Errorf("range filter on %q needs a numeric field", flt.Field)
			}
			if err := claim(flt.MinParam); err != nil {
				return err
			}
			if err := claim(flt.MaxParam); err != nil {
				return err
			}
		default:
			return fmt.Errorf("filter on %q: unknown mode %q", flt.Field, flt.Mode)
		}
	}

	if len(k.Steps) == 0 {
		return errors.New("declares no form steps")
	}
	images := 0
	for _, st := range k.Steps {
		if st.Images {
			images++
		}
		for _, name := range st.Fields {
			if _, ok := k.byName[name]; !ok {
				return fmt.Errorf("step %q references undeclared field %q", st.Title, name)
			}
		}
	}
	if images > 1 {
		return errors.New("at most one step may collect images")
	}
	return nil
}
