package client

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"goout/internal/carousel"
	"goout/internal/model"
	"goout/internal/schema"
	"goout/internal/storage"
)

// Attribute is one labelled value of the detail view, in declaration order.
type Attribute struct {
	Name  string
	Label string
	Value string
}

// DetailView shows one already fetched record with its image carousel.
type DetailView struct {
	Record   model.Resource
	Kind     *schema.Kind
	Carousel *carousel.Carousel
	urls     []string
}

// NewDetailView resolves image paths against publicBase.
func NewDetailView(kind *schema.Kind, rec model.Resource, publicBase string) *DetailView {
	urls := make([]string, 0, len(rec.Images))
	for _, p := range rec.Images {
		if u := storage.PublicURL(publicBase, p); u != "" {
			urls = append(urls, u)
		}
	}
	return &DetailView{
		Record:   rec,
		Kind:     kind,
		Carousel: carousel.New(len(urls)),
		urls:     urls,
	}
}

// ImageURLs returns a copy of every resolved image URL.
func (d *DetailView) ImageURLs() []string {
	return append([]string(nil), d.urls...)
}

// CurrentImage is the URL under the carousel index; false in the placeholder state.
func (d *DetailView) CurrentImage() (string, bool) {
	if d.Carousel.Placeholder() {
		return "", false
	}
	return d.urls[d.Carousel.Index()], true
}

// Attributes lists the kind's fields that are present on the record.
func (d *DetailView) Attributes() []Attribute {
	out := make([]Attribute, 0, len(d.Kind.Fields))
	for _, f := range d.Kind.Fields {
		v, ok := d.Record.Attributes[f.Name]
		if !ok || v == nil {
			continue
		}
		out = append(out, Attribute{Name: f.Name, Label: f.Label, Value: display(v)})
	}
	return out
}

func display(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, display(e))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		parts := make([]string, 0, len(t))
		for _, k := range sortedKeys(t) {
			parts = append(parts, k+": "+display(t[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(t)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
