package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"goout/internal/model"
	"goout/internal/schema"
)

// ErrUnknownFilter rejects parameters the kind does not declare.
var ErrUnknownFilter = errors.New("unknown filter parameter")

// Lister is the part of *Client a Browser needs.
type Lister interface {
	List(ctx context.Context, kind *schema.Kind, q url.Values) (*Page, error)
}

// Browser keeps the visible page of one kind in step with its filter state.
// Each change issues one list request and replaces the page with its answer;
// a failed request leaves an empty page and the error. Not safe for
// concurrent use.
type Browser struct {
	lister     Lister
	kind       *schema.Kind
	publicBase string

	state  FilterState
	page   Page
	err    error
	detail *DetailView
}

func NewBrowser(l Lister, kind *schema.Kind, publicBase string) *Browser {
	return &Browser{
		lister:     l,
		kind:       kind,
		publicBase: publicBase,
		state:      NewFilterState(),
		page:       Page{Items: []model.Resource{}},
	}
}

func (b *Browser) State() FilterState { return b.state }

func (b *Browser) Items() []model.Resource { return b.page.Items }

func (b *Browser) Pagination() model.Pagination { return b.page.Pagination }

// Err is the error of the last round trip, if it failed.
func (b *Browser) Err() error { return b.err }

// Apply replaces the state and fetches the matching page.
func (b *Browser) Apply(ctx context.Context, s FilterState) error {
	b.state = s
	b.detail = nil

	p, err := b.lister.List(ctx, b.kind, s.Query())
	if err != nil {
		b.page = Page{Items: []model.Resource{}}
		b.err = err
		return err
	}
	if p.Items == nil {
		p.Items = []model.Resource{}
	}
	b.page = *p
	b.err = nil
	return nil
}

func (b *Browser) Refresh(ctx context.Context) error {
	return b.Apply(ctx, b.state)
}

func (b *Browser) Search(ctx context.Context, q string) error {
	return b.Apply(ctx, b.state.WithSearch(q))
}

// SetFilter changes one declared filter parameter; range filters accept
// their min and max parameters.
func (b *Browser) SetFilter(ctx context.Context, param, value string) error {
	if !slices.Contains(FilterParams(b.kind), param) {
		return fmt.Errorf("%w %q for %s", ErrUnknownFilter, param, b.kind.Name)
	}
	return b.Apply(ctx, b.state.With(param, value))
}

func (b *Browser) ClearFilters(ctx context.Context) error {
	return b.Apply(ctx, b.state.Clear())
}

func (b *Browser) GoToPage(ctx context.Context, page int) error {
	return b.Apply(ctx, b.state.WithPage(page))
}

// NextPage is a no-op on the last page.
func (b *Browser) NextPage(ctx context.Context) error {
	if !b.page.Pagination.HasNext() {
		return nil
	}
	return b.GoToPage(ctx, b.page.Pagination.CurrentPage+1)
}

// Open shows the i-th visible record without another request.
func (b *Browser) Open(i int) (*DetailView, error) {
	if i < 0 || i >= len(b.page.Items) {
		return nil, fmt.Errorf("no record at position %d", i)
	}
	b.detail = NewDetailView(b.kind, b.page.Items[i], b.publicBase)
	return b.detail, nil
}

// Detail is the open view, or nil.
func (b *Browser) Detail() *DetailView { return b.detail }

func (b *Browser) Close() { b.detail = nil }

// FilterParams lists the query parameters kind accepts besides page, limit
// and search.
func FilterParams(kind *schema.Kind) []string {
	var out []string
	for _, f := range kind.Filters {
		if f.Mode == schema.FilterRange {
			out = append(out, f.MinParam, f.MaxParam)
			continue
		}
		out = append(out, f.Param)
	}
	return out
}
