package client

import (
	"maps"
	"net/url"
	"strconv"
	"strings"
)

// FilterState is the browse form. It is a value: every With method returns a
// new state and resets Page to 1, except WithPage.
type FilterState struct {
	Search string
	Values map[string]string
	Page   int
	Limit  int
}

// NewFilterState is the empty form on page 1 with the server's default limit.
func NewFilterState() FilterState {
	return FilterState{Page: 1}
}

func (s FilterState) WithSearch(q string) FilterState {
	s.Search = q
	s.Page = 1
	return s
}

// With sets one filter parameter; an empty value removes it.
func (s FilterState) With(param, value string) FilterState {
	vals := maps.Clone(s.Values)
	if vals == nil {
		vals = map[string]string{}
	}
	if strings.TrimSpace(value) == "" {
		delete(vals, param)
	} else {
		vals[param] = value
	}
	s.Values = vals
	s.Page = 1
	return s
}

func (s FilterState) WithLimit(limit int) FilterState {
	s.Limit = limit
	s.Page = 1
	return s
}

func (s FilterState) WithPage(page int) FilterState {
	s.Page = page
	return s
}

// Clear drops search and every filter but keeps the limit.
func (s FilterState) Clear() FilterState {
	return FilterState{Page: 1, Limit: s.Limit}
}

// Query derives the list query. Empty values are omitted, so the empty state
// asks for everything.
func (s FilterState) Query() url.Values {
	q := url.Values{}
	if v := strings.TrimSpace(s.Search); v != "" {
		q.Set("search", v)
	}
	for k, v := range s.Values {
		if v = strings.TrimSpace(v); v != "" {
			q.Set(k, v)
		}
	}
	if s.Page > 0 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.Limit > 0 {
		q.Set("limit", strconv.Itoa(s.Limit))
	}
	return q
}
