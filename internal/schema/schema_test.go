package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		maxImages int
		search    []string
	}{
		{"item", "items", 5, []string{"title", "description"}},
		{"guide", "guides", 5, []string{"name", "bio"}},
		{"hotel", "hotels", 10, []string{"propertyName", "description", "location"}},
		{"destination", "destinations", 5, []string{"name", "description", "location"}},
		{"package", "packages", 10, []string{"packageName", "overview", "destination"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := reg.Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.path, k.Path)
			assert.Equal(t, tt.maxImages, k.MaxImages)
			assert.Equal(t, tt.search, k.SearchFields)

			byPath, err := reg.Lookup(tt.path)
			require.NoError(t, err)
			assert.Same(t, k, byPath)
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	reg := MustDefault()
	_, err := reg.Lookup("boats")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestLoad_ResolvesEnums(t *testing.T) {
	reg := MustDefault()
	k, _ := reg.Lookup("item")
	f, ok := k.Field("category")
	require.True(t, ok)
	assert.Len(t, f.Options, 12)
	assert.Contains(t, f.Options, "Camping Gear")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "no kinds",
			doc:  "enums: {}\n",
			want: "declares no kinds",
		},
		{
			name: "bad field name",
			doc: `kinds:
  - {name: boat, path: boats, maxImages: 1, fields: [{name: "a'b", type: string}]}`,
			want: "must be an identifier",
		},
		{
			name: "unknown enum",
			doc: `kinds:
  - {name: boat, path: boats, maxImages: 1, fields: [{name: hull, type: enum, enum: hulls}]}`,
			want: "unknown enum",
		},
		{
			name: "range on text",
			doc: `kinds:
  - name: boat
    path: boats
    maxImages: 1
    fields: [{name: hull, type: string}]
    filters: [{field: hull, mode: range, minParam: minHull, maxParam: maxHull}]`,
			want: "needs a numeric field",
		},
		{
			name: "reserved parameter",
			doc: `kinds:
  - name: boat
    path: boats
    maxImages: 1
    fields: [{name: hull, type: string}]
    filters: [{param: page, field: hull, mode: equals}]`,
			want: "reserved or duplicated",
		},
		{
			name: "duplicate path",
			doc: `kinds:
  - {name: boat, path: boats, maxImages: 1, steps: [{title: Photos, images: true}]}
  - {name: ship, path: boats, maxImages: 1, steps: [{title: Photos, images: true}]}`,
			want: "duplicate kind path",
		},
		{
			name: "no form steps",
			doc: `kinds:
  - name: boat
    path: boats
    maxImages: 1
    fields: [{name: hull, type: string}]`,
			want: "declares no form steps",
		},
		{
			name: "step with unknown field",
			doc: `kinds:
  - name: boat
    path: boats
    maxImages: 1
    steps: [{title: One, fields: [hull]}]`,
			want: "undeclared field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
