package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItem() map[string]string {
	return map[string]string{
		"title":        "Tent",
		"description":  "Four person tent",
		"category":     "Camping Gear",
		"price":        "1500",
		"rentalType":   "rent",
		"location":     "Kandy",
		"contactPhone": "0771234567",
	}
}

func TestParse_Item(t *testing.T) {
	k, err := MustDefault().Lookup("item")
	require.NoError(t, err)

	attrs, errs := k.Parse(validItem())
	require.Empty(t, errs)
	assert.Equal(t, "Tent", attrs["title"])
	assert.Equal(t, 1500.0, attrs["price"])
	assert.Equal(t, "rent", attrs["rentalType"])
	assert.NotContains(t, attrs, "contactEmail")
}

func TestParse_ItemErrors(t *testing.T) {
	k, _ := MustDefault().Lookup("item")

	tests := []struct {
		name  string
		edit  func(v map[string]string)
		field string
	}{
		{"missing title", func(v map[string]string) { delete(v, "title") }, "title"},
		{"blank location", func(v map[string]string) { v["location"] = "   " }, "location"},
		{"non numeric price", func(v map[string]string) { v["price"] = "abc" }, "price"},
		{"NaN price", func(v map[string]string) { v["price"] = "NaN" }, "price"},
		{"infinite price", func(v map[string]string) { v["price"] = "+Inf" }, "price"},
		{"negative price", func(v map[string]string) { v["price"] = "-1" }, "price"},
		{"unknown category", func(v map[string]string) { v["category"] = "Boats" }, "category"},
		{"bad email", func(v map[string]string) { v["contactEmail"] = "not-an-email" }, "contactEmail"},
		{"long title", func(v map[string]string) {
			b := make([]byte, 101)
			for i := range b {
				b[i] = 'x'
			}
			v["title"] = string(b)
		}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validItem()
			tt.edit(v)
			_, errs := k.Parse(v)
			require.Len(t, errs, 1)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestParse_Default(t *testing.T) {
	k, _ := MustDefault().Lookup("item")
	v := validItem()
	delete(v, "rentalType")

	attrs, errs := k.Parse(v)
	require.Empty(t, errs)
	assert.Equal(t, "sell", attrs["rentalType"])
}

func TestParse_GuideLists(t *testing.T) {
	k, _ := MustDefault().Lookup("guide")
	base := map[string]string{
		"name":         "Nimal",
		"bio":          "Hill country guide",
		"specialties":  `["Hiking","Trekking"]`,
		"languages":    `["English","Sinhala"]`,
		"experience":   "7",
		"rate":         "45.5",
		"contactPhone": "0711111111",
		"destinations": `[{"name":"Ella Rock","type":"Hiking"}]`,
	}

	attrs, errs := k.Parse(base)
	require.Empty(t, errs)
	assert.Equal(t, []string{"Hiking", "Trekking"}, attrs["specialties"])
	assert.Equal(t, int64(7), attrs["experience"])
	assert.Equal(t, 45.5, attrs["rate"])

	t.Run("empty specialties", func(t *testing.T) {
		v := copyValues(base)
		v["specialties"] = "[]"
		_, errs := k.Parse(v)
		assert.Contains(t, errs, "specialties")
	})

	t.Run("malformed json", func(t *testing.T) {
		v := copyValues(base)
		v["languages"] = `["English"`
		_, errs := k.Parse(v)
		assert.Equal(t, "Languages must be a JSON array of strings", errs["languages"])
	})

	t.Run("fractional experience", func(t *testing.T) {
		v := copyValues(base)
		v["experience"] = "2.5"
		_, errs := k.Parse(v)
		assert.Contains(t, errs, "experience")
	})

	t.Run("unknown specialty", func(t *testing.T) {
		v := copyValues(base)
		v["specialties"] = `["Skydiving"]`
		_, errs := k.Parse(v)
		assert.Contains(t, errs, "specialties")
	})
}

func TestParse_HotelBooleansAndObjects(t *testing.T) {
	k, _ := MustDefault().Lookup("hotel")
	attrs, errs := k.Parse(map[string]string{
		"propertyName": "Lake View",
		"propertyType": "resort",
		"description":  "By the lake",
		"location":     "Kandy",
		"hasPool":      "true",
		"amenities":    `["wifi","pool"]`,
		"rooms":        `[{"type":"Suite","price":120,"capacity":2}]`,
	})
	require.Empty(t, errs)
	assert.Equal(t, true, attrs["hasPool"])
	assert.Equal(t, 3.0, attrs["stars"])
	rooms := attrs["rooms"].([]map[string]any)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Suite", rooms[0]["type"])

	_, errs = k.Parse(map[string]string{"stars": "6", "hasPool": "maybe"})
	assert.Contains(t, errs, "stars")
	assert.Contains(t, errs, "hasPool")
	assert.Contains(t, errs, "propertyName")
}

func TestValidate_Subset(t *testing.T) {
	k, _ := MustDefault().Lookup("item")
	errs := k.Validate(map[string]string{"title": "Tent"}, "title", "description")
	assert.Equal(t, FieldErrors{"description": "Description is required"}, errs)

	errs = k.Validate(map[string]string{"title": "Tent"}, "title")
	assert.Empty(t, errs)
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{}
	errs.Add("b", "second")
	errs.Add("a", "first")
	errs.Add("a", "ignored")
	assert.Equal(t, "invalid fields: a: first; b: second", errs.Error())
}

func copyValues(v map[string]string) map[string]string {
	out := make(map[string]string, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}
