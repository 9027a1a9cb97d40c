package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_MarshalJSON(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := Resource{
		ID:      "abc",
		Kind:    "item",
		OwnerID: "u1",
		Attributes: map[string]any{
			"title": "Tent",
			"price": 1500.0,
			"id":    "spoofed",
		},
		CreatedAt: created,
		UpdatedAt: created,
	}

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "abc", got["id"])
	assert.Equal(t, "u1", got["userId"])
	assert.Equal(t, "Tent", got["title"])
	assert.Equal(t, 1500.0, got["price"])
	assert.Equal(t, []any{}, got["images"])
	assert.NotContains(t, got, "Kind")
}

func TestResource_UnmarshalJSON(t *testing.T) {
	body := `{"id":"abc","userId":"u1","title":"Tent","images":["uploads/items/1.jpg"],"createdAt":"2026-01-02T03:04:05Z"}`

	var r Resource
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	assert.Equal(t, "abc", r.ID)
	assert.Equal(t, "u1", r.OwnerID)
	assert.Equal(t, []string{"uploads/items/1.jpg"}, r.Images)
	assert.Equal(t, "Tent", r.String("title"))
	assert.Equal(t, "", r.String("missing"))
	assert.Equal(t, 2026, r.CreatedAt.Year())
}
