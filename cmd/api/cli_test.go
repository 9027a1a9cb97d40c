package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goout/internal/model"
	"goout/internal/schema"
)

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"category=Vehicles", "title=a=b", " price =10"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"category": "Vehicles", "title": "a=b", "price": "10"}, got)

	_, err = parsePairs([]string{"novalue"})
	assert.Error(t, err)
	_, err = parsePairs([]string{"=x"})
	assert.Error(t, err)
}

func TestLookupKind(t *testing.T) {
	k, err := lookupKind("hotels")
	require.NoError(t, err)
	assert.Equal(t, "hotel", k.Name)

	k, err = lookupKind("package")
	require.NoError(t, err)
	assert.Equal(t, "packages", k.Path)

	_, err = lookupKind("boats")
	assert.ErrorIs(t, err, schema.ErrUnknownKind)
}

func TestFillWizard(t *testing.T) {
	kind, err := lookupKind("item")
	require.NoError(t, err)

	t.Run("missing value reported on its step", func(t *testing.T) {
		_, err := fillWizard(kind, map[string]string{
			"title": "Tent", "description": "d", "category": "Camping Gear",
		}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "step 2 (Pricing)")
		assert.Contains(t, err.Error(), "price")
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := fillWizard(kind, map[string]string{"colour": "red"}, nil)
		assert.Error(t, err)
	})

	t.Run("complete", func(t *testing.T) {
		dir := t.TempDir()
		img := filepath.Join(dir, "tent.JPG")
		require.NoError(t, os.WriteFile(img, []byte("jpeg"), 0o600))

		draft, err := fillWizard(kind, map[string]string{
			"title": "Tent", "description": "d", "category": "Camping Gear", "price": "1500",
			"rentalType": "rent", "location": "Ella", "contactPhone": "077",
		}, []string{img})
		require.NoError(t, err)
		assert.Equal(t, "item", draft.Kind())
		require.Len(t, draft.Images(), 1)
		assert.Equal(t, "tent.JPG", draft.Images()[0].Filename)
		assert.Equal(t, "image/jpeg", draft.Images()[0].ContentType)
	})
}

func TestReadImage_Missing(t *testing.T) {
	_, err := readImage(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestPrintPage(t *testing.T) {
	kind, err := lookupKind("item")
	require.NoError(t, err)

	var buf bytes.Buffer
	printPage(&buf, kind, nil, model.NewPagination(0, 1, 12))
	assert.Equal(t, "No items found.\n", buf.String())

	buf.Reset()
	printPage(&buf, kind, []model.Resource{
		{ID: "1", Attributes: map[string]any{"title": "Van", "price": 2500.0}, Images: []string{"a"}},
	}, model.NewPagination(13, 1, 12))
	out := buf.String()
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Van")
	assert.Contains(t, out, "2500")
	assert.Contains(t, out, "page 1 of 2, 13 matching")
}

func TestVersionCommand(t *testing.T) {
	root := newRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "dev\n", buf.String())
}
