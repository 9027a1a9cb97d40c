package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarousel_NextWrapsAfterN(t *testing.T) {
	for n := 1; n <= 10; n++ {
		c := New(n)
		for i := 0; i < n; i++ {
			c.Next()
		}
		assert.Equal(t, 0, c.Index(), "n=%d", n)
	}
}

func TestCarousel_PrevFromZero(t *testing.T) {
	for n := 1; n <= 10; n++ {
		c := New(n)
		assert.Equal(t, n-1, c.Prev(), "n=%d", n)
	}
}

func TestCarousel_Sequence(t *testing.T) {
	c := New(3)
	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 2, c.Next())
	assert.Equal(t, 0, c.Next())
	assert.Equal(t, 2, c.Prev())
	assert.Equal(t, 1, c.Prev())
	assert.False(t, c.Placeholder())
	assert.Equal(t, 3, c.Len())
}

func TestCarousel_GoTo(t *testing.T) {
	c := New(4)
	require.NoError(t, c.GoTo(3))
	assert.Equal(t, 3, c.Index())

	for _, k := range []int{-1, 4, 100} {
		err := c.GoTo(k)
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.Equal(t, 3, c.Index())
	}

	c.Reset()
	assert.Equal(t, 0, c.Index())
}

func TestCarousel_Empty(t *testing.T) {
	for _, n := range []int{0, -3} {
		c := New(n)
		assert.True(t, c.Placeholder())
		assert.Equal(t, 0, c.Next())
		assert.Equal(t, 0, c.Prev())
		assert.ErrorIs(t, c.GoTo(0), ErrOutOfRange)
	}
}
