// Package carousel is the cyclic image pager of the detail view.
package carousel

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned by GoTo for indexes outside 0..N-1.
var ErrOutOfRange = errors.New("image index out of range")

// Carousel cycles over n images. With no images it stays in the
// placeholder state and navigation is a no-op.
type Carousel struct {
	n     int
	index int
}

// New starts at index 0. Negative n is treated as 0.
func New(n int) *Carousel {
	if n < 0 {
		n = 0
	}
	return &Carousel{n: n}
}

func (c *Carousel) Len() int { return c.n }

func (c *Carousel) Index() int { return c.index }

// Placeholder reports the no-image state.
func (c *Carousel) Placeholder() bool { return c.n == 0 }

// Next advances with wrap-around and returns the new index.
func (c *Carousel) Next() int {
	if c.n > 0 {
		c.index = (c.index + 1) % c.n
	}
	return c.index
}

// Prev steps back with wrap-around and returns the new index.
func (c *Carousel) Prev() int {
	if c.n > 0 {
		if c.index == 0 {
			c.index = c.n - 1
		} else {
			c.index--
		}
	}
	return c.index
}

// GoTo jumps to k; the index is unchanged on error.
func (c *Carousel) GoTo(k int) error {
	if k < 0 || k >= c.n {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, k, c.n)
	}
	c.index = k
	return nil
}

// Reset returns to the first image.
func (c *Carousel) Reset() { c.index = 0 }
