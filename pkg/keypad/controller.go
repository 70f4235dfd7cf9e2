package keypad

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoSuchKey is returned by ActivateAt for a position outside the layout
var ErrNoSuchKey = errors.New("no key at position")

// Masker renders the password buffer
type Masker interface {
	Update(length int, last rune)
	Reset()
}

// Controller owns the layout and the password buffer
type Controller struct {
	gen    *Generator
	masker Masker

	// renderMu orders masker calls; mu guards state and is never held across them
	renderMu  sync.Mutex
	mu        sync.Mutex
	layout    Layout
	buf       []rune
	listeners []func(Layout)
}

// NewController generates the first layout. masker may be nil.
func NewController(gen *Generator, masker Masker) *Controller {
	if gen == nil {
		gen = NewGenerator(nil)
	}
	return &Controller{
		gen:    gen,
		masker: masker,
		layout: gen.Generate(),
	}
}

// OnLayoutChange registers fn to receive each new layout after a shuffle
func (c *Controller) OnLayoutChange(fn func(Layout)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Activate applies a key press
func (c *Controller) Activate(t Token) {
	switch t.Kind {
	case KindShuffle:
		c.shuffle()
	case KindBackspace:
		c.edit(func() {
			if len(c.buf) > 0 {
				c.buf = c.buf[:len(c.buf)-1]
			}
		})
	default:
		c.edit(func() { c.buf = append(c.buf, t.Char) })
	}
}

// edit applies fn to the buffer and pushes the result to the masker after
// releasing mu, so masker listeners may read the controller.
func (c *Controller) edit(fn func()) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	fn()
	n := len(c.buf)
	var last rune
	if n > 0 {
		last = c.buf[n-1]
	}
	c.mu.Unlock()

	if c.masker != nil {
		c.masker.Update(n, last)
	}
}

// ActivateAt presses the key at index in the current layout
func (c *Controller) ActivateAt(index int) (Token, error) {
	c.mu.Lock()
	if index < 0 || index >= len(c.layout) {
		c.mu.Unlock()
		return Token{}, fmt.Errorf("%w: %d", ErrNoSuchKey, index)
	}
	t := c.layout[index]
	c.mu.Unlock()

	c.Activate(t)
	return t, nil
}

func (c *Controller) shuffle() {
	layout := c.gen.Generate()

	c.mu.Lock()
	c.layout = layout
	listeners := append([]func(Layout){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(append(Layout(nil), layout...))
	}
}

// Clear empties the buffer
func (c *Controller) Clear() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.buf = c.buf[:0]
	c.mu.Unlock()

	if c.masker != nil {
		c.masker.Reset()
	}
}

// HandleKeystroke swallows physical keyboard input. It always reports the key
// as suppressed and never edits the buffer.
func (c *Controller) HandleKeystroke(key string) bool {
	return true
}

// Len returns the buffer length
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// Layout returns a copy of the current layout
func (c *Controller) Layout() Layout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(Layout(nil), c.layout...)
}

// Password returns the buffer contents for submission
func (c *Controller) Password() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.buf)
}

// String never includes the buffer
func (c *Controller) String() string {
	return fmt.Sprintf("keypad.Controller{len: %d}", c.Len())
}

// GoString keeps %#v from printing the buffer
func (c *Controller) GoString() string {
	return c.String()
}
