package reveal

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Glyph replaces every hidden character
const Glyph = "●"

// DefaultWindow is how long the last character stays visible
const DefaultWindow = 700 * time.Millisecond

// Mask tracks what the password display shows. At most one reveal timer is
// live at a time.
type Mask struct {
	clock  clockwork.Clock
	window time.Duration

	mu        sync.Mutex
	length    int
	rendered  string
	forced    bool
	timer     clockwork.Timer
	gen       uint64
	listeners []func(string)
}

// New creates an empty mask. clock may be nil; window <= 0 uses DefaultWindow.
func New(clock clockwork.Clock, window time.Duration) *Mask {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Mask{clock: clock, window: window}
}

// OnRender registers fn to receive every rendered string
func (m *Mask) OnRender(fn func(string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Update renders a buffer of length whose newest character is last
func (m *Mask) Update(length int, last rune) {
	m.mu.Lock()
	m.cancelLocked()
	m.length = length

	switch {
	case length <= 0:
		m.length = 0
		m.renderLocked("")
	case m.forced:
		m.renderLocked(full(length))
	default:
		m.renderLocked(strings.Repeat(Glyph, length-1) + string(last))
		gen := m.gen
		m.timer = m.clock.AfterFunc(m.window, func() { m.collapse(gen) })
	}
	m.unlockAndNotify()
}

// collapse hides the revealed character unless a newer update superseded it
func (m *Mask) collapse(gen uint64) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.renderLocked(full(m.length))
	m.unlockAndNotify()
}

// ForceMask hides every character and keeps them hidden until Release
func (m *Mask) ForceMask() {
	m.mu.Lock()
	m.cancelLocked()
	m.forced = true
	m.renderLocked(full(m.length))
	m.unlockAndNotify()
}

// Release ends a forced mask. The display stays fully masked.
func (m *Mask) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forced = false
}

// Reset cancels any reveal and renders the empty display
func (m *Mask) Reset() {
	m.mu.Lock()
	m.cancelLocked()
	m.length = 0
	m.renderLocked("")
	m.unlockAndNotify()
}

// Rendered returns the current display
func (m *Mask) Rendered() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rendered
}

// Forced reports whether a forced mask is in effect
func (m *Mask) Forced() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forced
}

// Pending reports whether a reveal timer is armed
func (m *Mask) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer != nil
}

func (m *Mask) cancelLocked() {
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Mask) renderLocked(s string) {
	m.rendered = s
}

// unlockAndNotify releases m.mu, then calls listeners with the rendered value
func (m *Mask) unlockAndNotify() {
	rendered := m.rendered
	listeners := append([]func(string){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(rendered)
	}
}

func full(n int) string {
	return strings.Repeat(Glyph, n)
}
