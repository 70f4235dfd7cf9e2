package notice

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Level selects how a notice is styled
type Level int

const (
	LevelWarning Level = iota
	LevelError
	LevelSuccess
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "warning"
	}
}

// Notice is a message on the board
type Notice struct {
	ID      uint64
	Level   Level
	Message string
	At      time.Time
}

// Board shows at most one notice at a time
type Board struct {
	clock clockwork.Clock

	mu        sync.Mutex
	current   *Notice
	nextID    uint64
	timer     clockwork.Timer
	listeners []func(Notice, bool)
}

// NewBoard creates an empty board. clock may be nil.
func NewBoard(clock clockwork.Clock) *Board {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Board{clock: clock}
}

// OnChange registers fn to receive the current notice, with false when the board clears
func (b *Board) OnChange(fn func(Notice, bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Show displays msg until it is replaced or dismissed. An empty msg clears
// the board and returns 0.
func (b *Board) Show(level Level, msg string) uint64 {
	return b.show(level, msg, 0)
}

// ShowFor displays msg and dismisses it after d
func (b *Board) ShowFor(level Level, msg string, d time.Duration) uint64 {
	return b.show(level, msg, d)
}

func (b *Board) show(level Level, msg string, d time.Duration) uint64 {
	if msg == "" {
		b.Clear()
		return 0
	}

	b.mu.Lock()
	b.stopTimerLocked()
	b.nextID++
	n := Notice{ID: b.nextID, Level: level, Message: msg, At: b.clock.Now()}
	b.current = &n
	if d > 0 {
		id := n.ID
		b.timer = b.clock.AfterFunc(d, func() { b.Dismiss(id) })
	}
	b.unlockAndNotify()
	return n.ID
}

// Dismiss clears the board if id is still the current notice
func (b *Board) Dismiss(id uint64) bool {
	b.mu.Lock()
	if b.current == nil || b.current.ID != id {
		b.mu.Unlock()
		return false
	}
	b.stopTimerLocked()
	b.current = nil
	b.unlockAndNotify()
	return true
}

// Clear removes whatever notice is shown
func (b *Board) Clear() {
	b.mu.Lock()
	if b.current == nil {
		b.mu.Unlock()
		return
	}
	b.stopTimerLocked()
	b.current = nil
	b.unlockAndNotify()
}

// Current returns the notice on the board
func (b *Board) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notice{}, false
	}
	return *b.current, true
}

func (b *Board) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *Board) unlockAndNotify() {
	var n Notice
	ok := b.current != nil
	if ok {
		n = *b.current
	}
	listeners := append([]func(Notice, bool){}, b.listeners...)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(n, ok)
	}
}
