package anomaly

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/platinummonkey/peekguard/pkg/eventlog"
	"github.com/platinummonkey/peekguard/pkg/notice"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

// Kind names an anomaly signal; it becomes the blur event's reason
type Kind string

const (
	KindTabSwitch  Kind = "tab_switch"
	KindWindowBlur Kind = "window_blur"
	KindFastMouse  Kind = "fast_mouse"
)

// NoticePrefix starts the notice shown while the mask is forced
const NoticePrefix = "Password hidden for security: "

const (
	DefaultThreshold = 1.5 // px/ms
	DefaultCooldown  = 2 * time.Second
)

// Signal is a fired anomaly
type Signal struct {
	Kind Kind
	At   time.Time
}

// Sample is one pointer position
type Sample struct {
	X, Y float64
	At   time.Time
}

// Masker hides the password display
type Masker interface {
	ForceMask()
	Release()
}

// Notifier shows and dismisses notices
type Notifier interface {
	Show(level notice.Level, msg string) uint64
	Dismiss(id uint64) bool
}

// Emitter sends security events without reporting failures
type Emitter interface {
	Emit(kind eventlog.Kind, details eventlog.Details)
}

// Config tunes the detector
type Config struct {
	Threshold float64
	Cooldown  time.Duration
}

// Detector turns client signals into mask, notice and blur events
type Detector struct {
	clock   clockwork.Clock
	cfg     Config
	masker  Masker
	notices Notifier
	emitter Emitter
	logger  *observability.Logger

	// reactMu orders masker and notice calls; mu is never held across them
	reactMu   sync.Mutex
	mu        sync.Mutex
	last      *Sample
	cooldown  clockwork.Timer
	gen       uint64
	noticeID  uint64
	listeners []func(Signal)
}

// NewDetector wires a detector. notices, emitter and logger may be nil.
func NewDetector(clock clockwork.Clock, cfg Config, masker Masker, notices Notifier, emitter Emitter, logger *observability.Logger) *Detector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Detector{
		clock:   clock,
		cfg:     cfg,
		masker:  masker,
		notices: notices,
		emitter: emitter,
		logger:  logger,
	}
}

// OnSignal registers fn to receive every fired signal
func (d *Detector) OnSignal(fn func(Signal)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// OnVisibilityChange fires tab_switch when the page becomes hidden
func (d *Detector) OnVisibilityChange(hidden bool) bool {
	if !hidden {
		return false
	}
	d.Trigger(KindTabSwitch)
	return true
}

// OnFocusLost fires window_blur
func (d *Detector) OnFocusLost() {
	d.Trigger(KindWindowBlur)
}

// OnPointerMove fires fast_mouse when the speed since the previous sample is
// above the threshold. The first sample only primes the detector.
func (d *Detector) OnPointerMove(s Sample) bool {
	d.mu.Lock()
	prev := d.last
	d.last = &s
	d.mu.Unlock()

	if prev == nil {
		return false
	}
	if Speed(*prev, s) <= d.cfg.Threshold {
		return false
	}
	d.Trigger(KindFastMouse)
	return true
}

// Speed is the displacement between a and b in px per ms, with elapsed time
// floored at 1ms
func Speed(a, b Sample) float64 {
	dt := float64(b.At.Sub(a.At)) / float64(time.Millisecond)
	if dt < 1 {
		dt = 1
	}
	return math.Hypot(b.X-a.X, b.Y-a.Y) / dt
}

// Trigger applies the anomaly reaction for kind
func (d *Detector) Trigger(kind Kind) {
	sig := Signal{Kind: kind, At: d.clock.Now()}

	d.reactMu.Lock()
	d.mu.Lock()
	d.gen++
	gen := d.gen
	if d.cooldown != nil {
		d.cooldown.Stop()
	}
	d.cooldown = d.clock.AfterFunc(d.cfg.Cooldown, func() { d.release(gen) })
	listeners := append([]func(Signal){}, d.listeners...)
	d.mu.Unlock()

	if d.masker != nil {
		d.masker.ForceMask()
	}
	if d.notices != nil {
		id := d.notices.Show(notice.LevelWarning, NoticePrefix+string(kind))
		d.mu.Lock()
		d.noticeID = id
		d.mu.Unlock()
	}
	d.reactMu.Unlock()

	d.logger.WithField("reason", string(kind)).Debug("Anomaly detected, password masked")
	if d.emitter != nil {
		d.emitter.Emit(eventlog.KindBlur, eventlog.Details{"reason": string(kind)})
	}
	for _, fn := range listeners {
		fn(sig)
	}
}

// release ends the cool-down unless a newer signal re-armed it
func (d *Detector) release(gen uint64) {
	d.reactMu.Lock()
	defer d.reactMu.Unlock()

	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.cooldown = nil
	id := d.noticeID
	d.mu.Unlock()

	if d.masker != nil {
		d.masker.Release()
	}
	if d.notices != nil {
		d.notices.Dismiss(id)
	}
}

// Active reports whether a cool-down is running
func (d *Detector) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cooldown != nil
}

// Stop cancels a running cool-down without releasing the mask
func (d *Detector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.cooldown != nil {
		d.cooldown.Stop()
		d.cooldown = nil
	}
}
