package decoy

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Config bounds the random intervals between highlights and their durations
type Config struct {
	MinInterval time.Duration
	MaxInterval time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration
}

// DefaultConfig matches the browser demo
func DefaultConfig() Config {
	return Config{
		MinInterval: 800 * time.Millisecond,
		MaxInterval: 2000 * time.Millisecond,
		MinDuration: 700 * time.Millisecond,
		MaxDuration: 1600 * time.Millisecond,
	}
}

// Highlighter is told when a key position lights up and when it goes dark.
// It must not call Start or Stop.
type Highlighter func(index int, on bool)

type lit struct {
	timer clockwork.Timer
	index int
}

// Decoys schedules random key highlights
type Decoys struct {
	clock     clockwork.Clock
	cfg       Config
	keys      func() int
	highlight Highlighter

	// lightMu orders highlight calls; mu is never held across them
	lightMu sync.Mutex
	mu      sync.Mutex
	rng     *rand.Rand
	running bool
	gen     uint64
	next    clockwork.Timer
	pending map[uint64]lit
	seq     uint64
}

// New creates stopped decoys. keys reports how many keys the layout has.
// clock and rng may be nil.
func New(clock clockwork.Clock, cfg Config, rng *rand.Rand, keys func() int, highlight Highlighter) *Decoys {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if rng == nil {
		var seed [32]byte
		crand.Read(seed[:])
		rng = rand.New(rand.NewChaCha8(seed))
	}
	def := DefaultConfig()
	if cfg.MinInterval <= 0 || cfg.MaxInterval < cfg.MinInterval {
		cfg.MinInterval, cfg.MaxInterval = def.MinInterval, def.MaxInterval
	}
	if cfg.MinDuration <= 0 || cfg.MaxDuration < cfg.MinDuration {
		cfg.MinDuration, cfg.MaxDuration = def.MinDuration, def.MaxDuration
	}
	return &Decoys{
		clock:     clock,
		cfg:       cfg,
		rng:       rng,
		keys:      keys,
		highlight: highlight,
		pending:   make(map[uint64]lit),
	}
}

// Start schedules the first highlight
func (d *Decoys) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.gen++
	d.scheduleLocked()
}

// Stop cancels the schedule and every pending clear. Keys still lit are
// turned off.
func (d *Decoys) Stop() {
	d.lightMu.Lock()
	defer d.lightMu.Unlock()

	d.mu.Lock()
	d.running = false
	if d.next != nil {
		d.next.Stop()
		d.next = nil
	}
	pending := d.pending
	d.pending = make(map[uint64]lit)
	d.mu.Unlock()

	for _, l := range pending {
		l.timer.Stop()
		d.highlight(l.index, false)
	}
}

// Pending returns the number of highlights waiting to clear
func (d *Decoys) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Decoys) scheduleLocked() {
	gen := d.gen
	d.next = d.clock.AfterFunc(d.between(d.cfg.MinInterval, d.cfg.MaxInterval), func() { d.fire(gen) })
}

// fire lights a random key unless the schedule that armed it has since stopped
func (d *Decoys) fire(gen uint64) {
	d.lightMu.Lock()
	defer d.lightMu.Unlock()

	d.mu.Lock()
	if !d.running || gen != d.gen {
		d.mu.Unlock()
		return
	}

	n := d.keys()
	if n <= 0 {
		d.scheduleLocked()
		d.mu.Unlock()
		return
	}

	index := d.rng.IntN(n)
	d.seq++
	id := d.seq
	d.pending[id] = lit{
		timer: d.clock.AfterFunc(d.between(d.cfg.MinDuration, d.cfg.MaxDuration), func() { d.clear(id) }),
		index: index,
	}
	d.scheduleLocked()
	d.mu.Unlock()

	d.highlight(index, true)
}

func (d *Decoys) clear(id uint64) {
	d.lightMu.Lock()
	defer d.lightMu.Unlock()

	d.mu.Lock()
	l, ok := d.pending[id]
	delete(d.pending, id)
	d.mu.Unlock()

	if ok {
		d.highlight(l.index, false)
	}
}

// between returns a uniform duration in [lo, hi]; d.mu must be held
func (d *Decoys) between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(d.rng.Int64N(int64(hi-lo)+1))
}
