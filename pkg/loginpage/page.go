package loginpage

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/platinummonkey/peekguard/pkg/anomaly"
	"github.com/platinummonkey/peekguard/pkg/client"
	"github.com/platinummonkey/peekguard/pkg/config"
	"github.com/platinummonkey/peekguard/pkg/decoy"
	"github.com/platinummonkey/peekguard/pkg/eventlog"
	"github.com/platinummonkey/peekguard/pkg/keypad"
	"github.com/platinummonkey/peekguard/pkg/notice"
	"github.com/platinummonkey/peekguard/pkg/observability"
	"github.com/platinummonkey/peekguard/pkg/reveal"
)

const (
	MsgUsernameRequired = "Please enter username"
	MsgLoginSuccess     = "Login successful! Redirecting..."
	MsgLoginFailed      = "Login failed"
	MsgNetworkError     = "Network error. Please try again."
)

var (
	// ErrUsernameRequired is returned by Submit when no username is set
	ErrUsernameRequired = errors.New("username is required")

	// ErrSubmitInFlight is returned by Submit while a login is running
	ErrSubmitInFlight = errors.New("login already in progress")

	// ErrLoginRejected is returned by Submit when the server refused the credentials
	ErrLoginRejected = errors.New("login rejected")
)

// State is the authentication state of the page
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Authenticator submits credentials
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*client.LoginResponse, error)
}

// Deps are the page's collaborators. Clock, Emitter, Rand and Logger may be nil.
type Deps struct {
	Clock   clockwork.Clock
	Tuning  config.Tuning
	Auth    Authenticator
	Emitter anomaly.Emitter
	Rand    *rand.Rand
	Logger  *observability.Logger
}

type nopEmitter struct{}

func (nopEmitter) Emit(eventlog.Kind, eventlog.Details) {}

// Page is the login screen model
type Page struct {
	Keypad    *keypad.Controller
	Mask      *reveal.Mask
	Notices   *notice.Board
	Detector  *anomaly.Detector
	Heartbeat *anomaly.Heartbeat
	Decoys    *decoy.Decoys

	auth   Authenticator
	logger *observability.Logger

	mu          sync.Mutex
	state       State
	username    string
	highlighted map[int]bool
}

// New builds a page from deps
func New(deps Deps) *Page {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := deps.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}
	emitter := deps.Emitter
	if emitter == nil {
		emitter = nopEmitter{}
	}
	t := deps.Tuning

	p := &Page{
		auth:        deps.Auth,
		logger:      logger,
		highlighted: make(map[int]bool),
	}
	p.Mask = reveal.New(clock, t.RevealWindow)
	p.Notices = notice.NewBoard(clock)
	p.Keypad = keypad.NewController(keypad.NewGenerator(deps.Rand), p.Mask)
	p.Detector = anomaly.NewDetector(clock, anomaly.Config{
		Threshold: t.FastMouseThreshold,
		Cooldown:  t.BlurCooldown,
	}, p.Mask, p.Notices, emitter, logger)
	p.Heartbeat = anomaly.NewHeartbeat(clock, t.HeartbeatInterval, emitter)
	p.Decoys = decoy.New(clock, decoy.Config{
		MinInterval: t.DecoyMinInterval,
		MaxInterval: t.DecoyMaxInterval,
		MinDuration: t.DecoyMinDuration,
		MaxDuration: t.DecoyMaxDuration,
	}, nil, func() int { return len(p.Keypad.Layout()) }, p.setHighlight)

	p.Keypad.OnLayoutChange(func(keypad.Layout) {
		p.mu.Lock()
		p.highlighted = make(map[int]bool)
		p.mu.Unlock()
	})
	return p
}

// Start begins the heartbeat and decoys
func (p *Page) Start(ctx context.Context) {
	p.Heartbeat.Start(ctx)
	p.Decoys.Start()
}

// Close stops every timer the page owns
func (p *Page) Close() {
	p.Heartbeat.Stop()
	p.Decoys.Stop()
	p.Detector.Stop()
}

// SetUsername sets the username field
func (p *Page) SetUsername(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.username = username
}

// State returns the authentication state
func (p *Page) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Highlighted returns the key positions currently lit by decoys
func (p *Page) Highlighted() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, 0, len(p.highlighted))
	for i := range p.highlighted {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (p *Page) setHighlight(index int, on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if on {
		p.highlighted[index] = true
	} else {
		delete(p.highlighted, index)
	}
}

// Submit logs in with the username and the keypad buffer. The buffer is
// cleared whatever the outcome.
func (p *Page) Submit(ctx context.Context) error {
	p.mu.Lock()
	username := strings.TrimSpace(p.username)
	if username == "" {
		p.mu.Unlock()
		p.Notices.Show(notice.LevelError, MsgUsernameRequired)
		return ErrUsernameRequired
	}
	if p.state == StateAuthenticating {
		p.mu.Unlock()
		return ErrSubmitInFlight
	}
	p.state = StateAuthenticating
	p.mu.Unlock()

	res, err := p.auth.Login(ctx, username, p.Keypad.Password())
	p.Keypad.Clear()

	next := StateAnonymous
	switch {
	case err != nil:
		p.logger.WithError(err).Debug("Login request failed")
		p.Notices.Show(notice.LevelError, MsgNetworkError)
	case !res.Success:
		msg := res.Message
		if msg == "" {
			msg = MsgLoginFailed
		}
		p.Notices.Show(notice.LevelError, msg)
		err = fmt.Errorf("%w: %s", ErrLoginRejected, msg)
	default:
		p.Notices.Show(notice.LevelSuccess, MsgLoginSuccess)
		next = StateAuthenticated
	}

	p.mu.Lock()
	p.state = next
	p.mu.Unlock()
	return err
}
