package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/platinummonkey/peekguard/pkg/eventlog"
	"github.com/platinummonkey/peekguard/pkg/notice"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

// ErrRefreshInFlight is returned when a refresh is already running
var ErrRefreshInFlight = errors.New("refresh already in progress")

// RefreshFailedMessage is the transient notice for a failed manual refresh
const RefreshFailedMessage = "Failed to refresh logs"

// State is what the panel currently shows
type State int

const (
	StateLoading State = iota
	StateEmpty
	StateLoaded
	StateError
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// Fetcher loads the session identity's events
type Fetcher interface {
	Logs(ctx context.Context) ([]eventlog.Event, error)
}

// Notifier shows timed notices
type Notifier interface {
	ShowFor(level notice.Level, msg string, d time.Duration) uint64
}

// View is a snapshot of the panel
type View struct {
	State     State
	Rows      []Row
	Message   string
	UpdatedAt time.Time
}

// Panel is the security log view with manual and periodic refresh
type Panel struct {
	fetcher        Fetcher
	clock          clockwork.Clock
	notices        Notifier
	noticeDuration time.Duration
	isUnauth       func(error) bool
	logger         *observability.Logger

	mu         sync.Mutex
	refreshing bool
	view       View
	listeners  []func(View)
}

// PanelOption configures a Panel
type PanelOption func(*Panel)

// WithNotices shows a timed notice when a manual refresh fails
func WithNotices(n Notifier, d time.Duration) PanelOption {
	return func(p *Panel) {
		p.notices = n
		p.noticeDuration = d
	}
}

// WithUnauthenticated sets how fetch errors meaning "no session" are detected
func WithUnauthenticated(fn func(error) bool) PanelOption {
	return func(p *Panel) { p.isUnauth = fn }
}

// WithLogger sets the panel logger
func WithLogger(logger *observability.Logger) PanelOption {
	return func(p *Panel) { p.logger = logger }
}

// NewPanel creates a panel in the loading state. clock may be nil.
func NewPanel(fetcher Fetcher, clock clockwork.Clock, opts ...PanelOption) *Panel {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	p := &Panel{
		fetcher:        fetcher,
		clock:          clock,
		noticeDuration: 5 * time.Second,
		isUnauth:       func(error) bool { return false },
		logger:         observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnUpdate registers fn to receive each new view
func (p *Panel) OnUpdate(fn func(View)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// View returns the current snapshot
func (p *Panel) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Refresh reloads the log on user request. A failure also raises a timed notice.
func (p *Panel) Refresh(ctx context.Context) error {
	err := p.load(ctx)
	if err != nil && !errors.Is(err, ErrRefreshInFlight) && p.notices != nil {
		p.notices.ShowFor(notice.LevelError, RefreshFailedMessage, p.noticeDuration)
	}
	return err
}

// Run refreshes immediately and then every interval until ctx is done. A tick
// that lands while another refresh is running is skipped.
func (p *Panel) Run(ctx context.Context, interval time.Duration) error {
	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()

	p.load(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if err := p.load(ctx); err != nil && !errors.Is(err, ErrRefreshInFlight) {
				p.logger.WithError(err).Debug("Periodic log refresh failed")
			}
		}
	}
}

func (p *Panel) load(ctx context.Context) error {
	p.mu.Lock()
	if p.refreshing {
		p.mu.Unlock()
		return ErrRefreshInFlight
	}
	p.refreshing = true
	p.mu.Unlock()

	events, err := p.fetcher.Logs(ctx)

	view := View{UpdatedAt: p.clock.Now()}
	switch {
	case err != nil && p.isUnauth(err):
		view.State = StateUnauthenticated
	case err != nil:
		view.State = StateError
		view.Message = ErrorMessage
	case len(events) == 0:
		view.State = StateEmpty
		view.Message = EmptyMessage
	default:
		view.State = StateLoaded
		view.Rows = Render(events)
	}

	p.mu.Lock()
	p.refreshing = false
	p.view = view
	listeners := append([]func(View){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(view)
	}
	return err
}
