package anomaly

import (
	"sync"

	"github.com/platinummonkey/peekguard/pkg/eventlog"
)

type fakeMasker struct {
	mu       sync.Mutex
	forced   bool
	forces   int
	releases int
}

func (m *fakeMasker) ForceMask() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forced = true
	m.forces++
}

func (m *fakeMasker) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forced = false
	m.releases++
}

func (m *fakeMasker) isForced() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forced
}

type emitted struct {
	kind    eventlog.Kind
	details eventlog.Details
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *fakeEmitter) Emit(kind eventlog.Kind, details eventlog.Details) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{kind: kind, details: details})
}

func (e *fakeEmitter) snapshot() []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]emitted(nil), e.events...)
}
