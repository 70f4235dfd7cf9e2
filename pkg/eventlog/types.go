package eventlog

import (
	"errors"
	"maps"
	"time"
)

// Kind names a security event
type Kind string

const (
	KindLoginSuccess Kind = "login_success"
	KindLoginFailed  Kind = "login_failed"
	KindLogout       Kind = "logout"
	KindBlur         Kind = "blur"
	KindHeartbeat    Kind = "heartbeat"
)

// AnonymousIdentity owns events recorded without an authenticated session
const AnonymousIdentity = "anonymous"

// ErrInvalidKind is returned when an event kind is empty
var ErrInvalidKind = errors.New("event kind is required")

// Details is the free-form payload attached to an event
type Details map[string]interface{}

// Event is a single entry in an identity's security log. The JSON form is the
// wire shape of /api/logs entries; identity is implied by the session.
type Event struct {
	Identity string    `json:"-"`
	Time     time.Time `json:"time"`
	Kind     Kind      `json:"event"`
	Details  Details   `json:"details"`
}

// NewEvent builds an event with identity and details normalized
func NewEvent(at time.Time, identity string, kind Kind, details Details) Event {
	return Event{
		Identity: NormalizeIdentity(identity),
		Time:     at.UTC(),
		Kind:     kind,
		Details:  normalizeDetails(details),
	}
}

// NormalizeIdentity maps the empty identity to AnonymousIdentity
func NormalizeIdentity(identity string) string {
	if identity == "" {
		return AnonymousIdentity
	}
	return identity
}

// ValidateKind accepts any non-empty kind, including ones this package does not name
func ValidateKind(kind Kind) error {
	if kind == "" {
		return ErrInvalidKind
	}
	return nil
}

// normalizeDetails returns a copy of details that the caller no longer shares.
// The copy is shallow.
func normalizeDetails(details Details) Details {
	if details == nil {
		return Details{}
	}
	return maps.Clone(details)
}

// record is the persisted form used by the file and Redis backends
type record struct {
	Identity string    `json:"identity"`
	Time     time.Time `json:"time"`
	Kind     Kind      `json:"event"`
	Details  Details   `json:"details"`
}

func toRecord(e Event) record {
	return record{Identity: e.Identity, Time: e.Time, Kind: e.Kind, Details: e.Details}
}

func (r record) event() Event {
	return Event{Identity: r.Identity, Time: r.Time, Kind: r.Kind, Details: normalizeDetails(r.Details)}
}
