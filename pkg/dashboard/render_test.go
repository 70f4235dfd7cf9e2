package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/peekguard/pkg/eventlog"
)

func TestRender_NewestFirst(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	events := []eventlog.Event{
		eventlog.NewEvent(at, "student", eventlog.KindLoginSuccess, eventlog.Details{"ip": "127.0.0.1"}),
		eventlog.NewEvent(at.Add(time.Second), "student", eventlog.KindBlur, eventlog.Details{"reason": "tab_switch"}),
		eventlog.NewEvent(at.Add(2*time.Second), "student", "custom_event", nil),
	}

	rows := Render(events)
	require.Len(t, rows, 3)
	assert.Equal(t, eventlog.Kind("custom_event"), rows[0].Kind)
	assert.Equal(t, defaultStyle, rows[0].Style)
	assert.Equal(t, "", rows[0].Details)

	assert.Equal(t, eventlog.KindBlur, rows[1].Kind)
	assert.Equal(t, "text-amber-400", rows[1].Style.Class)
	assert.Equal(t, "reason: tab_switch", rows[1].Details)

	assert.Equal(t, eventlog.KindLoginSuccess, rows[2].Kind)
	assert.Empty(t, Render(nil))
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, "text-green-400", StyleFor(eventlog.KindLoginSuccess).Class)
	assert.Equal(t, "text-red-400", StyleFor(eventlog.KindLoginFailed).Class)
	assert.Equal(t, "text-blue-400", StyleFor(eventlog.KindLogout).Class)
	assert.Equal(t, "text-slate-400", StyleFor(eventlog.KindHeartbeat).Class)
	assert.Equal(t, "text-slate-300", StyleFor("whatever").Class)
}

func TestFormatDetails(t *testing.T) {
	assert.Equal(t, "ip: 10.0.0.1, ua: curl/8", FormatDetails(eventlog.Details{"ua": "curl/8", "ip": "10.0.0.1"}))
	assert.Equal(t, "count: 3", FormatDetails(eventlog.Details{"count": 3}))
	assert.Equal(t, "", FormatDetails(nil))
}

func TestBrowserName(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36", "Chrome"},
		{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", "Firefox"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_2) AppleWebKit/605.1.15 Version/17.2 Safari/605.1.15", "Safari"},
		{"Mozilla/5.0 (Windows NT 10.0) Edge/18.19045", "Edge"},
		{"curl/8.4.0", "Unknown"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BrowserName(tt.ua), tt.ua)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", FormatDuration(0))
	assert.Equal(t, "00:59", FormatDuration(59*time.Second+900*time.Millisecond))
	assert.Equal(t, "01:05", FormatDuration(65*time.Second))
	assert.Equal(t, "61:01", FormatDuration(61*time.Minute+time.Second))
	assert.Equal(t, "00:00", FormatDuration(-time.Second))
}
