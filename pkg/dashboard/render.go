package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/platinummonkey/peekguard/pkg/eventlog"
)

const (
	EmptyMessage = "No security events recorded"
	ErrorMessage = "Failed to load security logs"
)

// Style is how an event kind is shown
type Style struct {
	Class string
	Icon  string
}

var defaultStyle = Style{Class: "text-slate-300", Icon: "info"}

var styles = map[eventlog.Kind]Style{
	eventlog.KindLoginSuccess: {Class: "text-green-400", Icon: "check-circle"},
	eventlog.KindLoginFailed:  {Class: "text-red-400", Icon: "x-circle"},
	eventlog.KindBlur:         {Class: "text-amber-400", Icon: "eye"},
	eventlog.KindLogout:       {Class: "text-blue-400", Icon: "logout"},
	eventlog.KindHeartbeat:    {Class: "text-slate-400", Icon: "info"},
}

// StyleFor returns the style for kind, or the default for unknown kinds
func StyleFor(kind eventlog.Kind) Style {
	if s, ok := styles[kind]; ok {
		return s
	}
	return defaultStyle
}

// Row is one rendered event
type Row struct {
	Time    time.Time
	Kind    eventlog.Kind
	Style   Style
	Details string
}

// Clock formats the row time as shown in the log
func (r Row) Clock() string {
	return r.Time.Local().Format("15:04:05")
}

// Render returns rows newest-first. Events are stored in append order, so the
// newest is the last one.
func Render(events []eventlog.Event) []Row {
	rows := make([]Row, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		rows = append(rows, Row{
			Time:    e.Time,
			Kind:    e.Kind,
			Style:   StyleFor(e.Kind),
			Details: FormatDetails(e.Details),
		})
	}
	return rows
}

// FormatDetails renders details as "key: value, key: value" with keys sorted
func FormatDetails(details eventlog.Details) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, details[k]))
	}
	return strings.Join(parts, ", ")
}

// BrowserName picks a browser family out of a user agent string
func BrowserName(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Chrome"):
		return "Chrome"
	case strings.Contains(userAgent, "Firefox"):
		return "Firefox"
	case strings.Contains(userAgent, "Safari"):
		return "Safari"
	case strings.Contains(userAgent, "Edge"):
		return "Edge"
	default:
		return "Unknown"
	}
}

// FormatDuration renders d as mm:ss. Minutes keep counting past 59.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
