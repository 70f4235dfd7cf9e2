// Package dashboard renders an identity's security log for display. Render
// turns events into newest-first rows styled by event kind; Panel keeps the
// rendered view fresh on a fixed interval and on demand.
//
// An empty log and a failed fetch are distinct states: the first shows
// "No security events recorded", the second "Failed to load security logs".
package dashboard
