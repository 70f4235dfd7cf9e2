// Package notice holds the single transient message shown to the user, such
// as the anomaly warning or a login result. A newer notice replaces the
// current one; timed notices dismiss themselves.
package notice
