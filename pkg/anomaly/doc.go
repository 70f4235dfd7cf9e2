// Package anomaly watches client signals that suggest someone else can see the
// screen: the tab becoming hidden, the window losing focus, or a pointer
// moving faster than a person normally would.
//
// When a signal fires the Detector forces the password mask, shows a notice
// and emits a blur security event carrying the signal kind as its reason. The
// mask is released after a cool-down; a new signal during the cool-down
// restarts it.
//
// Heartbeat emits a heartbeat event on a fixed interval regardless of
// anomaly state.
package anomaly
