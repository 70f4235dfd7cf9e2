// Package loginpage wires the client-side pieces of the login screen: the
// randomized keypad, the reveal mask, anomaly detection, the heartbeat, decoy
// highlights and the notice board. Page also runs the login state machine
//
//	Anonymous -> Authenticating -> Authenticated
//	                            \-> Anonymous
//
// and clears the password buffer after every submission.
package loginpage
