// Package cli implements the peekguard terminal client.
//
// Commands:
//
//	peekguard-cli keypad  - log in through the randomized keypad
//	peekguard-cli logs    - print the security log, newest first
//	peekguard-cli watch   - keep the security log on screen, refreshing periodically
//	peekguard-cli export  - download the security log as json, csv or ndjson
//	peekguard-cli config  - print the server's client tuning
//
// Every command that needs a session logs in through the randomized keypad
// (key numbers read from stdin) and logs out when it finishes. There is no
// password flag or environment variable. logs, watch and export write the
// keypad to stderr so their output stays clean.
package cli
