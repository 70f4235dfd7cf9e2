// Package decoy highlights random keypad keys on randomized intervals so an
// observer cannot tell real presses from noise. Each highlight clears itself
// after a random duration; Stop cancels the schedule and every pending clear.
package decoy
