// Package keypad implements the randomized on-screen keypad: layout
// generation, the password buffer it edits, and suppression of physical
// keyboard input.
//
// Every layout is a fresh Fisher-Yates permutation of Alphabet followed by the
// Backspace and Shuffle controls. Activating Shuffle regenerates the layout
// without touching the buffer.
//
//	ctrl := keypad.NewController(keypad.NewGenerator(nil), mask)
//	ctrl.OnLayoutChange(redraw)
//	ctrl.ActivateAt(3)
//	password := ctrl.Password() // for the login submission only
package keypad
