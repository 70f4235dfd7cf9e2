// Package reveal renders the masked password display. The most recently
// added character is shown for a short window, then collapses to the mask
// glyph. ForceMask hides everything until Release.
package reveal
