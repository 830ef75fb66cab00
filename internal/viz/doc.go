// Package viz draws particle scenes on Braille canvases and renders the
// lipgloss tables, bars and sparklines used by the command line.
package viz
