package tui

import (
	"regexp"
	"strings"
)

// reANSI matches ANSI/VT escape sequences that could be embedded in
// untrusted data (e.g. entity values fetched from the backend).
//
// Pattern covers:
//   - CSI sequences:  ESC [ <params> <final>  (e.g. colour codes, cursor movement)
//   - Other Fe seqs:  ESC <byte in 0x40-0x5F range>  (e.g. ESC M, ESC 7)
var reANSI = regexp.MustCompile(`\x1b(?:\[[0-?]*[ -/]*[@-~]|[@-Z\\-_])`)

// controlReplacer flattens line breaks and tabs so a value stays on one
// table row.
var controlReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// sanitize strips ANSI escape sequences and line breaks from s before it is
// passed to a lipgloss/bubbletea renderer. Apply this to all string values
// that originate from external sources (backend responses, console file).
func sanitize(s string) string {
	return controlReplacer.Replace(stripANSI(s))
}

// stripANSI removes escape sequences but keeps line breaks, for multi-line
// inputs.
func stripANSI(s string) string {
	return reANSI.ReplaceAllString(s, "")
}
