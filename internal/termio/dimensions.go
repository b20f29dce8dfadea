package termio

// TerminalSize returns the terminal's column and row count, falling back
// to COLUMNS/LINES and finally to 80x24 when the query fails — the same
// degradation path the teacher's getTerminalWidth used for width alone,
// extended here to height. Used by "testament run"'s progress line to
// truncate to the terminal's actual width, the same pairing as the
// teacher's runner.go showStatus/getTerminalWidth.
func TerminalSize() (width, height int) {
	return termSize()
}
