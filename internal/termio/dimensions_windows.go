//go:build windows

package termio

import (
	"os"
	"strconv"

	goterm "golang.org/x/term"
)

// termSize queries the terminal's column and row count via
// golang.org/x/term, falling back to the COLUMNS/LINES environment
// variables and finally to a conservative 80x24 default.
func termSize() (width, height int) {
	width, height = 80, 24
	if w, h, err := goterm.GetSize(int(os.Stderr.Fd())); err == nil && w > 0 && h > 0 {
		return w, h
	}

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			width = n
		}
	}
	if lines := os.Getenv("LINES"); lines != "" {
		if n, err := strconv.Atoi(lines); err == nil && n > 0 {
			height = n
		}
	}
	return width, height
}
