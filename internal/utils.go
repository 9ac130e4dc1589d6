package internal

import (
	"os"
	"strings"

	"golang.org/x/term"
)

func IsDebugMode() bool {
	isDebug := strings.ToLower(os.Getenv("FILTERLINES_DEBUG"))
	return isDebug == "true" || isDebug == "1"
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
