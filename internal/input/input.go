// Package input probes standard input for piped message content without
// ever blocking the process.
package input

import (
	"os"

	"golang.org/x/term"
)

// TryRead returns whatever f can deliver right now. The boolean is false when
// f is a terminal, nothing is queued, the stream is at EOF without data, or the
// platform cannot perform a zero-wait read.
func TryRead(f *os.File) (string, bool) {
	if f == nil || term.IsTerminal(int(f.Fd())) {
		return "", false
	}

	data, ok := readAvailable(f)
	if !ok || len(data) == 0 {
		return "", false
	}
	return string(data), true
}
