//go:build unix

package input

import (
	"errors"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

const readChunk = 32 * 1024

// readAvailable switches f to non-blocking mode, drains what is queued and
// restores the original mode before returning.
func readAvailable(f *os.File) ([]byte, bool) {
	fd := int(f.Fd())

	if err := unix.SetNonblock(fd, true); err != nil {
		slog.Debug("stdin does not support non-blocking reads", "error", err)
		return nil, false
	}
	defer func() {
		if err := unix.SetNonblock(fd, false); err != nil {
			slog.Debug("failed to restore blocking stdin", "error", err)
		}
	}()

	var data []byte
	buf := make([]byte, readChunk)
	for {
		n, err := unix.Read(fd, buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			// Nothing more queued right now.
			return data, len(data) > 0
		case err != nil:
			slog.Debug("stdin read failed", "error", err)
			return data, len(data) > 0
		case n == 0:
			return data, len(data) > 0
		}
	}
}
