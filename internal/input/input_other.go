//go:build !unix

package input

import "os"

func readAvailable(*os.File) ([]byte, bool) {
	return nil, false
}
