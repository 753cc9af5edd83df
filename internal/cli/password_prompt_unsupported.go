//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import (
	"errors"
	"os"
)

func isTerminal(_ *os.File) bool { return false }

func readPassphraseNoEcho(_ *os.File) ([]byte, error) {
	return nil, errors.New("unsupported platform")
}
