//go:build unix && !linux

package priority

import (
	"errors"

	"golang.org/x/sys/unix"
)

func setNice(n int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, n)
}

func setIdleIO() error {
	return errors.ErrUnsupported
}
