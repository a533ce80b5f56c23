package fs

import (
	"errors"
	"syscall"
)

// isTransient decides whether a failed link or rename is worth retrying.

func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.ETIMEDOUT)
}
