//go:build linux

package priority

import "golang.org/x/sys/unix"

const (
	ioprioWhoProcess = 1
	ioprioClassIdle  = 3
	ioprioClassShift = 13
)

func setNice(n int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, n)
}

func setIdleIO() error {
	_, _, errno := unix.Syscall(unix.SYS_IOPRIO_SET, ioprioWhoProcess, 0, ioprioClassIdle<<ioprioClassShift)
	if errno != 0 {
		return errno
	}
	return nil
}
