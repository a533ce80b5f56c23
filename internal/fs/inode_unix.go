//go:build unix

package fs

import (
	"os"
	"syscall"
)

// inodeOf lets callers tell a rewritten stamp from a touched one and
// verify that snapshot files share inodes with the synced tree.

func inodeOf(info os.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return st.Ino
}
