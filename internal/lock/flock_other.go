//go:build !unix

package lock

import "os"

// No advisory locking here; the in-process mutex in the engine still applies.

func tryLock(*os.File) error { return nil }

func unlock(*os.File) error { return nil }
