// Package snapshot discovers, reads and creates timestamped snapshot
// directories in the backup store.
package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// StampFile marks a finished sync and a snapshot's creation time.
	StampFile = "stamp"

	// NameLayout names snapshot directories, in UTC.
	NameLayout = "2006-01-02_15:04"
)

// Snapshot represents a single archived snapshot. Values are never mutated
// after discovery.
type Snapshot struct {
	Path      string
	Name      string
	Timestamp time.Time
}

// ErrMarker is matched by every *MarkerError.
var ErrMarker = errors.New("invalid snapshot marker")

// MarkerError reports a missing or unusable stamp file.
type MarkerError struct {
	Dir string
	Err error
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("stamp in %s: %v", e.Dir, e.Err)
}

func (e *MarkerError) Unwrap() error { return e.Err }

func (e *MarkerError) Is(target error) bool { return target == ErrMarker }

// ReadStamp returns the time recorded in dir/stamp: the first whitespace
// separated field of the first line, as positive Unix seconds.
func ReadStamp(dir string) (time.Time, error) {
	f, err := os.Open(filepath.Join(dir, StampFile))
	if err != nil {
		return time.Time{}, &MarkerError{Dir: dir, Err: err}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return time.Time{}, &MarkerError{Dir: dir, Err: err}
		}
		return time.Time{}, &MarkerError{Dir: dir, Err: errors.New("empty file")}
	}

	fields := strings.Fields(sc.Text())
	if len(fields) == 0 {
		return time.Time{}, &MarkerError{Dir: dir, Err: errors.New("empty first line")}
	}

	sec, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return time.Time{}, &MarkerError{Dir: dir, Err: fmt.Errorf("not an integer: %q", fields[0])}
	}
	if sec <= 0 {
		return time.Time{}, &MarkerError{Dir: dir, Err: fmt.Errorf("not positive: %d", sec)}
	}

	return time.Unix(sec, 0).UTC(), nil
}

// DirName is the directory name for a snapshot taken at t.
func DirName(t time.Time) string {
	return t.UTC().Format(NameLayout)
}
