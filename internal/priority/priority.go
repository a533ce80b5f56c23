// Package priority lowers CPU and IO priority so snapshot creation and
// pruning stay out of the way of interactive work.
package priority

import (
	"errors"
	"fmt"
)

// Lower sets the process niceness to nice (skipped when 0) and, when
// idleIO is set, moves the process into the idle IO scheduling class.
// Both are best effort; the returned error joins whatever failed.
func Lower(nice int, idleIO bool) error {
	var errs []error
	if nice != 0 {
		if err := setNice(nice); err != nil {
			errs = append(errs, fmt.Errorf("setting nice %d: %w", nice, err))
		}
	}
	if idleIO {
		if err := setIdleIO(); err != nil {
			errs = append(errs, fmt.Errorf("setting idle io class: %w", err))
		}
	}
	return errors.Join(errs...)
}
