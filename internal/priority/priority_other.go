//go:build !unix

package priority

import "errors"

func setNice(int) error { return errors.ErrUnsupported }

func setIdleIO() error { return errors.ErrUnsupported }
