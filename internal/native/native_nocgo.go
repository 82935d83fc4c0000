//go:build !cgo || !unix

package native

import "fmt"

// Library is never opened in builds without cgo or dlopen.
type Library struct {
	path string
}

func open([]string) (*Library, error) {
	return nil, fmt.Errorf("%w: built without cgo dlopen support", ErrUnavailable)
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string { return l.path }

// Dip is unreachable since open never succeeds.
func (l *Library) Dip([]float64) Result { return Result{} }
