//go:build cgo && unix

package native

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

typedef void (*diptst_fn)(const double *, const int *, double *, int *, int *,
                          int *, int *, int *, int *, const int *);

static void call_diptst(void *fn, const double *x, const int *n, double *dip,
                        int *low_high, int *modal, int *gcm, int *lcm, int *mn,
                        int *mj, const int *debug) {
	((diptst_fn)fn)(x, n, dip, low_high, modal, gcm, lcm, mn, mj, debug);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"
)

// Library is an opened shared library with the dip routine resolved.
// It is safe for concurrent use; every call owns its buffers.
type Library struct {
	path   string
	handle unsafe.Pointer
	fn     unsafe.Pointer
}

// open tries paths in order and returns the first library exporting Symbol.
func open(paths []string) (*Library, error) {
	var errs []error
	for _, p := range paths {
		cpath := C.CString(p)
		handle := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
		C.free(unsafe.Pointer(cpath))
		if handle == nil {
			errs = append(errs, fmt.Errorf("%s: %s", p, C.GoString(C.dlerror())))
			continue
		}

		csym := C.CString(Symbol)
		fn := C.dlsym(handle, csym)
		C.free(unsafe.Pointer(csym))
		if fn == nil {
			errs = append(errs, fmt.Errorf("%s: symbol %s: %s", p, Symbol, C.GoString(C.dlerror())))
			C.dlclose(handle)
			continue
		}
		return &Library{path: p, handle: handle, fn: fn}, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string { return l.path }

// Dip runs the compiled routine on x, which must be sorted ascending and
// hold at least one value.
func (l *Library) Dip(x []float64) Result {
	n := len(x)
	cn := C.int(n)
	debug := C.int(0)
	var (
		dip      C.double
		lowHigh  [4]C.int
		triangle [3]C.int
	)
	// gcm, lcm, mn and mj, back to back.
	scratch := make([]C.int, 4*n)

	C.call_diptst(l.fn,
		(*C.double)(unsafe.Pointer(&x[0])), &cn, &dip,
		&lowHigh[0], &triangle[0],
		&scratch[0], &scratch[n], &scratch[2*n], &scratch[3*n],
		&debug)

	res := Result{Dip: float64(dip)}
	for i, v := range lowHigh {
		res.LowHigh[i] = int(v)
	}
	for i, v := range triangle {
		res.ModalTriangle[i] = int(v)
	}
	return res
}
