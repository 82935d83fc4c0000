// Package native binds the compiled dip routine exported by a shared
// library as
//
//	void diptst(const double *x, const int *n, double *dip, int *low_high,
//	            int *modal_triangle, int *gcm, int *lcm, int *mn, int *mj,
//	            const int *debug);
//
// x holds n sorted values. The routine writes the statistic to dip, the
// four interval bounds to low_high and the three modal triangle indices to
// modal_triangle, all 0-based, and uses gcm, lcm, mn and mj (n ints each) as
// working memory.
//
// The library is looked up once per process, in this order: the path in
// the DIPTEST_NATIVE_LIB environment variable, the platform library name
// next to the running executable, and the platform library name on the
// dynamic loader search path. A failed lookup is remembered and never
// retried.
package native

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// EnvLibrary names the environment variable that overrides the library path.
const EnvLibrary = "DIPTEST_NATIVE_LIB"

// Symbol is the exported procedure resolved in the library.
const Symbol = "diptst"

// ErrUnavailable reports that no usable library was found.
var ErrUnavailable = errors.New("native dip routine unavailable")

// Result is the output of one call of the compiled routine.
type Result struct {
	Dip           float64
	LowHigh       [4]int
	ModalTriangle [3]int
}

var (
	loadOnce sync.Once
	loaded   *Library
	loadErr  error
)

// Load returns the process-wide library handle, opening it on the first
// call. When opening fails a single warning is written to logger and every
// later call returns the same error without touching the filesystem.
func Load(logger *slog.Logger) (*Library, error) {
	loadOnce.Do(func() {
		loaded, loadErr = open(candidates())
		if loadErr != nil {
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn("native dip routine cannot be used, falling back to pure Go", "error", loadErr)
		}
	})
	return loaded, loadErr
}

// candidates lists the library paths to try, in order.
func candidates() []string {
	if p := os.Getenv(EnvLibrary); p != "" {
		return []string{p}
	}
	name := libraryName(runtime.GOOS)
	var paths []string
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), name))
	}
	return append(paths, name)
}

// libraryName returns the platform file name of the shared library.
func libraryName(goos string) string {
	switch goos {
	case "windows":
		return "dip.dll"
	case "darwin", "ios":
		return "libdip.dylib"
	default:
		return "libdip.so"
	}
}
