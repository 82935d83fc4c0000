package diptest

import (
	"log/slog"

	"github.com/TrevorS/diptest/internal/native"
)

// Backend selects the dip implementation.
type Backend string

const (
	BackendAuto Backend = "auto"
	BackendPure Backend = "pure"
	BackendFast Backend = "fast"
	// BackendNative is reported by ResolveBackend when the compiled routine
	// serves the computation. As a Config value it behaves like BackendAuto.
	BackendNative Backend = "native"
)

// NativeAvailable reports whether the compiled dip routine can be used.
// The first call in the process attempts to load the shared library; the
// outcome is cached and a failure is logged once to logger.
func NativeAvailable(logger *slog.Logger) bool {
	_, err := native.Load(logger)
	return err == nil
}

// ResolveBackend resolves BackendAuto into the implementation Dip will
// actually run: BackendNative when the library loads, BackendPure otherwise.
func ResolveBackend(cfg Config) Backend {
	applyDefaults(&cfg)
	switch cfg.Backend {
	case BackendAuto, BackendNative:
		if NativeAvailable(cfg.Logger) {
			return BackendNative
		}
		return BackendPure
	default:
		return cfg.Backend
	}
}

// nativeDip runs x through the compiled routine. ok is false when the
// library is unavailable, in which case the caller falls back to pure Go.
func nativeDip(x []float64, logger *slog.Logger) (res *Result, ok bool) {
	lib, err := native.Load(logger)
	if err != nil {
		return nil, false
	}
	return fromNative(lib.Dip(x)), true
}

// fromNative maps the routine's output onto a Result. The routine already
// returns the dip per sample, so the statistic is taken as is.
func fromNative(r native.Result) *Result {
	return &Result{
		Statistic: r.Dip,
		Interval: Interval{
			Low:      r.LowHigh[0],
			High:     r.LowHigh[1],
			BestLow:  r.LowHigh[2],
			BestHigh: r.LowHigh[3],
		},
		ModalTriangle: r.ModalTriangle,
	}
}
