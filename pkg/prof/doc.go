// Package prof provides on-demand profiling for spicat stress runs.
//
// This package wraps [runtime/pprof]. It is conditionally compiled using the
// "profile" build tag:
//
//	go build -tags profile ./cmd/spicat
//
// When built without the tag, every exported function is a no-op and
// [Enabled] is false, so the CLI can keep its profiling flags in place
// without overhead.
//
// # CPU Profiling
//
//	prof.StartCPU("cpu.prof")
//	defer prof.StopCPU()
//
// Starting a second CPU profile while one is active returns
// [ErrCPUProfileActive].
//
// # Snapshot Profiles
//
//	prof.Write(prof.ProfileHeap, "heap.prof")
package prof
