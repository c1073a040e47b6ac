//go:build profile

package prof

import (
	"errors"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
)

// Profiling errors.
var (
	// ErrCPUProfileActive indicates CPU profiling is already active.
	ErrCPUProfileActive = errors.New("cpu profile already active")

	// ErrInvalidProfile indicates an invalid or unsupported profile type.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Enabled reports whether profiling support is compiled in.
const Enabled = true

// Profile names a snapshot profile.
type Profile string

// Snapshot profile types.
const (
	ProfileHeap   Profile = "heap"
	ProfileAllocs Profile = "allocs"
)

// String returns the pprof name of the profile.
func (p Profile) String() string {
	return string(p)
}

var (
	cpuMutex  sync.Mutex
	cpuFile   *os.File
	cpuActive bool
)

// StartCPU starts CPU profiling into the file at path.
// Returns [ErrCPUProfileActive] if CPU profiling is already active.
func StartCPU(path string) error {
	cpuMutex.Lock()
	defer cpuMutex.Unlock()

	if cpuActive {
		return ErrCPUProfileActive
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return err
	}

	cpuFile = f
	cpuActive = true
	return nil
}

// StopCPU stops CPU profiling and closes the profile file. It is safe to call
// when profiling is not active.
func StopCPU() {
	cpuMutex.Lock()
	defer cpuMutex.Unlock()

	if !cpuActive {
		return
	}

	pprof.StopCPUProfile()
	cpuFile.Close()
	cpuFile = nil
	cpuActive = false
}

// IsCPUActive reports whether CPU profiling is currently active.
func IsCPUActive() bool {
	cpuMutex.Lock()
	defer cpuMutex.Unlock()
	return cpuActive
}

// Write writes a snapshot of profile to the file at path. Heap profiles are
// preceded by a GC so they reflect live allocations at the end of a run.
func Write(profile Profile, path string) error {
	p := pprof.Lookup(string(profile))
	if p == nil {
		return ErrInvalidProfile
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if profile == ProfileHeap {
		runtime.GC()
	}
	return p.WriteTo(f, 0)
}
