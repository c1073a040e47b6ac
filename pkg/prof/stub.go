//go:build !profile

package prof

// Profiling errors (defined for API compatibility but never returned by stubs).
var (
	// ErrCPUProfileActive indicates CPU profiling is already active.
	ErrCPUProfileActive error

	// ErrInvalidProfile indicates an invalid or unsupported profile type.
	ErrInvalidProfile error
)

// Enabled reports whether profiling support is compiled in.
const Enabled = false

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

// StartCPU is a no-op when built without the "profile" tag.
func StartCPU(_ string) error {
	return nil
}

// StopCPU is a no-op when built without the "profile" tag.
func StopCPU() {}

// IsCPUActive always returns false when built without the "profile" tag.
func IsCPUActive() bool {
	return false
}

// Write is a no-op when built without the "profile" tag.
func Write(_ Profile, _ string) error {
	return nil
}
