// Package spidev provides a [bus.Handle] for Linux spidev character devices.
//
// Devices are opened with [Open], which applies a [bus.Config] through the
// SPI_IOC_WR_* ioctls, and exchanged with through SPI_IOC_MESSAGE. It is pure
// Go with no cgo dependencies.
//
// # Requirements
//
// The user running the tool needs read/write access to /dev/spidevB.C. This
// typically requires either:
//   - Running as root
//   - A udev rule granting access to the user's group
//
// # Pre-delay
//
// A pre-delay cannot be produced by sleeping in user space, because it must
// fall between chip-select assertion and the first clock edge. [Device]
// chains a zero-length transfer carrying delay_usecs in front of the data
// transfer, leaving cs_change clear, so the kernel holds chip-select and
// waits before clocking. The kernel may wait a few microseconds longer than
// requested.
//
// # Discovery
//
// [Scan] lists the spidev nodes registered in sysfs, with the driver and
// modalias of the underlying SPI device.
//
// # Platforms
//
// Exchanges are supported on Linux architectures using the asm-generic ioctl
// encoding (386, amd64, arm, arm64, riscv64, loong64, s390x). Elsewhere
// [Open] fails with [pkg.ErrNotSupported].
package spidev
