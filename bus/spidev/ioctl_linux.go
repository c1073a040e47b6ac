//go:build linux && (386 || amd64 || arm || arm64 || riscv64 || loong64 || s390x)

package spidev

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl encoding for architectures using the asm-generic layout:
//
//	bits 0-7:   command number (nr)
//	bits 8-15:  ioctl type (type)
//	bits 16-29: argument size (size)
//	bits 30-31: direction (dir)

const (
	iocWrite = 1
	iocRead  = 2
)

const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits
)

// ioc constructs an ioctl number from direction, type, number, and size.
func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift)
}

// ior constructs a read ioctl number.
func ior(typ, nr, size uintptr) uintptr {
	return ioc(iocRead, typ, nr, size)
}

// iow constructs a write ioctl number.
func iow(typ, nr, size uintptr) uintptr {
	return ioc(iocWrite, typ, nr, size)
}

// spidev ioctl type character.
const spiIOCMagic = 'k'

// spidev ioctl command numbers.
const (
	ioctlMode        = 1
	ioctlLSBFirst    = 2
	ioctlBitsPerWord = 3
	ioctlMaxSpeedHz  = 4
)

var (
	ioctlRdMode        = ior(spiIOCMagic, ioctlMode, 1)
	ioctlWrMode        = iow(spiIOCMagic, ioctlMode, 1)
	ioctlWrLSBFirst    = iow(spiIOCMagic, ioctlLSBFirst, 1)
	ioctlWrBitsPerWord = iow(spiIOCMagic, ioctlBitsPerWord, 1)
	ioctlWrMaxSpeedHz  = iow(spiIOCMagic, ioctlMaxSpeedHz, 4)
)

// ioctlMessage returns SPI_IOC_MESSAGE(n).
func ioctlMessage(n int) uintptr {
	return iow(spiIOCMagic, 0, uintptr(n)*sizeofTransfer)
}

// transfer mirrors struct spi_ioc_transfer.
type transfer struct {
	txBuf          uint64 // Pointer to outbound data
	rxBuf          uint64 // Pointer to inbound buffer
	length         uint32 // Bytes in each buffer
	speedHz        uint32 // Clock override for this transfer
	delayUsecs     uint16 // Delay after this transfer
	bitsPerWord    uint8  // Word size override
	csChange       uint8  // Deselect before the next transfer
	txNbits        uint8
	rxNbits        uint8
	wordDelayUsecs uint8
	pad            uint8
}

// ioctlPtr performs an ioctl whose argument is a pointer.
func ioctlPtr(fd int, req uintptr, arg unsafe.Pointer) (int, error) {
	r, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return int(r), errno
	}
	return int(r), nil
}

// writeU8 writes a one-byte setting.
func writeU8(fd int, req uintptr, v uint8) error {
	_, err := ioctlPtr(fd, req, unsafe.Pointer(&v))
	return err
}

// readU8 reads a one-byte setting.
func readU8(fd int, req uintptr) (uint8, error) {
	var v uint8
	_, err := ioctlPtr(fd, req, unsafe.Pointer(&v))
	return v, err
}

// writeU32 writes a four-byte setting.
func writeU32(fd int, req uintptr, v uint32) error {
	_, err := ioctlPtr(fd, req, unsafe.Pointer(&v))
	return err
}
