package spidev

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// Device Discovery
// =============================================================================

// Info describes a spidev node discovered in sysfs.
type Info struct {
	Name       string // Node name, e.g. "spidev0.1"
	Path       string // Device node path, e.g. "/dev/spidev0.1"
	Bus        int    // SPI bus (controller) number
	ChipSelect int    // Chip-select line on that bus
	Driver     string // Driver bound to the underlying SPI device
	Modalias   string // Modalias of the underlying SPI device
}

// Scan lists the spidev nodes registered under [SysfsClassPath].
func Scan() ([]Info, error) {
	return ScanDir(SysfsClassPath)
}

// ScanDir lists the spidev nodes registered under root, sorted by bus then
// chip select. Entries whose names do not follow spidevB.C are skipped.
func ScanDir(root string) ([]Info, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var devices []Info
	for _, entry := range entries {
		name := entry.Name()
		busNum, cs, ok := parseNodeName(name)
		if !ok {
			continue
		}

		info := Info{
			Name:       name,
			Path:       filepath.Join(DevfsPath, name),
			Bus:        busNum,
			ChipSelect: cs,
		}

		devPath := filepath.Join(root, name, "device")
		if target, err := os.Readlink(filepath.Join(devPath, "driver")); err == nil {
			info.Driver = filepath.Base(target)
		}
		if alias, err := readSysfsString(filepath.Join(devPath, "modalias")); err == nil {
			info.Modalias = alias
		}

		devices = append(devices, info)
	}

	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Bus != devices[j].Bus {
			return devices[i].Bus < devices[j].Bus
		}
		return devices[i].ChipSelect < devices[j].ChipSelect
	})
	return devices, nil
}

// parseNodeName extracts bus and chip-select numbers from "spidevB.C".
func parseNodeName(name string) (busNum, cs int, ok bool) {
	rest, found := strings.CutPrefix(name, "spidev")
	if !found {
		return 0, 0, false
	}
	b, c, found := strings.Cut(rest, ".")
	if !found {
		return 0, 0, false
	}
	bv, err := strconv.ParseUint(b, 10, 16)
	if err != nil {
		return 0, 0, false
	}
	cv, err := strconv.ParseUint(c, 10, 16)
	if err != nil {
		return 0, 0, false
	}
	return int(bv), int(cv), true
}

// readSysfsString reads a string from a sysfs attribute file.
func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
