// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package report renders firmware information, as exposed by the uefi
// package, in human readable form.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/u-root/u-root/pkg/boot/bzimage"

	"github.com/usbarmory/go-loader/uefi"
)

// SystemTable returns the EFI System Table information.
func SystemTable(t *uefi.SystemTable) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "UEFI Revision ......: %s\n", t.Revision())
	fmt.Fprintf(&buf, "Firmware Vendor ....: %s\n", t.Vendor())
	fmt.Fprintf(&buf, "Firmware Revision ..: %#x\n", t.FirmwareRevision)
	fmt.Fprintf(&buf, "Header CRC32 .......: %#08x (valid: %v)\n", t.Header.CRC32, t.Header.VerifyCRC())
	fmt.Fprintf(&buf, "Console Output .....: %#x\n", t.ConOut)
	fmt.Fprintf(&buf, "Runtime Services ...: %#x\n", t.RuntimeServices)
	fmt.Fprintf(&buf, "Boot Services ......: %#x\n", t.BootServices)
	fmt.Fprintf(&buf, "Configuration Tables: %#x\n", t.ConfigurationTable)

	if c, err := t.ConfigurationTables(); err == nil {
		for _, e := range c {
			fmt.Fprintf(&buf, "  %s (%#x) %s\n", e.GUID, e.VendorTable, e.Name())
		}
	}

	return strings.TrimRight(buf.String(), "\n")
}

// MemoryMap returns the EFI Memory Map descriptors, one per line.
func MemoryMap(m *uefi.MemoryMap) string {
	var buf bytes.Buffer
	var free uint64

	fmt.Fprintf(&buf, "Type                Start            End              Pages            Attributes\n")

	for _, d := range m.All() {
		fmt.Fprintf(&buf, "%-19s %016x %016x %016x %016x\n",
			d.Type, d.PhysicalStart, d.PhysicalEnd()-1, d.NumberOfPages, d.Attribute)

		if d.Type == uefi.EfiConventionalMemory {
			free += d.NumberOfPages * uefi.PageSize
		}
	}

	fmt.Fprintf(&buf, "%d descriptors (stride %d, version %d, key %#x), %d MiB conventional memory",
		m.Len(), m.DescriptorSize, m.DescriptorVersion, m.MapKey, free>>20)

	return buf.String()
}

// E820Type returns the name of an E820 address range type.
func E820Type(e bzimage.E820Entry) string {
	switch e.MemType {
	case bzimage.RAM:
		return "RAM"
	case bzimage.Reserved:
		return "Reserved"
	case bzimage.ACPI:
		return "ACPI"
	case bzimage.NVS:
		return "NVS"
	case uefi.AddressRangePersistentMemory:
		return "Persistent"
	default:
		return fmt.Sprintf("Type(%d)", uint32(e.MemType))
	}
}

// E820 returns an E820 memory map, one entry per line.
func E820(m []bzimage.E820Entry) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Start            End              Type\n")

	for _, e := range m {
		fmt.Fprintf(&buf, "%016x %016x %s\n", e.Addr, e.Addr+e.Size-1, E820Type(e))
	}

	return strings.TrimRight(buf.String(), "\n")
}

// GraphicsMode returns the EFI Graphics Output Protocol mode information.
func GraphicsMode(pm *uefi.ProtocolMode) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Mode ...............: %d/%d\n", pm.Mode, pm.MaxMode)

	if info, err := pm.GetInfo(); err == nil {
		fmt.Fprintf(&buf, "Resolution .........: %dx%d\n", info.HorizontalResolution, info.VerticalResolution)
		fmt.Fprintf(&buf, "Pixel Format .......: %s\n", info.PixelFormat)
		fmt.Fprintf(&buf, "Pixels per Scan Line: %d\n", info.PixelsPerScanLine)
	}

	fmt.Fprintf(&buf, "Frame Buffer .......: %#x - %#x (%d bytes)",
		pm.FrameBufferBase, pm.FrameBufferBase+pm.FrameBufferSize, pm.FrameBufferSize)

	return buf.String()
}
