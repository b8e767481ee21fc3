// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"cmp"
	"fmt"
	"iter"
	"runtime"
	"slices"
	"unsafe"

	"github.com/u-root/u-root/pkg/boot/bzimage"
)

const (
	// MemoryMapCapacity is the fixed size of the memory map buffer, it
	// bounds the number of memory regions which can be represented.
	MemoryMapCapacity = 16 * 1024

	// MemoryDescriptorSize is the size of the EFI_MEMORY_DESCRIPTOR
	// fields known to this package, firmware may report a larger stride.
	MemoryDescriptorSize = 40
)

// Advanced Configuration and Power Interface Specification (ACPI)
// Version 6.0 - Table 15-312 Address Range Types12
const AddressRangePersistentMemory = 7

// PageSize represents the EFI page size in bytes
const PageSize = 4096 // 4 KiB

// MemoryType represents an EFI_MEMORY_TYPE.
type MemoryType uint32

// EFI_MEMORY_TYPE
const (
	EfiReservedMemoryType MemoryType = iota
	EfiLoaderCode
	EfiLoaderData
	EfiBootServicesCode
	EfiBootServicesData
	EfiRuntimeServicesCode
	EfiRuntimeServicesData
	EfiConventionalMemory
	EfiUnusableMemory
	EfiACPIReclaimMemory
	EfiACPIMemoryNVS
	EfiMemoryMappedIO
	EfiMemoryMappedIOPortSpace
	EfiPalCode
	EfiPersistentMemory
	EfiUnacceptedMemoryType
	EfiMaxMemoryType
)

var memoryTypeNames = [...]string{
	EfiReservedMemoryType:      "Reserved",
	EfiLoaderCode:              "LoaderCode",
	EfiLoaderData:              "LoaderData",
	EfiBootServicesCode:        "BootServicesCode",
	EfiBootServicesData:        "BootServicesData",
	EfiRuntimeServicesCode:     "RuntimeServicesCode",
	EfiRuntimeServicesData:     "RuntimeServicesData",
	EfiConventionalMemory:      "Conventional",
	EfiUnusableMemory:          "Unusable",
	EfiACPIReclaimMemory:       "ACPIReclaim",
	EfiACPIMemoryNVS:           "ACPINVS",
	EfiMemoryMappedIO:          "MMIO",
	EfiMemoryMappedIOPortSpace: "MMIOPortSpace",
	EfiPalCode:                 "PalCode",
	EfiPersistentMemory:        "Persistent",
	EfiUnacceptedMemoryType:    "Unaccepted",
}

// String returns the memory type name.
func (t MemoryType) String() string {
	switch {
	case t < EfiMaxMemoryType:
		return memoryTypeNames[t]
	case t >= 0x80000000:
		return fmt.Sprintf("OSV(%#x)", uint32(t))
	case t >= 0x70000000:
		return fmt.Sprintf("OEM(%#x)", uint32(t))
	default:
		return fmt.Sprintf("MemoryType(%d)", uint32(t))
	}
}

// EFI_MEMORY_DESCRIPTOR Attribute bits
const (
	EFI_MEMORY_UC            = 0x0000000000000001
	EFI_MEMORY_WC            = 0x0000000000000002
	EFI_MEMORY_WT            = 0x0000000000000004
	EFI_MEMORY_WB            = 0x0000000000000008
	EFI_MEMORY_UCE           = 0x0000000000000010
	EFI_MEMORY_WP            = 0x0000000000001000
	EFI_MEMORY_RP            = 0x0000000000002000
	EFI_MEMORY_XP            = 0x0000000000004000
	EFI_MEMORY_NV            = 0x0000000000008000
	EFI_MEMORY_MORE_RELIABLE = 0x0000000000010000
	EFI_MEMORY_RO            = 0x0000000000020000
	EFI_MEMORY_SP            = 0x0000000000040000
	EFI_MEMORY_CPU_CRYPTO    = 0x0000000000080000
	EFI_MEMORY_RUNTIME       = 0x8000000000000000
)

// MemoryDescriptor represents an EFI Memory Descriptor
type MemoryDescriptor struct {
	Type          MemoryType
	_             uint32
	PhysicalStart uint64
	VirtualStart  uint64
	NumberOfPages uint64
	Attribute     uint64
}

// PhysicalEnd returns the descriptor physical end address (exclusive).
func (d *MemoryDescriptor) PhysicalEnd() uint64 {
	return d.PhysicalStart + d.NumberOfPages*PageSize
}

// Size returns the descriptor size.
func (d *MemoryDescriptor) Size() int {
	return int(d.NumberOfPages * PageSize)
}

// E820 converts an EFI Memory Map entry to an x86 E820 one suitable for use
// after exiting EFI Boot Services.
func (d *MemoryDescriptor) E820() (e bzimage.E820Entry) {
	e = bzimage.E820Entry{
		Addr: d.PhysicalStart,
		Size: d.NumberOfPages * PageSize,
	}

	// Unified Extensible Firmware Interface (UEFI) Specification
	// Version 2.10 - Table 7.10: Memory Type Usage after ExitBootServices()
	switch d.Type {
	case EfiLoaderCode, EfiLoaderData, EfiBootServicesCode, EfiBootServicesData, EfiConventionalMemory:
		e.MemType = bzimage.RAM
	case EfiPersistentMemory:
		e.MemType = AddressRangePersistentMemory
	case EfiACPIReclaimMemory:
		e.MemType = bzimage.ACPI
	case EfiACPIMemoryNVS:
		e.MemType = bzimage.NVS
	default:
		e.MemType = bzimage.Reserved
	}

	return
}

// MemoryMap represents an EFI Memory Map snapshot, descriptors are stored in
// a fixed capacity buffer as returned by firmware.
//
// The snapshot must not be modified once populated, descriptors yielded by
// its iterators are views into its buffer.
type MemoryMap struct {
	// MapSize is the size in bytes of the populated buffer area.
	MapSize uint64
	// MapKey identifies the current memory map state.
	MapKey uint64
	// DescriptorSize is the stride between descriptors.
	DescriptorSize uint64
	// DescriptorVersion is the EFI_MEMORY_DESCRIPTOR version.
	DescriptorVersion uint32
	_                 uint32

	buf [MemoryMapCapacity]byte
}

func (m *MemoryMap) validate() error {
	switch {
	case m.MapSize > MemoryMapCapacity:
		return fmt.Errorf("%w (%d bytes required)", ErrCapacityExceeded, m.MapSize)
	case m.DescriptorSize < MemoryDescriptorSize || m.DescriptorSize%8 != 0:
		return fmt.Errorf("%w, invalid descriptor size %d", ErrInvalidMemoryMap, m.DescriptorSize)
	case m.MapSize%m.DescriptorSize != 0:
		return fmt.Errorf("%w, size %d is not a multiple of descriptor size %d", ErrInvalidMemoryMap, m.MapSize, m.DescriptorSize)
	}

	return nil
}

// ParseMemoryMap returns a memory map snapshot from a buffer holding
// descriptorSize spaced EFI Memory Descriptors.
func ParseMemoryMap(buf []byte, descriptorSize uint64, version uint32) (m *MemoryMap, err error) {
	m = &MemoryMap{
		MapSize:           uint64(len(buf)),
		DescriptorSize:    descriptorSize,
		DescriptorVersion: version,
	}

	if err = m.validate(); err != nil {
		return nil, err
	}

	copy(m.buf[:], buf)

	return
}

// Len returns the number of descriptors in the memory map.
func (m *MemoryMap) Len() int {
	if m.DescriptorSize == 0 {
		return 0
	}

	return int(m.MapSize / m.DescriptorSize)
}

// Bytes returns the populated memory map buffer area.
func (m *MemoryMap) Bytes() []byte {
	return m.buf[:min(m.MapSize, MemoryMapCapacity)]
}

// All returns an iterator over the memory map descriptors and their index,
// the buffer is walked using the firmware reported descriptor size.
func (m *MemoryMap) All() iter.Seq2[int, *MemoryDescriptor] {
	return func(yield func(int, *MemoryDescriptor) bool) {
		if m.DescriptorSize < MemoryDescriptorSize {
			return
		}

		for i, off := 0, uint64(0); off < m.MapSize; i, off = i+1, off+m.DescriptorSize {
			if off+MemoryDescriptorSize > uint64(len(m.buf)) {
				return
			}

			d := (*MemoryDescriptor)(unsafe.Pointer(&m.buf[off]))

			if !yield(i, d) {
				return
			}
		}
	}
}

// Visit calls fn for each memory map descriptor until it returns false.
func (m *MemoryMap) Visit(fn func(d *MemoryDescriptor) bool) {
	for _, d := range m.All() {
		if !fn(d) {
			return
		}
	}
}

// E820 converts the EFI Memory Map to an x86 E820 one, sorted by address
// with adjacent entries of the same type merged.
func (m *MemoryMap) E820() (merged []bzimage.E820Entry) {
	var e []bzimage.E820Entry

	for _, d := range m.All() {
		if d.NumberOfPages == 0 {
			continue
		}

		e = append(e, d.E820())
	}

	slices.SortFunc(e, func(a, b bzimage.E820Entry) int {
		return cmp.Compare(a.Addr, b.Addr)
	})

	if len(e) == 0 {
		return
	}

	merged = append(merged, e[0])

	for _, entry := range e[1:] {
		last := &merged[len(merged)-1]

		if last.MemType == entry.MemType && last.Addr+last.Size == entry.Addr {
			last.Size += entry.Size
			continue
		}

		merged = append(merged, entry)
	}

	return
}

// GetMemoryMap calls EFI_BOOT_SERVICES.GetMemoryMap().
func (s *BootServices) GetMemoryMap() (m *MemoryMap, err error) {
	var pin runtime.Pinner
	defer pin.Unpin()

	m = &MemoryMap{
		MapSize: MemoryMapCapacity,
	}

	status := s.firmware.Call(s.table.GetMemoryMap,
		ptrval(&pin, &m.MapSize),
		ptrval(&pin, &m.buf[0]),
		ptrval(&pin, &m.MapKey),
		ptrval(&pin, &m.DescriptorSize),
		ptrval(&pin, &m.DescriptorVersion),
	)

	if Status(status) == EFI_BUFFER_TOO_SMALL {
		return nil, fmt.Errorf("%w (%d bytes required), %w",
			ErrCapacityExceeded, m.MapSize, parseStatus("GetMemoryMap", status))
	}

	if err = parseStatus("GetMemoryMap", status); err != nil {
		return nil, err
	}

	if err = m.validate(); err != nil {
		return nil, err
	}

	return
}
