// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package uefi implements a driver for the Unified Extensible Firmware
// Interface (UEFI) following the specifications at:
//
//	https://uefi.org/specs/UEFI/2.10/
//
// Firmware tables are accessed as typed views over firmware owned memory,
// whose layout is verified at build time against the offsets mandated by the
// UEFI specification (see layout.go). Firmware services are invoked through
// the [Firmware] interface.
//
// Outside of tests this package is meant to be used with `GOOS=tamago` as
// supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package uefi

import (
	"errors"
	"fmt"
	"hash/crc32"
	"runtime"
	"unsafe"
)

// EFI Table Header Signatures
const (
	systemTableSignature     = 0x5453595320494249 // TSYS IBI
	bootServicesSignature    = 0x56524553544f4f42 // VRES TOOB
	runtimeServicesSignature = 0x56524553544e5552 // VRES TNUR
)

// crcOffset is the byte offset of the CRC32 field within a TableHeader.
const crcOffset = 16

// Firmware represents the platform firmware calling convention. Call invokes
// the firmware function at address fn, passing args as the function
// arguments, and returns the EFI_STATUS value.
type Firmware interface {
	Call(fn uint64, args ...uint64) (status uint64)
}

// This function helps preparing Firmware.Call arguments, allowing a single
// call for all EFI services.
//
// Go pointers handed over to firmware are pinned, the caller must Unpin the
// argument pinner once the call returns.
func ptrval(pin *runtime.Pinner, ptr any) uint64 {
	var p unsafe.Pointer

	switch v := ptr.(type) {
	case *uint64:
		p = unsafe.Pointer(v)
	case *uint32:
		p = unsafe.Pointer(v)
	case *uint16:
		p = unsafe.Pointer(v)
	case *byte:
		p = unsafe.Pointer(v)
	case *GUID:
		p = unsafe.Pointer(v)
	case *InputKey:
		p = unsafe.Pointer(v)
	default:
		panic("internal error, invalid ptrval")
	}

	pin.Pin(ptr)

	return uint64(uintptr(p))
}

// view returns a typed, non-owning, view over firmware memory at addr.
func view[T any](addr uint64) (*T, error) {
	var t T

	if addr == 0 {
		return nil, ErrInvalidAddress
	}

	if addr%uint64(unsafe.Alignof(t)) != 0 {
		return nil, fmt.Errorf("%w, %#x is misaligned", ErrInvalidAddress, addr)
	}

	return (*T)(unsafe.Pointer(uintptr(addr))), nil
}

// TableHeader represents the data structure that precedes all of the standard
// EFI table types.
type TableHeader struct {
	Signature  uint64
	Revision   uint32
	HeaderSize uint32
	CRC32      uint32
	Reserved   uint32
}

// Valid returns whether the header carries the expected signature and
// declares a table size covering at least n bytes.
func (h *TableHeader) Valid(signature uint64, n uintptr) bool {
	return h.Signature == signature && uintptr(h.HeaderSize) >= n
}

// VerifyCRC computes the CRC32 of the table, as delimited by its declared
// size, and compares it against the header value. The header must be a view
// over firmware memory and not a copy.
func (h *TableHeader) VerifyCRC() bool {
	if h.HeaderSize < uint32(unsafe.Sizeof(*h)) {
		return false
	}

	buf := make([]byte, h.HeaderSize)
	copy(buf, unsafe.Slice((*byte)(unsafe.Pointer(h)), h.HeaderSize))
	clear(buf[crcOffset : crcOffset+4])

	return crc32.ChecksumIEEE(buf) == h.CRC32
}

// SystemTable represents the EFI System Table, containing pointers to the
// runtime and boot services tables.
type SystemTable struct {
	Header               TableHeader
	FirmwareVendor       uint64
	FirmwareRevision     uint32
	_                    uint32
	ConsoleInHandle      uint64
	ConIn                uint64
	ConsoleOutHandle     uint64
	ConOut               uint64
	StandardErrorHandle  uint64
	StdErr               uint64
	RuntimeServices      uint64
	BootServices         uint64
	NumberOfTableEntries uint64
	ConfigurationTable   uint64
}

// Vendor returns the firmware vendor string.
func (d *SystemTable) Vendor() WideString {
	return WideString(d.FirmwareVendor)
}

// Revision returns the UEFI specification revision the firmware claims
// compliance with, in major.minor format.
func (d *SystemTable) Revision() string {
	major := d.Header.Revision >> 16
	minor := d.Header.Revision & 0xffff

	if minor%10 == 0 {
		return fmt.Sprintf("%d.%d", major, minor/10)
	}

	return fmt.Sprintf("%d.%d.%d", major, minor/10, minor%10)
}

// Services represents the UEFI services instance.
type Services struct {
	// EFI System Table instance
	SystemTable *SystemTable

	// UEFI services
	Console *Console
	Boot    *BootServices
	Runtime *RuntimeServices

	firmware    Firmware
	imageHandle uint64
	systemTable uint64
}

// Init initializes an UEFI services instance using the argument pointers.
func (s *Services) Init(fw Firmware, imageHandle uint64, systemTable uint64) (err error) {
	if fw == nil {
		return errors.New("invalid firmware interface")
	}

	s.firmware = fw
	s.imageHandle = imageHandle
	s.systemTable = systemTable

	if s.SystemTable, err = view[SystemTable](systemTable); err != nil {
		return fmt.Errorf("EFI System Table pointer is invalid, %w", err)
	}

	if !s.SystemTable.Header.Valid(systemTableSignature, unsafe.Sizeof(SystemTable{})) {
		return fmt.Errorf("EFI System Table, %w", ErrInvalidTable)
	}

	s.Console = &Console{
		ForceLine:   true,
		ReplaceTabs: 8,
		In:          s.SystemTable.ConIn,
		Out:         s.SystemTable.ConOut,
		Firmware:    fw,
	}

	if s.Boot, err = newBootServices(fw, s.SystemTable.BootServices, imageHandle); err != nil {
		return
	}

	// Runtime Services are not required by the loader, their absence is
	// reported only when used.
	s.Runtime, _ = newRuntimeServices(fw, s.SystemTable.RuntimeServices)

	return
}

// ImageHandle returns the UEFI image handle pointer.
func (s *Services) ImageHandle() uint64 {
	return s.imageHandle
}

// Address returns the EFI System Table pointer.
func (s *Services) Address() uint64 {
	return s.systemTable
}
