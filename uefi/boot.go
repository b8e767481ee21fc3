// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
	"unsafe"
)

// bootServicesTable represents the EFI_BOOT_SERVICES layout up to the last
// service used by this package.
type bootServicesTable struct {
	Header           TableHeader
	RaiseTPL         uint64
	RestoreTPL       uint64
	AllocatePages    uint64
	FreePages        uint64
	GetMemoryMap     uint64
	_                [24]uint64 // AllocatePool ... Stall
	SetWatchdogTimer uint64
	_                [7]uint64 // ConnectController ... LocateHandleBuffer
	LocateProtocol   uint64
}

// BootServices represents an EFI Boot Services instance.
type BootServices struct {
	firmware    Firmware
	table       *bootServicesTable
	base        uint64
	imageHandle uint64
}

func newBootServices(fw Firmware, base uint64, imageHandle uint64) (s *BootServices, err error) {
	t, err := view[bootServicesTable](base)

	if err != nil {
		return nil, fmt.Errorf("EFI Boot Services pointer is invalid, %w", err)
	}

	if !t.Header.Valid(bootServicesSignature, unsafe.Sizeof(*t)) {
		return nil, fmt.Errorf("EFI Boot Services, %w", ErrInvalidTable)
	}

	s = &BootServices{
		firmware:    fw,
		table:       t,
		base:        base,
		imageHandle: imageHandle,
	}

	return
}

// Header returns the EFI Boot Services table header.
func (s *BootServices) Header() *TableHeader {
	return &s.table.Header
}

// Address returns the EFI Boot Services table pointer.
func (s *BootServices) Address() uint64 {
	return s.base
}
