// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"runtime"
)

// EFI_ALLOCATE_TYPE
const (
	AllocateAnyPages = iota
	AllocateMaxAddress
	AllocateAddress
	MaxAllocateType
)

// AllocatePages calls EFI_BOOT_SERVICES.AllocatePages(), the size is rounded
// up to the EFI page size. The returned address is the base of the allocated
// range, its meaning on input depends on allocateType.
func (s *BootServices) AllocatePages(allocateType int, memoryType MemoryType, size int, physicalAddress uint64) (addr uint64, err error) {
	var pin runtime.Pinner
	defer pin.Unpin()

	addr = physicalAddress
	pages := (uint64(size) + PageSize - 1) / PageSize

	status := s.firmware.Call(s.table.AllocatePages,
		uint64(allocateType),
		uint64(memoryType),
		pages,
		ptrval(&pin, &addr),
	)

	if err = parseStatus("AllocatePages", status); err != nil {
		return 0, err
	}

	return
}

// FreePages calls EFI_BOOT_SERVICES.FreePages().
func (s *BootServices) FreePages(physicalAddress uint64, size int) error {
	pages := (uint64(size) + PageSize - 1) / PageSize

	status := s.firmware.Call(s.table.FreePages,
		physicalAddress,
		pages,
	)

	return parseStatus("FreePages", status)
}
