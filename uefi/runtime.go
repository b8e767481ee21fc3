// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
	"unsafe"
)

// EFI_RESET_TYPE
const (
	EfiResetCold = iota
	EfiResetWarm
	EfiResetShutdown
	EfiResetPlatformSpecific
)

// runtimeServicesTable represents the EFI_RUNTIME_SERVICES layout up to the
// last service used by this package.
type runtimeServicesTable struct {
	Header      TableHeader
	_           [10]uint64 // GetTime ... GetNextHighMonotonicCount
	ResetSystem uint64
}

// RuntimeServices represents an EFI Runtime Services instance.
type RuntimeServices struct {
	firmware Firmware
	table    *runtimeServicesTable
}

func newRuntimeServices(fw Firmware, base uint64) (s *RuntimeServices, err error) {
	t, err := view[runtimeServicesTable](base)

	if err != nil {
		return nil, fmt.Errorf("EFI Runtime Services pointer is invalid, %w", err)
	}

	if !t.Header.Valid(runtimeServicesSignature, unsafe.Sizeof(*t)) {
		return nil, fmt.Errorf("EFI Runtime Services, %w", ErrInvalidTable)
	}

	return &RuntimeServices{
		firmware: fw,
		table:    t,
	}, nil
}

// ResetSystem calls EFI_RUNTIME_SERVICES.ResetSystem(), on success the call
// does not return.
func (s *RuntimeServices) ResetSystem(resetType int) (err error) {
	if s == nil {
		return fmt.Errorf("EFI Runtime Services, %w", ErrInvalidTable)
	}

	status := s.firmware.Call(s.table.ResetSystem,
		uint64(resetType),
		uint64(EFI_SUCCESS),
		0,
		0,
	)

	return parseStatus("ResetSystem", status)
}
