// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"fmt"
	"runtime"
)

// Protocol is the constraint satisfied by pointers to protocol bindings, it
// associates a binding type with its EFI protocol GUID.
type Protocol[T any] interface {
	*T

	// GUID returns the protocol interface identifier.
	GUID() GUID
	// Bind initializes the binding from the protocol interface pointer.
	Bind(s *BootServices, addr uint64) error
}

// LocateProtocol calls EFI_BOOT_SERVICES.LocateProtocol() and returns the
// first protocol interface pointer matching guid.
func (s *BootServices) LocateProtocol(guid GUID) (addr uint64, err error) {
	var pin runtime.Pinner
	defer pin.Unpin()

	status := s.firmware.Call(s.table.LocateProtocol,
		ptrval(&pin, &guid),
		0,
		ptrval(&pin, &addr),
	)

	if err = parseStatus("LocateProtocol", status); err != nil {
		if errors.Is(err, EFI_NOT_FOUND) {
			err = fmt.Errorf("%w (%s), %w", ErrProtocolNotFound, guid, err)
		}

		return 0, err
	}

	if addr == 0 {
		return 0, fmt.Errorf("%w (%s), null interface", ErrProtocolNotFound, guid)
	}

	return
}

// Locate returns the binding of the first protocol instance matching the GUID
// of the binding type.
func Locate[T any, P Protocol[T]](s *BootServices) (p P, err error) {
	p = P(new(T))

	addr, err := s.LocateProtocol(p.GUID())

	if err != nil {
		return nil, err
	}

	if err = p.Bind(s, addr); err != nil {
		return nil, err
	}

	return
}
