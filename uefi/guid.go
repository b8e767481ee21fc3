// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// GUID represents an EFI GUID (Globally Unique Identifier) as a 16-byte array
// with the native EFI byte order.
//
// Note: The registry string format (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx)
// reorders the first three fields as little-endian. Internally, we keep the
// native EFI layout (as used in memory), i.e. 16 bytes where the first three
// fields are little-endian values.
type GUID [16]byte

// ParseGUID parses a GUID in registry string format into a native EFI GUID.
func ParseGUID(s string) (g GUID, err error) {
	u, err := uuid.Parse(s)

	if err != nil {
		return GUID{}, fmt.Errorf("invalid GUID format: %q, %v", s, err)
	}

	binary.LittleEndian.PutUint32(g[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(g[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(g[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(g[8:], u[8:])

	return
}

// MustParseGUID is like ParseGUID but panics on error. It is intended for package
// level GUID declarations.
func MustParseGUID(s string) (g GUID) {
	var err error

	if g, err = ParseGUID(s); err != nil {
		panic(err)
	}

	return
}

// String returns the registry format string representation of the GUID.
// https://uefi.org/specs/UEFI/2.10/Apx_A_GUID_and_Time_Formats.html
func (g GUID) String() string {
	// First three fields are little-endian 32/16/16
	return fmt.Sprintf("%08x-%04x-%04x-%x-%x",
		binary.LittleEndian.Uint32(g[0:4]),
		binary.LittleEndian.Uint16(g[4:6]),
		binary.LittleEndian.Uint16(g[6:8]),
		g[8:10],
		g[10:])
}
