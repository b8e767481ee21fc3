// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64

package x64

// defined in call_amd64.s
//
//go:noescape
func callFn(fn uint64, n int, args *uint64) (status uint64)

// defined in x64.s
func halt()

// minimum number of arguments loaded by callFn in registers
const regArgs = 4

// Firmware implements the UEFI x64 calling convention (Microsoft x64 ABI).
type Firmware struct{}

var firmware = &Firmware{}

// Call invokes the firmware function at address fn.
func (fw *Firmware) Call(fn uint64, args ...uint64) (status uint64) {
	var pad [regArgs]uint64

	if len(args) < regArgs {
		args = append(pad[:0:regArgs], args...)[:regArgs]
	}

	return callFn(fn, len(args), &args[0])
}

// Halt suspends the CPU indefinitely.
func Halt() {
	halt()
}
