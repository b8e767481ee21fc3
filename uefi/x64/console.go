// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64

package x64

import (
	"io"
	_ "unsafe"

	"github.com/usbarmory/go-loader/uefi"
)

// Console represents the early UEFI services console for pre UEFI.Init()
// standard output.
var Console = &uefi.Console{
	ForceLine:   true,
	ReplaceTabs: 8,
	Firmware:    firmware,
}

// NUL terminated output buffers
var (
	crlf = []uint16{0x0d, 0x0a, 0x00}
	char = []uint16{0x00, 0x00}
)

//go:linkname printk runtime.printk
func printk(c byte) {
	UART0.Tx(c)

	if c == 0x0a && Console.ForceLine { // LF
		Console.OutputString(crlf) // CR LF
		return
	}

	char[0] = uint16(c)
	Console.OutputString(char)
}

type serial struct{}

func (serial) Write(p []byte) (int, error) {
	for _, c := range p {
		UART0.Tx(c)
	}

	return len(p), nil
}

// Serial represents the serial port output.
var Serial io.Writer = serial{}
