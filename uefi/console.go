// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"encoding/binary"
	"errors"
	"io"
	"runtime"
	"unicode/utf16"
	"unicode/utf8"
)

// simpleTextInput represents the EFI_SIMPLE_TEXT_INPUT_PROTOCOL layout.
type simpleTextInput struct {
	Reset         uint64
	ReadKeyStroke uint64
	WaitForKey    uint64
}

// simpleTextOutput represents the EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL layout up
// to the last service used by this package.
type simpleTextOutput struct {
	Reset        uint64
	OutputString uint64
	_            [4]uint64 // TestString, QueryMode, SetMode, SetAttribute
	ClearScreen  uint64
}

// InputKey represents an EFI Input Key descriptor.
type InputKey struct {
	ScanCode    uint16
	UnicodeChar [2]byte
}

// Console implements the [io.ReadWriter] interface over EFI Simple Text
// Input/Output protocol.
type Console struct {
	// ForceLine controls whether line feeds (LF) should be preceded by a
	// carriage return (CR).
	ForceLine bool

	// ReplaceTabs controls whether Console I/O output should have Tab
	// characters replaced with a number of spaces.
	ReplaceTabs int

	// EFI_SIMPLE_TEXT_INPUT_PROTOCOL and EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL
	// instance pointers.
	In  uint64
	Out uint64

	// Firmware dispatches the protocol services.
	Firmware Firmware
}

func (c *Console) output() (*simpleTextOutput, error) {
	if c.Firmware == nil {
		return nil, errors.New("console firmware is not set")
	}

	return view[simpleTextOutput](c.Out)
}

func (c *Console) input() (*simpleTextInput, error) {
	if c.Firmware == nil {
		return nil, errors.New("console firmware is not set")
	}

	return view[simpleTextInput](c.In)
}

// ClearScreen calls EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL.ClearScreen().
func (c *Console) ClearScreen() (err error) {
	out, err := c.output()

	if err != nil {
		return
	}

	status := c.Firmware.Call(out.ClearScreen, c.Out)

	return parseStatus("ClearScreen", status)
}

// OutputString calls EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL.OutputString(), a NUL
// terminator is added to s if missing.
func (c *Console) OutputString(s []uint16) (err error) {
	var pin runtime.Pinner
	defer pin.Unpin()

	if len(s) == 0 || s[len(s)-1] != 0x00 {
		s = append(s, 0x00)
	}

	out, err := c.output()

	if err != nil {
		return
	}

	status := c.Firmware.Call(
		out.OutputString,
		c.Out,
		ptrval(&pin, &s[0]),
	)

	return parseStatus("OutputString", status)
}

// WriteRune writes a single character to the console.
func (c *Console) WriteRune(r rune) error {
	return c.OutputString(utf16.AppendRune(make([]uint16, 0, 3), r))
}

// Input calls EFI_SIMPLE_TEXT_INPUT_PROTOCOL.ReadKeyStroke().
func (c *Console) Input(k *InputKey) (status uint64) {
	var pin runtime.Pinner
	defer pin.Unpin()

	in, err := c.input()

	if err != nil {
		return uint64(EFI_UNSUPPORTED)
	}

	return c.Firmware.Call(
		in.ReadKeyStroke,
		c.In,
		ptrval(&pin, k),
	)
}

// Read available data to buffer from console, key strokes which do not carry
// a Unicode character are discarded.
func (c *Console) Read(p []byte) (n int, err error) {
	k := &InputKey{}

	for n+utf8.UTFMax <= len(p) {
		status := Status(c.Input(k))

		switch {
		case status == EFI_SUCCESS:
		case status == EFI_NOT_READY:
			return
		default:
			return n, parseStatus("ReadKeyStroke", uint64(status))
		}

		if r := rune(binary.LittleEndian.Uint16(k.UnicodeChar[:])); r != 0 {
			n += utf8.EncodeRune(p[n:], r)
		}
	}

	return
}

// Write data from buffer to console.
func (c *Console) Write(p []byte) (n int, err error) {
	var s []uint16

	if len(p) == 0 {
		return
	}

	// We receive an UTF-8 string but we can output only UTF-16 ones.
	for _, r := range string(p) {
		switch {
		case r == '\t' && c.ReplaceTabs > 0:
			for range c.ReplaceTabs {
				s = append(s, ' ')
			}

			continue
		case r == '\n' && c.ForceLine:
			s = append(s, '\r')
		}

		s = utf16.AppendRune(s, r)
	}

	if err = c.OutputString(s); err != nil {
		return
	}

	return len(p), nil
}

var _ io.ReadWriter = &Console{}
