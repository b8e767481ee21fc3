// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
	"unsafe"
)

var EFI_GRAPHICS_OUTPUT_PROTOCOL_GUID = MustParseGUID("9042a9de-23dc-4a38-96fb-7aded080516a")

// PixelFormat represents an EFI_GRAPHICS_PIXEL_FORMAT.
type PixelFormat uint32

// EFI_GRAPHICS_PIXEL_FORMAT
const (
	PixelRedGreenBlueReserved8BitPerColor PixelFormat = iota
	PixelBlueGreenRedReserved8BitPerColor
	PixelBitMask
	PixelBltOnly
	PixelFormatMax
)

var pixelFormatNames = [...]string{
	PixelRedGreenBlueReserved8BitPerColor: "RGBX",
	PixelBlueGreenRedReserved8BitPerColor: "BGRX",
	PixelBitMask:                          "BitMask",
	PixelBltOnly:                          "BltOnly",
}

func (f PixelFormat) String() string {
	if f < PixelFormatMax {
		return pixelFormatNames[f]
	}

	return fmt.Sprintf("PixelFormat(%d)", uint32(f))
}

// graphicsOutputProtocol represents the EFI_GRAPHICS_OUTPUT_PROTOCOL layout.
type graphicsOutputProtocol struct {
	QueryMode uint64
	SetMode   uint64
	Blt       uint64
	Mode      uint64
}

// ModeInformation represents an EFI Graphics Output Mode Information instance.
type ModeInformation struct {
	Version              uint32
	HorizontalResolution uint32
	VerticalResolution   uint32
	PixelFormat          PixelFormat
	RedMask              uint32
	GreenMask            uint32
	BlueMask             uint32
	ReservedMask         uint32
	PixelsPerScanLine    uint32
}

// ProtocolMode represents an EFI Graphics Output Protocol Mode instance.
type ProtocolMode struct {
	MaxMode         uint32
	Mode            uint32
	Info            uint64
	SizeOfInfo      uint64
	FrameBufferBase uint64
	FrameBufferSize uint64
}

// GetInfo returns the EFI Graphics Output Mode information instance.
func (d *ProtocolMode) GetInfo() (m *ModeInformation, err error) {
	if d.SizeOfInfo < uint64(unsafe.Sizeof(ModeInformation{})) {
		return nil, fmt.Errorf("invalid mode information size (%d)", d.SizeOfInfo)
	}

	return view[ModeInformation](d.Info)
}

// GraphicsOutput represents an EFI Graphics Output Protocol instance.
type GraphicsOutput struct {
	base  uint64
	proto *graphicsOutputProtocol
}

// GUID returns the EFI Graphics Output Protocol GUID.
func (gop *GraphicsOutput) GUID() GUID {
	return EFI_GRAPHICS_OUTPUT_PROTOCOL_GUID
}

// Bind initializes the instance from an EFI Graphics Output Protocol
// interface pointer.
func (gop *GraphicsOutput) Bind(_ *BootServices, addr uint64) (err error) {
	if gop.proto, err = view[graphicsOutputProtocol](addr); err != nil {
		return
	}

	gop.base = addr

	return
}

// Address returns the EFI Graphics Output Protocol interface pointer.
func (gop *GraphicsOutput) Address() uint64 {
	return gop.base
}

// GetMode returns the EFI Graphics Output Mode instance.
func (gop *GraphicsOutput) GetMode() (pm *ProtocolMode, err error) {
	if gop.proto == nil {
		return nil, ErrInvalidAddress
	}

	return view[ProtocolMode](gop.proto.Mode)
}

// GetGraphicsOutput locates and returns the EFI Graphics Output Protocol
// instance.
func (s *BootServices) GetGraphicsOutput() (gop *GraphicsOutput, err error) {
	return Locate[GraphicsOutput](s)
}
