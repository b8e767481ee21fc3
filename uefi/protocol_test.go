// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) installGraphicsOutput() (mode *ProtocolMode) {
	infoAddr, _ := place(env.mem, ModeInformation{
		HorizontalResolution: 1024,
		VerticalResolution:   768,
		PixelFormat:          PixelBlueGreenRedReserved8BitPerColor,
		PixelsPerScanLine:    1024,
	})

	modeAddr, mode := place(env.mem, ProtocolMode{
		MaxMode:         3,
		Mode:            1,
		Info:            infoAddr,
		SizeOfInfo:      36,
		FrameBufferBase: 0x80000000,
		FrameBufferSize: 1024 * 768 * 4,
	})

	addr, _ := place(env.mem, graphicsOutputProtocol{
		QueryMode: env.fw.register("QueryMode", env.ok),
		SetMode:   env.fw.register("SetMode", env.ok),
		Blt:       env.fw.register("Blt", env.ok),
		Mode:      modeAddr,
	})

	env.protocols[EFI_GRAPHICS_OUTPUT_PROTOCOL_GUID] = addr

	return
}

func TestLocateGraphicsOutput(t *testing.T) {
	env := newTestEnv(t)
	env.installGraphicsOutput()

	gop, err := env.services().Boot.GetGraphicsOutput()
	require.NoError(t, err)
	assert.Equal(t, env.protocols[EFI_GRAPHICS_OUTPUT_PROTOCOL_GUID], gop.Address())

	mode, err := gop.GetMode()
	require.NoError(t, err)

	assert.EqualValues(t, 3, mode.MaxMode)
	assert.EqualValues(t, 1, mode.Mode)
	assert.EqualValues(t, 0x80000000, mode.FrameBufferBase)
	assert.EqualValues(t, 1024*768*4, mode.FrameBufferSize)

	info, err := mode.GetInfo()
	require.NoError(t, err)

	assert.EqualValues(t, 1024, info.HorizontalResolution)
	assert.EqualValues(t, 768, info.VerticalResolution)
	assert.Equal(t, "BGRX", info.PixelFormat.String())
}

func TestModeInformationSize(t *testing.T) {
	env := newTestEnv(t)
	mode := env.installGraphicsOutput()
	mode.SizeOfInfo = 16

	_, err := mode.GetInfo()
	assert.Error(t, err)
}

func TestLocateNotFound(t *testing.T) {
	env := newTestEnv(t)

	gop, err := Locate[GraphicsOutput](env.services().Boot)
	assert.Nil(t, gop)
	assert.ErrorIs(t, err, ErrProtocolNotFound)
	assert.ErrorIs(t, err, EFI_NOT_FOUND)
	assert.ErrorContains(t, err, "9042a9de-23dc-4a38-96fb-7aded080516a")
}

func TestLocateNullInterface(t *testing.T) {
	env := newTestEnv(t)
	env.protocols[EFI_GRAPHICS_OUTPUT_PROTOCOL_GUID] = 0

	_, err := Locate[GraphicsOutput](env.services().Boot)
	assert.ErrorIs(t, err, ErrProtocolNotFound)
}

func TestLocateStatus(t *testing.T) {
	env := newTestEnv(t)
	env.installGraphicsOutput()
	env.locateStatus = EFI_DEVICE_ERROR

	_, err := env.services().Boot.GetGraphicsOutput()
	assert.ErrorIs(t, err, EFI_DEVICE_ERROR)
	assert.NotErrorIs(t, err, ErrProtocolNotFound)
}

// testProtocol is a protocol binding defined outside of this package
// bindings.
type testProtocol struct {
	addr uint64
}

var testProtocolGUID = MustParseGUID("387477c1-69c7-11d2-8e39-00a0c969723b")

func (p *testProtocol) GUID() GUID {
	return testProtocolGUID
}

func (p *testProtocol) Bind(_ *BootServices, addr uint64) error {
	p.addr = addr
	return nil
}

func TestLocateGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.protocols[testProtocolGUID] = 0xcafe0000

	p, err := Locate[testProtocol](env.services().Boot)
	require.NoError(t, err)
	assert.EqualValues(t, 0xcafe0000, p.addr)

	addr, err := env.services().Boot.LocateProtocol(testProtocolGUID)
	require.NoError(t, err)
	assert.EqualValues(t, 0xcafe0000, addr)
}
