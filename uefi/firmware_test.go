// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"hash/crc32"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const arenaSize = 1 << 20

// arena emulates firmware owned memory, allocated outside of the Go heap.
type arena struct {
	mem []byte
	off int
}

func newArena(t *testing.T) *arena {
	mem, err := unix.Mmap(-1, 0, arenaSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	require.NoError(t, err)

	t.Cleanup(func() { unix.Munmap(mem) })

	return &arena{mem: mem}
}

func (a *arena) alloc(n int) unsafe.Pointer {
	a.off = (a.off + 15) &^ 15

	if a.off+n > len(a.mem) {
		panic("arena exhausted")
	}

	p := unsafe.Pointer(&a.mem[a.off])
	a.off += n

	return p
}

// place copies v in the arena, returning its address and a view over it.
func place[T any](a *arena, v T) (uint64, *T) {
	p := (*T)(a.alloc(int(unsafe.Sizeof(v))))
	*p = v

	return uint64(uintptr(unsafe.Pointer(p))), p
}

// wide places a NUL terminated UTF-16 string in the arena.
func (a *arena) wide(units ...uint16) WideString {
	p := a.alloc((len(units) + 1) * 2)
	copy(unsafe.Slice((*uint16)(p), len(units)+1), append(units, 0))

	return WideString(uintptr(p))
}

func peek64(addr uint64) uint64 {
	return *(*uint64)(unsafe.Pointer(uintptr(addr)))
}

func poke64(addr uint64, v uint64) {
	*(*uint64)(unsafe.Pointer(uintptr(addr))) = v
}

func poke32(addr uint64, v uint32) {
	*(*uint32)(unsafe.Pointer(uintptr(addr))) = v
}

func bytesAt(addr uint64, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), n)
}

// seal computes the table header CRC32.
func seal(h *TableHeader) {
	h.CRC32 = 0
	h.CRC32 = crc32.ChecksumIEEE(unsafe.Slice((*byte)(unsafe.Pointer(h)), h.HeaderSize))
}

type service func(args ...uint64) uint64

// fakeFirmware dispatches calls to Go functions registered under fake
// function pointer values.
type fakeFirmware struct {
	services map[uint64]service
	names    map[uint64]string
	calls    []string
}

func newFakeFirmware() *fakeFirmware {
	return &fakeFirmware{
		services: make(map[uint64]service),
		names:    make(map[uint64]string),
	}
}

func (fw *fakeFirmware) register(name string, fn service) uint64 {
	addr := uint64(0xfff00000 + len(fw.services)*0x10)

	fw.services[addr] = fn
	fw.names[addr] = name

	return addr
}

func (fw *fakeFirmware) Call(fn uint64, args ...uint64) uint64 {
	s, ok := fw.services[fn]

	if !ok {
		return uint64(EFI_UNSUPPORTED)
	}

	fw.calls = append(fw.calls, fw.names[fn])

	return s(args...)
}

// testEnv represents an emulated firmware environment.
type testEnv struct {
	t   *testing.T
	mem *arena
	fw  *fakeFirmware

	// tables
	systemTable     uint64
	st              *SystemTable
	boot            *bootServicesTable
	runtime         *runtimeServicesTable
	conOut          uint64
	conIn           uint64
	imageHandle     uint64
	vendor          WideString
	protocols       map[GUID]uint64
	locateStatus    Status
	outputStatus    Status
	keys            []InputKey
	output          []uint16
	cleared         int
	watchdog        [][]uint64
	resets          [][]uint64
	allocations     [][]uint64
	freed           [][]uint64
	allocateAddress uint64

	// memory map
	memoryMap      []byte
	descriptorSize uint64
	mapKey         uint64
	mapVersion     uint32
	mapStatus      Status
	mapSize        uint64
}

func newTestEnv(t *testing.T) (env *testEnv) {
	env = &testEnv{
		t:               t,
		mem:             newArena(t),
		fw:              newFakeFirmware(),
		protocols:       make(map[GUID]uint64),
		imageHandle:     0x1000,
		descriptorSize:  48,
		mapKey:          0x1234,
		mapVersion:      1,
		allocateAddress: 0x200000,
	}

	fw := env.fw

	conOut := simpleTextOutput{
		Reset:        fw.register("Reset", env.ok),
		OutputString: fw.register("OutputString", env.outputString),
		ClearScreen:  fw.register("ClearScreen", env.clearScreen),
	}

	conIn := simpleTextInput{
		Reset:         fw.register("Reset", env.ok),
		ReadKeyStroke: fw.register("ReadKeyStroke", env.readKeyStroke),
	}

	boot := bootServicesTable{
		Header: TableHeader{
			Signature:  bootServicesSignature,
			Revision:   2<<16 | 70,
			HeaderSize: uint32(unsafe.Sizeof(bootServicesTable{})),
		},
		AllocatePages:    fw.register("AllocatePages", env.allocatePages),
		FreePages:        fw.register("FreePages", env.freePages),
		GetMemoryMap:     fw.register("GetMemoryMap", env.getMemoryMap),
		SetWatchdogTimer: fw.register("SetWatchdogTimer", env.setWatchdogTimer),
		LocateProtocol:   fw.register("LocateProtocol", env.locateProtocol),
	}

	runtime := runtimeServicesTable{
		Header: TableHeader{
			Signature:  runtimeServicesSignature,
			Revision:   2<<16 | 70,
			HeaderSize: uint32(unsafe.Sizeof(runtimeServicesTable{})),
		},
		ResetSystem: fw.register("ResetSystem", env.resetSystem),
	}

	env.conOut, _ = place(env.mem, conOut)
	env.conIn, _ = place(env.mem, conIn)
	env.vendor = env.mem.wide('E', 'D', 'K', ' ', 'I', 'I')

	bootAddr, b := place(env.mem, boot)
	seal(&b.Header)
	env.boot = b

	runtimeAddr, r := place(env.mem, runtime)
	seal(&r.Header)
	env.runtime = r

	env.systemTable, env.st = place(env.mem, SystemTable{
		Header: TableHeader{
			Signature:  systemTableSignature,
			Revision:   2<<16 | 70,
			HeaderSize: uint32(unsafe.Sizeof(SystemTable{})),
		},
		FirmwareVendor:   uint64(env.vendor),
		FirmwareRevision: 0x10000,
		ConIn:            env.conIn,
		ConOut:           env.conOut,
		RuntimeServices:  runtimeAddr,
		BootServices:     bootAddr,
	})
	seal(&env.st.Header)

	return
}

// services returns an initialized services instance.
func (env *testEnv) services() *Services {
	s := &Services{}
	require.NoError(env.t, s.Init(env.fw, env.imageHandle, env.systemTable))

	return s
}

func (env *testEnv) ok(_ ...uint64) uint64 {
	return uint64(EFI_SUCCESS)
}

func (env *testEnv) outputString(args ...uint64) uint64 {
	if args[0] != env.conOut {
		return uint64(EFI_INVALID_PARAMETER)
	}

	if env.outputStatus != EFI_SUCCESS {
		return uint64(env.outputStatus)
	}

	for u := range WideString(args[1]).Units() {
		env.output = append(env.output, u)
	}

	return uint64(EFI_SUCCESS)
}

func (env *testEnv) clearScreen(args ...uint64) uint64 {
	if args[0] != env.conOut {
		return uint64(EFI_INVALID_PARAMETER)
	}

	env.cleared++

	return uint64(EFI_SUCCESS)
}

func (env *testEnv) readKeyStroke(args ...uint64) uint64 {
	if args[0] != env.conIn {
		return uint64(EFI_INVALID_PARAMETER)
	}

	if len(env.keys) == 0 {
		return uint64(EFI_NOT_READY)
	}

	*(*InputKey)(unsafe.Pointer(uintptr(args[1]))) = env.keys[0]
	env.keys = env.keys[1:]

	return uint64(EFI_SUCCESS)
}

func (env *testEnv) getMemoryMap(args ...uint64) uint64 {
	if len(args) != 5 {
		return uint64(EFI_INVALID_PARAMETER)
	}

	size := peek64(args[0])
	need := uint64(len(env.memoryMap))

	poke64(args[3], env.descriptorSize)
	poke32(args[4], env.mapVersion)

	if size < need {
		poke64(args[0], need)
		return uint64(EFI_BUFFER_TOO_SMALL)
	}

	if env.mapStatus != EFI_SUCCESS {
		return uint64(env.mapStatus)
	}

	copy(bytesAt(args[1], int(need)), env.memoryMap)

	if env.mapSize != 0 {
		need = env.mapSize
	}

	poke64(args[0], need)
	poke64(args[2], env.mapKey)

	return uint64(EFI_SUCCESS)
}

func (env *testEnv) locateProtocol(args ...uint64) uint64 {
	guid := *(*GUID)(unsafe.Pointer(uintptr(args[0])))

	if args[1] != 0 {
		return uint64(EFI_INVALID_PARAMETER)
	}

	if env.locateStatus != EFI_SUCCESS {
		return uint64(env.locateStatus)
	}

	addr, ok := env.protocols[guid]

	if !ok {
		return uint64(EFI_NOT_FOUND)
	}

	poke64(args[2], addr)

	return uint64(EFI_SUCCESS)
}

func (env *testEnv) allocatePages(args ...uint64) uint64 {
	env.allocations = append(env.allocations, args)

	if args[0] == AllocateAnyPages {
		poke64(args[3], env.allocateAddress)
	}

	return uint64(EFI_SUCCESS)
}

func (env *testEnv) freePages(args ...uint64) uint64 {
	env.freed = append(env.freed, args)
	return uint64(EFI_SUCCESS)
}

func (env *testEnv) setWatchdogTimer(args ...uint64) uint64 {
	env.watchdog = append(env.watchdog, args)
	return uint64(EFI_SUCCESS)
}

func (env *testEnv) resetSystem(args ...uint64) uint64 {
	env.resets = append(env.resets, args)
	return uint64(EFI_DEVICE_ERROR)
}

// descriptors returns a memory map buffer holding d at the given stride,
// padding bytes are filled with a marker value.
func descriptors(stride int, d ...MemoryDescriptor) []byte {
	buf := make([]byte, stride*len(d))

	for i := range buf {
		buf[i] = 0xaa
	}

	for i := range d {
		src := unsafe.Slice((*byte)(unsafe.Pointer(&d[i])), MemoryDescriptorSize)
		copy(buf[i*stride:], src)
	}

	return buf
}
