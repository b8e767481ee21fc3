// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import "unsafe"

// Build time layout checks, an invalid array index constant fails
// compilation whenever a field offset differs from the one defined by the
// UEFI specification.
func _() {
	var x [1]struct{}

	// EFI_SYSTEM_TABLE
	_ = x[unsafe.Offsetof(SystemTable{}.ConIn)-48]
	_ = x[unsafe.Offsetof(SystemTable{}.ConOut)-64]
	_ = x[unsafe.Offsetof(SystemTable{}.RuntimeServices)-88]
	_ = x[unsafe.Offsetof(SystemTable{}.BootServices)-96]
	_ = x[unsafe.Sizeof(SystemTable{})-120]

	// EFI_SIMPLE_TEXT_INPUT_PROTOCOL
	_ = x[unsafe.Offsetof(simpleTextInput{}.ReadKeyStroke)-8]

	// EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL
	_ = x[unsafe.Offsetof(simpleTextOutput{}.OutputString)-8]
	_ = x[unsafe.Offsetof(simpleTextOutput{}.ClearScreen)-48]

	// EFI_BOOT_SERVICES
	_ = x[unsafe.Offsetof(bootServicesTable{}.AllocatePages)-40]
	_ = x[unsafe.Offsetof(bootServicesTable{}.FreePages)-48]
	_ = x[unsafe.Offsetof(bootServicesTable{}.GetMemoryMap)-56]
	_ = x[unsafe.Offsetof(bootServicesTable{}.SetWatchdogTimer)-256]
	_ = x[unsafe.Offsetof(bootServicesTable{}.LocateProtocol)-320]

	// EFI_RUNTIME_SERVICES
	_ = x[unsafe.Offsetof(runtimeServicesTable{}.ResetSystem)-104]

	// EFI_GRAPHICS_OUTPUT_PROTOCOL
	_ = x[unsafe.Offsetof(graphicsOutputProtocol{}.Mode)-24]
	_ = x[unsafe.Offsetof(ProtocolMode{}.FrameBufferBase)-24]
	_ = x[unsafe.Sizeof(ModeInformation{})-36]

	// EFI_MEMORY_DESCRIPTOR
	_ = x[unsafe.Sizeof(MemoryDescriptor{})-MemoryDescriptorSize]
	_ = x[unsafe.Offsetof(MemoryDescriptor{}.PhysicalStart)-8]
	_ = x[unsafe.Offsetof(MemoryDescriptor{}.Attribute)-32]

	// descriptor views must be 8-byte aligned
	_ = x[unsafe.Offsetof(MemoryMap{}.buf)%8]

	// EFI_CONFIGURATION_TABLE
	_ = x[unsafe.Sizeof(ConfigurationTable{})-24]
}
