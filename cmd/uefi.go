// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"log"
	"regexp"
	"strconv"

	"github.com/usbarmory/go-loader/report"
	"github.com/usbarmory/go-loader/shell"
	"github.com/usbarmory/go-loader/uefi"
)

func init() {
	shell.Add(shell.Cmd{
		Name: "uefi",
		Help: "UEFI information",
		Fn:   uefiCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "protocol",
		Args:    1,
		Pattern: regexp.MustCompile(`^protocol ([[:xdigit:]]{8}-[[:xdigit:]]{4}-[[:xdigit:]]{4}-[[:xdigit:]]{4}-[[:xdigit:]]{12})$`),
		Syntax:  "<registry format GUID>",
		Help:    "EFI_BOOT_SERVICES.LocateProtocol()",
		Fn:      locateCmd,
	})

	shell.Add(shell.Cmd{
		Name: "memmap",
		Help: "EFI_BOOT_SERVICES.GetMemoryMap()",
		Fn:   memmapCmd,
	})

	shell.Add(shell.Cmd{
		Name: "e820",
		Help: "E820 conversion of the EFI memory map",
		Fn:   e820Cmd,
	})

	shell.Add(shell.Cmd{
		Name: "gop",
		Help: "EFI Graphics Output Protocol mode",
		Fn:   gopCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "alloc",
		Args:    2,
		Pattern: regexp.MustCompile(`^alloc ([[:xdigit:]]+) (\d+)$`),
		Syntax:  "<hex offset> <size>",
		Help:    "EFI_BOOT_SERVICES.AllocatePages()",
		Fn:      allocCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "reset",
		Args:    1,
		Pattern: regexp.MustCompile(`^reset(?: (cold|warm))?$`),
		Help:    "EFI_RUNTIME_SERVICES.ResetSystem()",
		Syntax:  "(cold|warm)?",
		Fn:      resetCmd,
	})

	shell.Add(shell.Cmd{
		Name: "shutdown",
		Help: "shutdown system",
		Fn:   shutdownCmd,
	})

	shell.Add(shell.Cmd{
		Name: "halt",
		Help: "halt the machine",
		Fn:   haltCmd,
	})
}

func uefiCmd(_ *shell.Interface, _ []string) (res string, err error) {
	if UEFI == nil || UEFI.SystemTable == nil {
		return "", errNoServices
	}

	return report.SystemTable(UEFI.SystemTable), nil
}

func locateCmd(_ *shell.Interface, arg []string) (res string, err error) {
	b, err := boot()

	if err != nil {
		return
	}

	guid, err := uefi.ParseGUID(arg[0])

	if err != nil {
		return
	}

	addr, err := b.LocateProtocol(guid)

	return fmt.Sprintf("%s: %#08x", guid, addr), err
}

func memmapCmd(_ *shell.Interface, _ []string) (res string, err error) {
	b, err := boot()

	if err != nil {
		return
	}

	memoryMap, err := b.GetMemoryMap()

	if err != nil {
		return
	}

	return report.MemoryMap(memoryMap), nil
}

func e820Cmd(_ *shell.Interface, _ []string) (res string, err error) {
	b, err := boot()

	if err != nil {
		return
	}

	memoryMap, err := b.GetMemoryMap()

	if err != nil {
		return
	}

	return report.E820(memoryMap.E820()), nil
}

func gopCmd(_ *shell.Interface, _ []string) (res string, err error) {
	b, err := boot()

	if err != nil {
		return
	}

	gop, err := b.GetGraphicsOutput()

	if err != nil {
		return
	}

	mode, err := gop.GetMode()

	if err != nil {
		return
	}

	return report.GraphicsMode(mode), nil
}

func allocCmd(_ *shell.Interface, arg []string) (res string, err error) {
	b, err := boot()

	if err != nil {
		return
	}

	addr, err := strconv.ParseUint(arg[0], 16, 64)

	if err != nil {
		return "", fmt.Errorf("invalid address, %v", err)
	}

	size, err := strconv.ParseUint(arg[1], 10, 64)

	if err != nil {
		return "", fmt.Errorf("invalid size, %v", err)
	}

	if addr%uefi.PageSize != 0 {
		return "", fmt.Errorf("address must be %d bytes aligned", uefi.PageSize)
	}

	log.Printf("allocating memory range %#08x - %#08x", addr, addr+size)

	_, err = b.AllocatePages(
		uefi.AllocateAddress,
		uefi.EfiLoaderData,
		int(size),
		addr,
	)

	return
}

func resetCmd(_ *shell.Interface, arg []string) (_ string, err error) {
	var resetType int

	if UEFI == nil {
		return "", errNoServices
	}

	switch arg[0] {
	case "cold":
		resetType = uefi.EfiResetCold
	case "warm", "":
		resetType = uefi.EfiResetWarm
	case "shutdown":
		resetType = uefi.EfiResetShutdown
	}

	log.Printf("performing system reset type %d", resetType)
	err = UEFI.Runtime.ResetSystem(resetType)

	return
}

func shutdownCmd(_ *shell.Interface, _ []string) (_ string, err error) {
	return resetCmd(nil, []string{"shutdown"})
}
