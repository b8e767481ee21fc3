// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64

package main

import (
	"fmt"
	"io"
	"log"
	"runtime"

	"github.com/usbarmory/go-loader/cmd"
	"github.com/usbarmory/go-loader/console"
	"github.com/usbarmory/go-loader/report"
	"github.com/usbarmory/go-loader/uefi"
	"github.com/usbarmory/go-loader/uefi/x64"
)

// set at build time
var (
	Revision string
	Build    string
)

func init() {
	log.SetFlags(0)

	cmd.Banner = fmt.Sprintf("go-loader • %s/%s (%s) • UEFI",
		runtime.GOOS, runtime.GOARCH, runtime.Version())

	if Revision != "" {
		cmd.Banner += fmt.Sprintf(" • %s %s", Revision, Build)
	}
}

func fatal(err error) {
	if console.Ready() {
		log.Printf("fatal error, %v", err)
	} else {
		print("fatal error, ", err.Error(), "\n")
	}

	x64.Halt()
}

func main() {
	if err := console.Init(x64.UEFI.Console); err != nil {
		fatal(err)
	}

	log.SetOutput(io.MultiWriter(console.Default(), x64.Serial))

	log.Println(cmd.Banner)

	st := x64.UEFI.SystemTable
	log.Printf("UEFI %s • %s (%#x)", st.Revision(), st.Vendor(), st.FirmwareRevision)

	if gop, err := uefi.Locate[uefi.GraphicsOutput](x64.UEFI.Boot); err != nil {
		log.Printf("graphics output not available, %v", err)
	} else if mode, err := gop.GetMode(); err != nil {
		log.Printf("graphics output mode not available, %v", err)
	} else {
		log.Println(report.GraphicsMode(mode))

		if fb, err := gop.FrameBuffer(); err == nil {
			log.Printf("frame buffer region %#x-%#x", fb.Start(), fb.End())
		}
	}

	memoryMap, err := x64.UEFI.Boot.GetMemoryMap()

	if err != nil {
		fatal(fmt.Errorf("could not get memory map, %w", err))
	}

	log.Println(report.MemoryMap(memoryMap))
	log.Println(report.E820(memoryMap.E820()))

	if err = x64.UEFI.Boot.SetWatchdogTimer(0); err != nil {
		log.Printf("could not disable watchdog, %v", err)
	}

	startShell()

	log.Printf("halting")
	x64.Halt()
}
