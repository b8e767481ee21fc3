// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64 && shell

package main

import (
	"io"
	"time"

	"github.com/usbarmory/go-loader/cmd"
	"github.com/usbarmory/go-loader/shell"
	"github.com/usbarmory/go-loader/uefi/x64"
)

const pollInterval = 10 * time.Millisecond

// poller blocks reads until at least one byte is available.
type poller struct {
	io.ReadWriter
}

func (p poller) Read(b []byte) (n int, err error) {
	for {
		if n, err = p.ReadWriter.Read(b); n > 0 || err != nil {
			return
		}

		time.Sleep(pollInterval)
	}
}

func startShell() {
	cmd.UEFI = x64.UEFI
	cmd.Halt = x64.Halt

	iface := &shell.Interface{
		Banner:     cmd.Banner,
		ReadWriter: poller{x64.UEFI.Console},
	}

	iface.Start()
}
