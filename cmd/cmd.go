// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cmd implements the diagnostics shell commands, registered on
// import.
package cmd

import (
	"errors"
	"time"

	"github.com/usbarmory/go-loader/uefi"
)

// Banner represents the shell welcome message.
var Banner string

// The following variables are platform specific and must be set before the
// shell is started.
var (
	// UEFI services instance
	UEFI *uefi.Services

	// Halt stops the machine
	Halt func()

	// Uptime returns the time elapsed since boot
	Uptime func() time.Duration
)

var errNoServices = errors.New("UEFI services are not available")

func boot() (*uefi.BootServices, error) {
	if UEFI == nil || UEFI.Boot == nil {
		return nil, errNoServices
	}

	return UEFI.Boot, nil
}
