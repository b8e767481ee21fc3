// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/hako/durafmt"

	"github.com/usbarmory/go-loader/shell"
)

var start = time.Now()

func init() {
	shell.Add(shell.Cmd{
		Name: "build",
		Help: "build information",
		Fn:   buildInfoCmd,
	})

	shell.Add(shell.Cmd{
		Name: "info",
		Help: "runtime information",
		Fn:   infoCmd,
	})

	shell.Add(shell.Cmd{
		Name: "stack",
		Help: "goroutine stack trace (current)",
		Fn:   stackCmd,
	})

	shell.Add(shell.Cmd{
		Name: "uptime",
		Help: "show how long the system has been running",
		Fn:   uptimeCmd,
	})
}

func buildInfoCmd(_ *shell.Interface, _ []string) (string, error) {
	var buf bytes.Buffer

	if bi, ok := debug.ReadBuildInfo(); ok {
		fmt.Fprint(&buf, bi.String())
	}

	return buf.String(), nil
}

func infoCmd(_ *shell.Interface, _ []string) (string, error) {
	var buf bytes.Buffer
	var m runtime.MemStats

	runtime.ReadMemStats(&m)

	fmt.Fprintf(&buf, "Runtime ......: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&buf, "Heap .........: %d KiB in use, %d KiB reserved", m.HeapInuse>>10, m.HeapSys>>10)

	return buf.String(), nil
}

func stackCmd(_ *shell.Interface, _ []string) (string, error) {
	return string(debug.Stack()), nil
}

func uptimeCmd(_ *shell.Interface, _ []string) (string, error) {
	d := time.Since(start)

	if Uptime != nil {
		d = Uptime()
	}

	return durafmt.Parse(d).LimitFirstN(3).String(), nil
}

func haltCmd(_ *shell.Interface, _ []string) (string, error) {
	if Halt == nil {
		return "", errors.New("halt is not supported")
	}

	log.Printf("Goodbye from %s/%s", runtime.GOOS, runtime.GOARCH)
	Halt()

	return "halted", io.EOF
}
