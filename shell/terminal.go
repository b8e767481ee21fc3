// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package shell implements a terminal console handler for user defined
// commands.
package shell

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/term"
)

// ErrUnknownCommand is returned for command lines not matching any
// registered command.
var ErrUnknownCommand = errors.New("unknown command, type `help`")

// Interface represents a terminal interface.
type Interface struct {
	// Banner represents the welcome message
	Banner string

	// ReadWriter represents the terminal connection
	ReadWriter io.ReadWriter

	VT100 bool
}

func (iface *Interface) handleLine(line string, w io.Writer) (err error) {
	var match *Cmd
	var arg []string
	var res string

	line = strings.TrimSpace(line)

	if line == "" {
		return
	}

	for _, cmd := range commands() {
		if cmd.Pattern == nil {
			if cmd.Name == line {
				match = cmd
				break
			}
		} else if m := cmd.Pattern.FindStringSubmatch(line); len(m) > 0 && (len(m)-1 == cmd.Args) {
			match = cmd
			arg = m[1:]
			break
		}
	}

	if match == nil {
		return ErrUnknownCommand
	}

	if res, err = match.Fn(iface, arg); err != nil {
		return
	}

	if len(res) > 0 {
		fmt.Fprintln(w, res)
	}

	return
}

func (iface *Interface) readLine(t *term.Terminal, w io.Writer) error {
	s, err := t.ReadLine()

	if err == io.EOF {
		return err
	}

	if err != nil {
		log.Printf("readline error, %v", err)
		return nil
	}

	if err = iface.handleLine(s, w); err != nil {
		if err == io.EOF {
			return err
		}

		fmt.Fprintf(w, "command error, %v\n", err)
		return nil
	}

	return nil
}

// Start handles registered commands over the interface ReadWriter, until the
// connection is closed or a command returns [io.EOF].
func (iface *Interface) Start() {
	var w io.Writer

	Add(Cmd{
		Name: "help",
		Help: "this help",
		Fn:   Help,
	})

	t := term.NewTerminal(iface.ReadWriter, "> ")
	w = t

	if iface.VT100 {
		t.SetPrompt(string(t.Escape.Red) + "> " + string(t.Escape.Reset))
	}

	help, _ := Help(iface, nil)

	fmt.Fprintf(t, "\n%s\n\n", iface.Banner)
	fmt.Fprintf(t, "%s\n", help)

	for {
		if err := iface.readLine(t, w); err != nil {
			return
		}
	}
}
