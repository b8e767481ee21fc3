// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package shell

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"text/tabwriter"
)

// CmdFn represents a command handler.
type CmdFn func(iface *Interface, arg []string) (res string, err error)

// Cmd represents a shell command.
type Cmd struct {
	// Name is the command name, matched literally when Pattern is nil.
	Name string
	// Args is the number of Pattern submatches passed to Fn.
	Args int
	// Pattern matches the command line and its arguments.
	Pattern *regexp.Regexp
	// Syntax describes the command arguments.
	Syntax string
	// Help describes the command.
	Help string
	// Fn is the command handler.
	Fn CmdFn
}

var (
	mu   sync.Mutex
	cmds = make(map[string]*Cmd)
)

// Add registers a shell command, a command with the same name is replaced.
func Add(cmd Cmd) {
	mu.Lock()
	defer mu.Unlock()

	cmds[cmd.Name] = &cmd
}

// commands returns the registered commands sorted by name.
func commands() (c []*Cmd) {
	mu.Lock()
	defer mu.Unlock()

	for _, cmd := range cmds {
		c = append(c, cmd)
	}

	sort.Slice(c, func(i, j int) bool {
		return c[i].Name < c[j].Name
	})

	return
}

// Help returns the registered commands help.
func Help(_ *Interface, _ []string) (string, error) {
	var buf bytes.Buffer

	t := tabwriter.NewWriter(&buf, 16, 8, 0, '\t', tabwriter.TabIndent)

	for _, cmd := range commands() {
		fmt.Fprintf(t, "%s\t%s\t # %s\n", cmd.Name, cmd.Syntax, cmd.Help)
	}

	t.Flush()

	return buf.String(), nil
}
