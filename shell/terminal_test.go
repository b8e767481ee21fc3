// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package shell

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conn struct {
	in  io.Reader
	out bytes.Buffer
}

func (c *conn) Read(p []byte) (int, error) {
	return c.in.Read(p)
}

func (c *conn) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func init() {
	Add(Cmd{
		Name: "ping",
		Help: "liveness check",
		Fn: func(_ *Interface, _ []string) (string, error) {
			return "pong", nil
		},
	})

	Add(Cmd{
		Name:    "echo",
		Args:    1,
		Pattern: regexp.MustCompile(`^echo (.*)$`),
		Syntax:  "<text>",
		Help:    "echo text",
		Fn: func(_ *Interface, arg []string) (string, error) {
			return arg[0], nil
		},
	})

	Add(Cmd{
		Name: "fail",
		Help: "always fails",
		Fn: func(_ *Interface, _ []string) (string, error) {
			return "", errors.New("failure")
		},
	})

	Add(Cmd{
		Name: "bye",
		Help: "close session",
		Fn: func(_ *Interface, _ []string) (string, error) {
			return "", io.EOF
		},
	})
}

func TestHandleLine(t *testing.T) {
	iface := &Interface{}

	tests := []struct {
		line string
		want string
		err  error
	}{
		{"ping", "pong\n", nil},
		{"  ping ", "pong\n", nil},
		{"echo hello world", "hello world\n", nil},
		{"", "", nil},
		{"pong", "", ErrUnknownCommand},
	}

	for _, tt := range tests {
		var buf bytes.Buffer

		err := iface.handleLine(tt.line, &buf)

		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err)
			continue
		}

		require.NoError(t, err)
		assert.Equal(t, tt.want, buf.String())
	}
}

func TestHelp(t *testing.T) {
	help, err := Help(nil, nil)
	require.NoError(t, err)

	assert.Contains(t, help, "echo")
	assert.Contains(t, help, "<text>")
	assert.Contains(t, help, "# liveness check")
	assert.Less(t, strings.Index(help, "bye"), strings.Index(help, "ping"))
}

func TestStart(t *testing.T) {
	c := &conn{
		in: strings.NewReader("ping\recho 42\rfail\runknown\rbye\rping\r"),
	}

	iface := &Interface{
		Banner:     "go-loader test",
		ReadWriter: c,
	}

	iface.Start()

	out := c.out.String()

	assert.Contains(t, out, "go-loader test")
	assert.Contains(t, out, "help")
	assert.Contains(t, out, "pong")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "command error, failure")
	assert.Contains(t, out, "command error, unknown command")

	// session ends on bye
	assert.Equal(t, 1, strings.Count(out, "pong"))
}
