// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package console implements the process wide text console, a single
// exclusive access sink over a UEFI text output service.
//
// The console must be initialized once, with [Init], before use. Writes
// issued before initialization fail with [ErrUninitialized].
package console

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"unicode/utf16"
)

var (
	ErrUninitialized      = errors.New("console is not initialized")
	ErrAlreadyInitialized = errors.New("console is already initialized")
)

// Output represents a text output service accepting NUL terminated UTF-16
// strings, such as [uefi.Console].
type Output interface {
	OutputString(s []uint16) error
}

// Writer represents a console writer, its zero value is uninitialized.
type Writer struct {
	mu  sync.Mutex
	out Output
}

// Init sets the writer output, it can only be performed once.
func (w *Writer) Init(out Output) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if out == nil {
		return errors.New("invalid console output")
	}

	if w.out != nil {
		return ErrAlreadyInitialized
	}

	w.out = out

	return nil
}

// Ready returns whether the writer has been initialized.
func (w *Writer) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.out != nil
}

// Write implements the [io.Writer] interface, each line feed is preceded by
// a carriage return and invalid UTF-8 sequences are replaced with U+FFFD.
// The buffer is delivered with a single output call.
func (w *Writer) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.out == nil {
		return 0, ErrUninitialized
	}

	if len(p) == 0 {
		return
	}

	s := make([]uint16, 0, len(p)+1)

	for _, r := range string(p) {
		if r == '\n' {
			s = append(s, '\r')
		}

		s = utf16.AppendRune(s, r)
	}

	if err = w.out.OutputString(append(s, 0x00)); err != nil {
		return
	}

	return len(p), nil
}

var _ io.Writer = &Writer{}

var std = &Writer{}

// Init initializes the process wide console.
func Init(out Output) error {
	return std.Init(out)
}

// Ready returns whether the process wide console has been initialized.
func Ready() bool {
	return std.Ready()
}

// Default returns the process wide console writer.
func Default() io.Writer {
	return std
}

// Write writes p to the process wide console.
func Write(p []byte) (int, error) {
	return std.Write(p)
}

// Printf formats according to a format specifier and writes to the process
// wide console.
func Printf(format string, a ...any) (int, error) {
	return fmt.Fprintf(std, format, a...)
}

// Println formats using the default formats for its operands and writes to
// the process wide console.
func Println(a ...any) (int, error) {
	return fmt.Fprintln(std, a...)
}
