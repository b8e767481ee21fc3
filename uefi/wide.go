// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf16"
	"unsafe"
)

// maxWideLength bounds the search for the NUL terminator of firmware owned
// strings.
const maxWideLength = 4096

// WideString represents a pointer to a firmware owned, NUL terminated, UCS-2
// string (CHAR16 *).
//
// The referenced memory must remain valid for as long as the string is used,
// this is the case for all strings published in firmware tables until Boot
// Services are terminated.
type WideString uint64

// Units returns the string UTF-16 code units, up to and excluding the NUL
// terminator.
func (s WideString) Units() iter.Seq[uint16] {
	return func(yield func(uint16) bool) {
		if s == 0 || s%2 != 0 {
			return
		}

		for i := range uint64(maxWideLength) {
			u := *(*uint16)(unsafe.Pointer(uintptr(uint64(s) + i*2)))

			if u == 0 || !yield(u) {
				return
			}
		}
	}
}

// Runes returns the string Unicode code points, code units which cannot be
// decoded are returned as [unicode.ReplacementChar].
func (s WideString) Runes() iter.Seq[rune] {
	return DecodeUTF16(s.Units())
}

// String returns the string in UTF-8 encoding.
func (s WideString) String() string {
	var b strings.Builder

	for r := range s.Runes() {
		b.WriteRune(r)
	}

	return b.String()
}

// Format implements the [fmt.Formatter] interface, the string is rendered
// for %s, %v and %q verbs while %x and %p print its address.
func (s WideString) Format(f fmt.State, verb rune) {
	switch verb {
	case 'x', 'X', 'p':
		fmt.Fprintf(f, fmt.FormatString(f, verb), uint64(s))
	case 'q':
		fmt.Fprintf(f, "%q", s.String())
	default:
		fmt.Fprint(f, s.String())
	}
}

// DecodeUTF16 returns the Unicode code points represented by a sequence of
// UTF-16 code units. Unpaired surrogates are returned as
// [unicode.ReplacementChar], decoding never fails.
func DecodeUTF16(units iter.Seq[uint16]) iter.Seq[rune] {
	return func(yield func(rune) bool) {
		// pending high surrogate
		var high rune

		for u := range units {
			r := rune(u)

			if high != 0 {
				pair := utf16.DecodeRune(high, r)
				high = 0

				if pair != unicode.ReplacementChar {
					if !yield(pair) {
						return
					}

					continue
				}

				if !yield(unicode.ReplacementChar) {
					return
				}
			}

			switch {
			case r >= 0xd800 && r < 0xdc00:
				high = r
			case utf16.IsSurrogate(r):
				if !yield(unicode.ReplacementChar) {
					return
				}
			default:
				if !yield(r) {
					return
				}
			}
		}

		if high != 0 {
			yield(unicode.ReplacementChar)
		}
	}
}
