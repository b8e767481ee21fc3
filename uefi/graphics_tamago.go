// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package uefi

import (
	"errors"

	"github.com/usbarmory/tamago/dma"
)

// FrameBuffer returns the linear frame buffer of the current graphics mode
// as a memory region.
func (gop *GraphicsOutput) FrameBuffer() (r *dma.Region, err error) {
	pm, err := gop.GetMode()

	if err != nil {
		return
	}

	if pm.FrameBufferBase == 0 || pm.FrameBufferSize == 0 {
		return nil, errors.New("frame buffer not available")
	}

	return dma.NewRegion(uint(pm.FrameBufferBase), int(pm.FrameBufferSize), true)
}
