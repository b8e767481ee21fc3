// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		status  Status
		name    string
		isError bool
		warning bool
	}{
		{EFI_SUCCESS, "EFI_SUCCESS", false, false},
		{EFI_NOT_FOUND, "EFI_NOT_FOUND", true, false},
		{EFI_BUFFER_TOO_SMALL, "EFI_BUFFER_TOO_SMALL", true, false},
		{EFI_WARN_STALE_DATA, "EFI_WARN_STALE_DATA", false, true},
		{errorBit | 99, "EFI_STATUS error 99", true, false},
		{42, "EFI_STATUS warning 42", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.status.String())
			assert.Equal(t, tt.isError, tt.status.IsError())
			assert.Equal(t, tt.warning, tt.status.IsWarning())

			err := parseStatus("Test", uint64(tt.status))

			if !tt.isError {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.status)

			var se *StatusError
			assert.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.Status)
			assert.Contains(t, err.Error(), "Test, EFI_STATUS error")
		})
	}

	assert.NotErrorIs(t, parseStatus("Test", uint64(EFI_NOT_FOUND)), EFI_NOT_READY)
}
