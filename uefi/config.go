// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"fmt"
	"unsafe"
)

// maxConfigurationTables bounds the EFI Configuration Table entries count.
const maxConfigurationTables = 256

// Well known EFI Configuration Table GUIDs
var (
	ACPI_TABLE_GUID         = MustParseGUID("eb9d2d30-2d88-11d3-9a16-0090273fc14d")
	ACPI_20_TABLE_GUID      = MustParseGUID("8868e871-e4f1-11d3-bc22-0080c73c8881")
	SMBIOS_TABLE_GUID       = MustParseGUID("eb9d2d31-2d88-11d3-9a16-0090273fc14d")
	SMBIOS3_TABLE_GUID      = MustParseGUID("f2fd1544-9794-4a2c-992e-e5bbcf20e394")
	EFI_MEMORY_ATTRIBUTES   = MustParseGUID("dcfa911d-26eb-469f-a220-38b7dc461220")
	EFI_DTB_TABLE_GUID      = MustParseGUID("b1b621d5-f19c-41a5-830b-d9152c69aae0")
	EFI_RT_PROPERTIES_TABLE = MustParseGUID("eb66918a-7eef-402a-842e-931d21c38ae9")
)

var configurationTableNames = map[GUID]string{
	ACPI_TABLE_GUID:         "ACPI 1.0",
	ACPI_20_TABLE_GUID:      "ACPI 2.0",
	SMBIOS_TABLE_GUID:       "SMBIOS",
	SMBIOS3_TABLE_GUID:      "SMBIOS3",
	EFI_MEMORY_ATTRIBUTES:   "Memory Attributes",
	EFI_DTB_TABLE_GUID:      "Device Tree",
	EFI_RT_PROPERTIES_TABLE: "Runtime Properties",
}

// ConfigurationTable represents an EFI Configuration Table.
type ConfigurationTable struct {
	GUID        GUID
	VendorTable uint64
}

// Name returns the configuration table name, if known.
func (t *ConfigurationTable) Name() string {
	return configurationTableNames[t.GUID]
}

// ConfigurationTables returns the EFI Configuration Tables, entries are views
// over firmware memory.
func (d *SystemTable) ConfigurationTables() (c []ConfigurationTable, err error) {
	if d.NumberOfTableEntries == 0 {
		return
	}

	if d.NumberOfTableEntries > maxConfigurationTables {
		return nil, fmt.Errorf("EFI Configuration Table, invalid number of entries (%d)", d.NumberOfTableEntries)
	}

	t, err := view[ConfigurationTable](d.ConfigurationTable)

	if err != nil {
		return nil, fmt.Errorf("EFI Configuration Table, %w", err)
	}

	return unsafe.Slice(t, d.NumberOfTableEntries), nil
}

// LocateConfiguration locates an EFI Configuration Table.
func (d *SystemTable) LocateConfiguration(guid GUID) (t *ConfigurationTable, err error) {
	c, err := d.ConfigurationTables()

	if err != nil {
		return
	}

	for i := range c {
		if c[i].GUID == guid {
			return &c[i], nil
		}
	}

	return nil, errors.New("could not find configuration table")
}
