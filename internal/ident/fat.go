package ident

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

const minSizeFat = 512

// probeFat matches a FAT boot sector: the 0x55AA signature plus the
// filesystem type string mkfs.fat writes. Partition tables share the boot
// signature, so the type string is required even though it is advisory.
func probeFat(src io.ReaderAt) (*Filesystem, error) {
	sector := make([]byte, 512)

	if _, err := src.ReadAt(sector, 0); err != nil {
		return nil, fmt.Errorf("failed to read boot sector: %w", err)
	}

	if sector[510] != 0x55 || sector[511] != 0xAA {
		return nil, nil
	}

	var label string

	switch {
	case string(sector[0x52:0x5A]) == "FAT32   ":
		label = string(sector[0x47:0x52])
	case string(sector[0x36:0x39]) == "FAT":
		label = string(sector[0x2B:0x36])
	default:
		return nil, nil
	}

	label = strings.TrimRight(label, " ")
	if label == "NO NAME" {
		label = ""
	}

	sectorSize := binary.LittleEndian.Uint16(sector[0x0B:0x0D])
	totalSectors := int64(binary.LittleEndian.Uint16(sector[0x13:0x15]))

	if totalSectors == 0 {
		totalSectors = int64(binary.LittleEndian.Uint32(sector[0x20:0x24]))
	}

	return &Filesystem{
		Type:  FSFat,
		Label: label,
		Size:  totalSectors * int64(sectorSize),
	}, nil
}
