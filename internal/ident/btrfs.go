package ident

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/amadigan/slackscan/internal/util"
)

// The primary btrfs superblock occupies the 4 KiB at 64 KiB.
const minSizeBtrfs = 0x10000 + 0x1000

func probeBtrfs(src io.ReaderAt) (*Filesystem, error) {
	sb := make([]byte, 0x1000)

	if _, err := src.ReadAt(sb, 0x10000); err != nil {
		return nil, fmt.Errorf("failed to read btrfs superblock: %w", err)
	}

	if string(sb[0x40:0x48]) != "_BHRfS_M" {
		return nil, nil
	}

	return &Filesystem{
		Type:  FSBtrfs,
		UUID:  readUUID(sb, 0x20),
		Label: readLabel(sb[0x12B:0x22B]),
		Size:  util.Int64(binary.LittleEndian.Uint64(sb[0x70:0x78])),
	}, nil
}
