package ident

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/amadigan/slackscan/internal/util"
)

const minSizeXfs = 512

// probeXfs matches the XFS superblock in sector 0. XFS stores multi-byte
// fields big-endian.
func probeXfs(src io.ReaderAt) (*Filesystem, error) {
	sb := make([]byte, 512)

	if _, err := src.ReadAt(sb, 0); err != nil {
		return nil, fmt.Errorf("failed to read xfs superblock: %w", err)
	}

	if string(sb[0x00:0x04]) != "XFSB" {
		return nil, nil
	}

	blockSize := binary.BigEndian.Uint32(sb[0x04:0x08])
	dataBlocks := binary.BigEndian.Uint64(sb[0x10:0x18])

	return &Filesystem{
		Type:  FSXfs,
		UUID:  readUUID(sb, 0x20),
		Label: readLabel(sb[0x6C:0x78]),
		Size:  int64(blockSize) * util.Int64(dataBlocks),
	}, nil
}
