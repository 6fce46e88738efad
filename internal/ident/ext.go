package ident

import (
	"encoding/binary"
	"fmt"
	"io"
)

const minSizeExt = 1024 + 0x88

// probeExt matches the ext2/3/4 superblock at offset 1024. The scanner
// proper lives in internal/ext2; this reads just enough for a report.
func probeExt(src io.ReaderAt) (*Filesystem, error) {
	sb := make([]byte, 0x88)

	if _, err := src.ReadAt(sb, 1024); err != nil {
		return nil, fmt.Errorf("failed to read ext superblock: %w", err)
	}

	if binary.LittleEndian.Uint16(sb[0x38:0x3A]) != 0xEF53 {
		return nil, nil
	}

	fs := Filesystem{
		Type:  FSExt,
		UUID:  readUUID(sb, 0x68),
		Label: readLabel(sb[0x78:0x88]),
	}

	blocks := binary.LittleEndian.Uint32(sb[0x04:0x08])
	logBlockSize := binary.LittleEndian.Uint32(sb[0x18:0x1C])

	if logBlockSize <= 6 {
		fs.Size = int64(blocks) * int64(1024<<logBlockSize)
	}

	return &fs, nil
}
