package ident

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/amadigan/slackscan/internal/util"
)

const minSizeSquashfs = 0x30

const squashfsMagic uint32 = 0x73717368

func probeSquashfs(src io.ReaderAt) (*Filesystem, error) {
	sb := make([]byte, 0x30)

	if _, err := src.ReadAt(sb, 0); err != nil {
		return nil, fmt.Errorf("failed to read squashfs superblock: %w", err)
	}

	if binary.LittleEndian.Uint32(sb[0:4]) != squashfsMagic {
		return nil, nil
	}

	// squashfs carries no UUID or label; bytes_used is the archive size.
	return &Filesystem{
		Type: FSSquashfs,
		Size: util.Int64(binary.LittleEndian.Uint64(sb[0x28:0x30])),
	}, nil
}
