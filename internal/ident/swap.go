package ident

import (
	"encoding/binary"
	"fmt"
	"io"
)

// The swap signature sits at the end of the first page. Only the common
// 4 KiB page size is checked.
const swapPageSize = 4096

const minSizeSwap = swapPageSize

func probeSwap(src io.ReaderAt) (*Filesystem, error) {
	page := make([]byte, swapPageSize)

	if _, err := src.ReadAt(page, 0); err != nil {
		return nil, fmt.Errorf("failed to read swap header: %w", err)
	}

	sig := string(page[swapPageSize-10:])

	if sig == "SWAP-SPACE" {
		// version 0 header, no UUID, label or page count
		return &Filesystem{Type: FSSwap}, nil
	}

	if sig != "SWAPSPACE2" {
		return nil, nil
	}

	lastPage := binary.LittleEndian.Uint32(page[1028:1032])

	return &Filesystem{
		Type:  FSSwap,
		UUID:  readUUID(page, 1036),
		Label: readLabel(page[1052:1068]),
		Size:  (int64(lastPage) + 1) * swapPageSize,
	}, nil
}
