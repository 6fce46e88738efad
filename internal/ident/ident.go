// Package ident recognizes common filesystem signatures on raw block
// devices. It answers "what is this, then?" when a scan target turns out
// not to carry an ext superblock.
package ident

import (
	"bytes"
	"fmt"
	"io"

	"github.com/google/uuid"
)

type FSType string

const (
	FSNone     FSType = ""
	FSExt      FSType = "ext"
	FSXfs      FSType = "xfs"
	FSBtrfs    FSType = "btrfs"
	FSSquashfs FSType = "squashfs"
	FSSwap     FSType = "swap"
	FSFat      FSType = "vfat"
)

// Filesystem describes a recognized on-disk signature. Fields beyond Type
// are filled only where the format carries them.
type Filesystem struct {
	Type  FSType
	UUID  uuid.UUID
	Label string
	Size  int64 // in bytes
}

func (f *Filesystem) String() string {
	if f.Label != "" {
		return fmt.Sprintf("%s %q", f.Type, f.Label)
	}

	return string(f.Type)
}

// Probe checks src against known superblock signatures and returns the
// first match, or nil without error when nothing matches. size gates each
// probe so that undersized sources are never read past the end. The FAT
// boot signature is the weakest check and runs last.
func Probe(size int64, src io.ReaderAt) (*Filesystem, error) {
	if size >= minSizeSquashfs {
		if fs, err := probeSquashfs(src); fs != nil || err != nil {
			return fs, err
		}
	}

	if size >= minSizeExt {
		if fs, err := probeExt(src); fs != nil || err != nil {
			return fs, err
		}
	}

	if size >= minSizeSwap {
		if fs, err := probeSwap(src); fs != nil || err != nil {
			return fs, err
		}
	}

	if size >= minSizeBtrfs {
		if fs, err := probeBtrfs(src); fs != nil || err != nil {
			return fs, err
		}
	}

	if size >= minSizeXfs {
		if fs, err := probeXfs(src); fs != nil || err != nil {
			return fs, err
		}
	}

	if size >= minSizeFat {
		if fs, err := probeFat(src); fs != nil || err != nil {
			return fs, err
		}
	}

	return nil, nil
}

func readUUID(bs []byte, offset int) uuid.UUID {
	var id uuid.UUID
	copy(id[:], bs[offset:offset+16])

	return id
}

func readLabel(bs []byte) string {
	if end := bytes.IndexByte(bs, 0); end >= 0 {
		bs = bs[:end]
	}

	return string(bs)
}
