package ext2

import (
	"encoding/binary"
	"fmt"

	"github.com/amadigan/slackscan/internal/util"
)

// direntFixedLen is the fixed part of a directory record, before the name.
const direntFixedLen = 8

// DirEntry is one live directory record. FileType is zero on filesystems
// without the filetype feature.
type DirEntry struct {
	Inode    uint32
	FileType uint8
	Name     string
}

// LookupName scans the directory's entries for the first one referencing
// target. A directory names itself through its "." entry, so looking up the
// directory's own inode succeeds. Returns false without error when no entry
// references target.
func (fs *Filesystem) LookupName(dir *Inode, target uint32) (string, bool, error) {
	blocks, err := fs.DataBlockList(dir)
	if err != nil {
		return "", false, err
	}

	for _, block := range blocks {
		data, err := fs.readBlock(block)
		if err != nil {
			return "", false, fmt.Errorf("inode %d: %w", dir.Number, err)
		}

		entries, err := parseDirentBlock(data, util.Int64(block*fs.BlockSize()), fs.sb.HasFiletype())
		if err != nil {
			return "", false, fmt.Errorf("inode %d: %w", dir.Number, err)
		}

		for _, entry := range entries {
			if entry.Inode == target {
				return entry.Name, true, nil
			}
		}
	}

	return "", false, nil
}

// parseDirentBlock decodes the record chain of one directory block. Records
// with inode zero are unused space (including the checksum tail) and are
// dropped; the chain must cover the block exactly.
func parseDirentBlock(data []byte, off int64, filetype bool) ([]DirEntry, error) {
	var entries []DirEntry

	for pos := 0; pos < len(data); {
		if pos+direntFixedLen > len(data) {
			return nil, &CorruptError{Struct: "directory block", Offset: off, Reason: fmt.Sprintf("truncated entry at %d", pos)}
		}

		inode := binary.LittleEndian.Uint32(data[pos : pos+4])
		recLen := int(binary.LittleEndian.Uint16(data[pos+4 : pos+6]))
		nameLen := int(data[pos+6])

		if recLen < direntFixedLen {
			return nil, &CorruptError{Struct: "directory block", Offset: off, Reason: fmt.Sprintf("record length %d at %d below minimum", recLen, pos)}
		}

		if pos+recLen > len(data) {
			return nil, &CorruptError{Struct: "directory block", Offset: off, Reason: fmt.Sprintf("record at %d overruns block", pos)}
		}

		if direntFixedLen+nameLen > recLen {
			return nil, &CorruptError{Struct: "directory block", Offset: off, Reason: fmt.Sprintf("name overruns record at %d", pos)}
		}

		if inode != 0 {
			entry := DirEntry{Inode: inode, Name: string(data[pos+direntFixedLen : pos+direntFixedLen+nameLen])}

			if filetype {
				entry.FileType = data[pos+7]
			}

			entries = append(entries, entry)
		}

		pos += recLen
	}

	return entries, nil
}
