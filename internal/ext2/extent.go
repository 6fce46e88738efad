package ext2

import (
	"encoding/binary"
	"fmt"

	"github.com/amadigan/slackscan/internal/util"
)

const (
	extentMagic     uint16 = 0xF30A
	extentHeaderLen        = 12
	extentEntryLen         = 12

	// maxExtentDepth is the deepest tree the format allows.
	maxExtentDepth = 5

	// Leaf lengths above this mark unwritten extents, the real block count
	// is the remainder.
	extentUninitLen uint16 = 0x8000
)

func (fs *Filesystem) countExtentBlocks(in *Inode) (uint64, error) {
	count, err := fs.countExtentNode(in.Block[:], -1, in.off+0x28)
	if err != nil {
		return 0, fmt.Errorf("inode %d: %w", in.Number, err)
	}

	return count, nil
}

// countExtentNode sums the leaf extent lengths below one node. wantDepth is
// the depth the parent entry implies for this node, -1 for the tree root;
// a mismatch means the tree references itself or an unrelated block.
func (fs *Filesystem) countExtentNode(data []byte, wantDepth int, off int64) (uint64, error) {
	entries, depth, err := parseExtentHeader(data, off)
	if err != nil {
		return 0, err
	}

	if wantDepth >= 0 && int(depth) != wantDepth {
		return 0, &CorruptError{Struct: "extent node", Offset: off, Reason: fmt.Sprintf("depth %d, parent expects %d", depth, wantDepth)}
	}

	var count uint64

	for i := 0; i < int(entries); i++ {
		entry := data[extentHeaderLen+i*extentEntryLen : extentHeaderLen+(i+1)*extentEntryLen]

		if depth == 0 {
			count += uint64(extentLength(entry))

			continue
		}

		child := extentChild(entry)

		node, err := fs.readBlock(child)
		if err != nil {
			return 0, err
		}

		sub, err := fs.countExtentNode(node, int(depth)-1, util.Int64(child*fs.BlockSize()))
		if err != nil {
			return 0, err
		}

		count += sub
	}

	return count, nil
}

func (fs *Filesystem) listExtentBlocks(in *Inode, max uint64) ([]uint64, error) {
	list, err := fs.appendExtentNode(make([]uint64, 0, util.Least(max, 64)), in.Block[:], -1, in.off+0x28, max)
	if err != nil {
		return nil, fmt.Errorf("inode %d: %w", in.Number, err)
	}

	return list, nil
}

func (fs *Filesystem) appendExtentNode(list []uint64, data []byte, wantDepth int, off int64, max uint64) ([]uint64, error) {
	entries, depth, err := parseExtentHeader(data, off)
	if err != nil {
		return nil, err
	}

	if wantDepth >= 0 && int(depth) != wantDepth {
		return nil, &CorruptError{Struct: "extent node", Offset: off, Reason: fmt.Sprintf("depth %d, parent expects %d", depth, wantDepth)}
	}

	for i := 0; i < int(entries) && uint64(len(list)) < max; i++ {
		entry := data[extentHeaderLen+i*extentEntryLen : extentHeaderLen+(i+1)*extentEntryLen]

		if depth == 0 {
			start := extentStart(entry)

			for b := uint64(0); b < uint64(extentLength(entry)) && uint64(len(list)) < max; b++ {
				list = append(list, start+b)
			}

			continue
		}

		child := extentChild(entry)

		node, err := fs.readBlock(child)
		if err != nil {
			return nil, err
		}

		list, err = fs.appendExtentNode(list, node, int(depth)-1, util.Int64(child*fs.BlockSize()), max)
		if err != nil {
			return nil, err
		}
	}

	return list, nil
}

func parseExtentHeader(data []byte, off int64) (uint16, uint16, error) {
	if len(data) < extentHeaderLen {
		return 0, 0, &CorruptError{Struct: "extent node", Offset: off, Reason: "truncated header"}
	}

	if magic := binary.LittleEndian.Uint16(data[0x00:0x02]); magic != extentMagic {
		return 0, 0, &CorruptError{Struct: "extent node", Offset: off, Reason: fmt.Sprintf("bad header magic %#06x", magic)}
	}

	entries := binary.LittleEndian.Uint16(data[0x02:0x04])
	depth := binary.LittleEndian.Uint16(data[0x06:0x08])

	if depth > maxExtentDepth {
		return 0, 0, &CorruptError{Struct: "extent node", Offset: off, Reason: fmt.Sprintf("depth %d exceeds %d", depth, maxExtentDepth)}
	}

	if need := extentHeaderLen + int(entries)*extentEntryLen; need > len(data) {
		return 0, 0, &CorruptError{Struct: "extent node", Offset: off, Reason: fmt.Sprintf("%d entries need %d bytes, node has %d", entries, need, len(data))}
	}

	return entries, depth, nil
}

// extentLength decodes a leaf entry's allocated block count.
func extentLength(entry []byte) uint16 {
	length := binary.LittleEndian.Uint16(entry[0x04:0x06])
	if length > extentUninitLen {
		length -= extentUninitLen
	}

	return length
}

// extentStart decodes a leaf entry's first physical block.
func extentStart(entry []byte) uint64 {
	return uint64(binary.LittleEndian.Uint32(entry[0x08:0x0C])) | uint64(binary.LittleEndian.Uint16(entry[0x06:0x08]))<<32
}

// extentChild decodes an index entry's child node block.
func extentChild(entry []byte) uint64 {
	return uint64(binary.LittleEndian.Uint32(entry[0x04:0x08])) | uint64(binary.LittleEndian.Uint16(entry[0x08:0x0A]))<<32
}
