package ext2

import (
	"encoding/binary"
	"fmt"

	"github.com/amadigan/slackscan/internal/util"
)

const (
	directPointers = 12
	maxIndirection = 3
)

// CountDataBlocks walks the inode's block map or extent tree and counts the
// allocated data blocks. Map and tree blocks themselves are not counted;
// BlocksRaw is the field that includes them.
func (fs *Filesystem) CountDataBlocks(in *Inode) (uint64, error) {
	if !in.mapsDataBlocks() {
		return 0, nil
	}

	if in.UsesExtents() {
		return fs.countExtentBlocks(in)
	}

	return fs.countMappedBlocks(in)
}

// DataBlockList materializes the inode's data block addresses in file order,
// capped at the block count implied by the logical size. Meant for
// directories; holes are not represented.
func (fs *Filesystem) DataBlockList(in *Inode) ([]uint64, error) {
	if !in.mapsDataBlocks() || in.Size == 0 {
		return nil, nil
	}

	max := util.DivCeil(in.Size, fs.BlockSize())

	if in.UsesExtents() {
		return fs.listExtentBlocks(in, max)
	}

	return fs.listMappedBlocks(in, max)
}

func (fs *Filesystem) countMappedBlocks(in *Inode) (uint64, error) {
	var count uint64

	for i := 0; i < directPointers; i++ {
		if ptr := binary.LittleEndian.Uint32(in.Block[i*4 : i*4+4]); ptr != 0 {
			count++
		}
	}

	for level := 1; level <= maxIndirection; level++ {
		ptr := binary.LittleEndian.Uint32(in.Block[(directPointers+level-1)*4 : (directPointers+level)*4])
		if ptr == 0 {
			continue
		}

		indirect, err := fs.countIndirect(uint64(ptr), level)
		if err != nil {
			return 0, fmt.Errorf("inode %d: %w", in.Number, err)
		}

		count += indirect
	}

	return count, nil
}

func (fs *Filesystem) countIndirect(block uint64, level int) (uint64, error) {
	data, err := fs.readBlock(block)
	if err != nil {
		return 0, err
	}

	var count uint64

	for i := 0; i+4 <= len(data); i += 4 {
		ptr := binary.LittleEndian.Uint32(data[i : i+4])
		if ptr == 0 {
			continue
		}

		if level == 1 {
			count++

			continue
		}

		indirect, err := fs.countIndirect(uint64(ptr), level-1)
		if err != nil {
			return 0, err
		}

		count += indirect
	}

	return count, nil
}

func (fs *Filesystem) listMappedBlocks(in *Inode, max uint64) ([]uint64, error) {
	list := make([]uint64, 0, util.Least(max, 64))

	for i := 0; i < directPointers && uint64(len(list)) < max; i++ {
		if ptr := binary.LittleEndian.Uint32(in.Block[i*4 : i*4+4]); ptr != 0 {
			list = append(list, uint64(ptr))
		}
	}

	for level := 1; level <= maxIndirection && uint64(len(list)) < max; level++ {
		ptr := binary.LittleEndian.Uint32(in.Block[(directPointers+level-1)*4 : (directPointers+level)*4])
		if ptr == 0 {
			continue
		}

		var err error

		list, err = fs.appendIndirect(list, uint64(ptr), level, max)
		if err != nil {
			return nil, fmt.Errorf("inode %d: %w", in.Number, err)
		}
	}

	return list, nil
}

func (fs *Filesystem) appendIndirect(list []uint64, block uint64, level int, max uint64) ([]uint64, error) {
	data, err := fs.readBlock(block)
	if err != nil {
		return nil, err
	}

	for i := 0; i+4 <= len(data) && uint64(len(list)) < max; i += 4 {
		ptr := binary.LittleEndian.Uint32(data[i : i+4])
		if ptr == 0 {
			continue
		}

		if level == 1 {
			list = append(list, uint64(ptr))

			continue
		}

		list, err = fs.appendIndirect(list, uint64(ptr), level-1, max)
		if err != nil {
			return nil, err
		}
	}

	return list, nil
}
