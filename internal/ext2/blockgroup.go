package ext2

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/amadigan/slackscan/internal/util"
)

const (
	descSize64 = 64

	// maxGroups caps the descriptor table at 64 MiB so a corrupt block count
	// cannot balloon the open.
	maxGroups = 1 << 20

	// BGFlagInodeUninit marks a group whose inode table was never initialized.
	BGFlagInodeUninit uint16 = 0x0001
)

// GroupDesc is one entry of the block group descriptor table, with the 64-bit
// halves already folded in.
type GroupDesc struct {
	BlockBitmap     uint64
	InodeBitmap     uint64
	InodeTable      uint64
	FreeBlocksCount uint32
	FreeInodesCount uint32
	UsedDirsCount   uint32
	Flags           uint16
}

// ReadGroupDescriptors reads the whole descriptor table, which occupies the
// blocks directly after the superblock's block.
func ReadGroupDescriptors(r io.ReaderAt, sb *Superblock) ([]GroupDesc, error) {
	count := sb.GroupCount()
	if count > maxGroups {
		return nil, &CorruptError{Struct: "group descriptor table", Offset: 0, Reason: fmt.Sprintf("implausible group count %d", count)}
	}

	descSize := uint64(sb.DescSize)
	tableOff := util.Int64(uint64(sb.FirstDataBlock+1) * sb.BlockSize())

	buf := make([]byte, uint64(count)*descSize)

	if _, err := r.ReadAt(buf, tableOff); err != nil {
		return nil, &IOError{Op: "read group descriptors", Offset: tableOff, Err: err}
	}

	inodeTableBlocks := util.DivCeil(uint64(sb.InodesPerGroup)*uint64(sb.InodeSize), sb.BlockSize())
	descs := make([]GroupDesc, count)

	for i := range descs {
		data := buf[uint64(i)*descSize:]

		desc := GroupDesc{
			BlockBitmap:     uint64(binary.LittleEndian.Uint32(data[0x00:0x04])),
			InodeBitmap:     uint64(binary.LittleEndian.Uint32(data[0x04:0x08])),
			InodeTable:      uint64(binary.LittleEndian.Uint32(data[0x08:0x0C])),
			FreeBlocksCount: uint32(binary.LittleEndian.Uint16(data[0x0C:0x0E])),
			FreeInodesCount: uint32(binary.LittleEndian.Uint16(data[0x0E:0x10])),
			UsedDirsCount:   uint32(binary.LittleEndian.Uint16(data[0x10:0x12])),
			Flags:           binary.LittleEndian.Uint16(data[0x12:0x14]),
		}

		if sb.Is64Bit() && sb.DescSize >= descSize64 {
			desc.BlockBitmap |= uint64(binary.LittleEndian.Uint32(data[0x20:0x24])) << 32
			desc.InodeBitmap |= uint64(binary.LittleEndian.Uint32(data[0x24:0x28])) << 32
			desc.InodeTable |= uint64(binary.LittleEndian.Uint32(data[0x28:0x2C])) << 32
			desc.FreeBlocksCount |= uint32(binary.LittleEndian.Uint16(data[0x2C:0x2E])) << 16
			desc.FreeInodesCount |= uint32(binary.LittleEndian.Uint16(data[0x2E:0x30])) << 16
		}

		if err := checkGroupDesc(sb, uint32(i), desc, inodeTableBlocks); err != nil {
			return nil, err
		}

		descs[i] = desc
	}

	return descs, nil
}

func checkGroupDesc(sb *Superblock, group uint32, desc GroupDesc, inodeTableBlocks uint64) error {
	corrupt := func(reason string) error {
		return &CorruptError{
			Struct: fmt.Sprintf("group descriptor %d", group),
			Offset: util.Int64(uint64(sb.FirstDataBlock+1)*sb.BlockSize() + uint64(group)*uint64(sb.DescSize)),
			Reason: reason,
		}
	}

	if desc.InodeBitmap == 0 || desc.InodeBitmap >= sb.BlocksCount {
		return corrupt(fmt.Sprintf("inode bitmap block %d out of range", desc.InodeBitmap))
	}

	if desc.BlockBitmap == 0 || desc.BlockBitmap >= sb.BlocksCount {
		return corrupt(fmt.Sprintf("block bitmap block %d out of range", desc.BlockBitmap))
	}

	if desc.InodeTable == 0 || desc.InodeTable+inodeTableBlocks > sb.BlocksCount {
		return corrupt(fmt.Sprintf("inode table blocks [%d, %d) out of range", desc.InodeTable, desc.InodeTable+inodeTableBlocks))
	}

	if desc.FreeInodesCount > sb.InodesPerGroup {
		return corrupt(fmt.Sprintf("%d free inodes exceed %d per group", desc.FreeInodesCount, sb.InodesPerGroup))
	}

	return nil
}
