package ext2

import "encoding/binary"

// RootInode is the top of the directory tree; inode numbering starts at 1.
const RootInode uint32 = 2

// inodeBlockArea is the size of the block map / extent root area.
const inodeBlockArea = 60

const (
	ModeTypeMask  uint16 = 0xF000
	ModeSocket    uint16 = 0xC000
	ModeSymlink   uint16 = 0xA000
	ModeRegular   uint16 = 0x8000
	ModeBlockDev  uint16 = 0x6000
	ModeDirectory uint16 = 0x4000
	ModeCharDev   uint16 = 0x2000
	ModeFIFO      uint16 = 0x1000
)

const (
	// FlagExtents marks an inode whose block area holds an extent tree root
	// instead of the classic pointer map.
	FlagExtents uint32 = 0x00080000

	flagInlineData uint32 = 0x10000000
)

// Inode is one decoded inode record. BlocksRaw is the on-disk sector count,
// which includes map metadata blocks; Size is the logical byte length.
type Inode struct {
	Number     uint32
	Mode       uint16
	LinksCount uint16
	Size       uint64
	BlocksRaw  uint64
	Flags      uint32
	FileACL    uint32
	Block      [inodeBlockArea]byte

	// byte offset of the record on the source, kept for error context
	off int64
}

func decodeInode(num uint32, off int64, data []byte, sb *Superblock) *Inode {
	in := &Inode{
		Number:     num,
		off:        off,
		Mode:       binary.LittleEndian.Uint16(data[0x00:0x02]),
		LinksCount: binary.LittleEndian.Uint16(data[0x1A:0x1C]),
		Size:       uint64(binary.LittleEndian.Uint32(data[0x04:0x08])),
		BlocksRaw:  uint64(binary.LittleEndian.Uint32(data[0x1C:0x20])),
		Flags:      binary.LittleEndian.Uint32(data[0x20:0x24]),
		FileACL:    binary.LittleEndian.Uint32(data[0x68:0x6C]),
	}

	copy(in.Block[:], data[0x28:0x64])

	if sb.HasLargeFiles() && in.IsRegular() {
		in.Size |= uint64(binary.LittleEndian.Uint32(data[0x6C:0x70])) << 32
	}

	if sb.HasHugeFiles() {
		in.BlocksRaw |= uint64(binary.LittleEndian.Uint16(data[0x74:0x76])) << 32
	}

	return in
}

func (in *Inode) IsRegular() bool {
	return in.Mode&ModeTypeMask == ModeRegular
}

func (in *Inode) IsDirectory() bool {
	return in.Mode&ModeTypeMask == ModeDirectory
}

func (in *Inode) IsSymlink() bool {
	return in.Mode&ModeTypeMask == ModeSymlink
}

func (in *Inode) UsesExtents() bool {
	return in.Flags&FlagExtents != 0
}

// mapsDataBlocks reports whether the block area references data blocks at
// all. Devices and FIFOs keep device numbers there, fast symlinks keep the
// target text, so walking those as block pointers would count garbage.
func (in *Inode) mapsDataBlocks() bool {
	if in.Flags&flagInlineData != 0 {
		return false
	}

	switch in.Mode & ModeTypeMask {
	case ModeRegular, ModeDirectory:
		return true
	case ModeSymlink:
		if in.FileACL == 0 {
			return in.BlocksRaw != 0
		}

		return in.Size >= inodeBlockArea
	default:
		return false
	}
}
