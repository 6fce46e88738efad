package ext2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/amadigan/slackscan/internal/util"
	"github.com/google/uuid"
)

const (
	// SuperblockOffset is the fixed byte offset of the superblock from the
	// start of the filesystem, regardless of block size.
	SuperblockOffset = 1024
	superblockSize   = 1024

	// SuperblockMagic identifies the ext2 family.
	SuperblockMagic uint16 = 0xEF53

	revGoodOld    = 0
	oldInodeSize  = 128
	oldFirstInode = 11
)

// Incompat features change the on-disk layout; the unsupported ones below
// make the group and inode math here wrong, so they are rejected at open.
const (
	FeatureIncompatFiletype   uint32 = 0x0002
	featureIncompatMetaBG     uint32 = 0x0010
	FeatureIncompatExtents    uint32 = 0x0040
	FeatureIncompat64Bit      uint32 = 0x0080
	featureIncompatInlineData uint32 = 0x8000
)

const (
	FeatureROCompatLargeFile uint32 = 0x0002
	FeatureROCompatHugeFile  uint32 = 0x0008
	featureROCompatBigalloc  uint32 = 0x0200
)

type Superblock struct {
	InodesCount     uint32
	BlocksCount     uint64
	FirstDataBlock  uint32
	LogBlockSize    uint32
	BlocksPerGroup  uint32
	InodesPerGroup  uint32
	RevLevel        uint32
	FirstInode      uint32
	InodeSize       uint16
	DescSize        uint16
	FeatureCompat   uint32
	FeatureIncompat uint32
	FeatureROCompat uint32
	UUID            uuid.UUID
	Label           string
}

// ReadSuperblock parses the superblock at its fixed offset and validates the
// geometry everything else is located with.
func ReadSuperblock(r io.ReaderAt) (*Superblock, error) {
	buf := make([]byte, superblockSize)

	if _, err := r.ReadAt(buf, SuperblockOffset); err != nil {
		return nil, &IOError{Op: "read superblock", Offset: SuperblockOffset, Err: err}
	}

	if magic := binary.LittleEndian.Uint16(buf[0x38:0x3A]); magic != SuperblockMagic {
		return nil, &MagicError{Offset: SuperblockOffset + 0x38, Got: magic, Want: SuperblockMagic}
	}

	sb := &Superblock{
		InodesCount:     binary.LittleEndian.Uint32(buf[0x00:0x04]),
		BlocksCount:     uint64(binary.LittleEndian.Uint32(buf[0x04:0x08])),
		FirstDataBlock:  binary.LittleEndian.Uint32(buf[0x14:0x18]),
		LogBlockSize:    binary.LittleEndian.Uint32(buf[0x18:0x1C]),
		BlocksPerGroup:  binary.LittleEndian.Uint32(buf[0x20:0x24]),
		InodesPerGroup:  binary.LittleEndian.Uint32(buf[0x28:0x2C]),
		RevLevel:        binary.LittleEndian.Uint32(buf[0x4C:0x50]),
		FirstInode:      binary.LittleEndian.Uint32(buf[0x54:0x58]),
		InodeSize:       binary.LittleEndian.Uint16(buf[0x58:0x5A]),
		FeatureCompat:   binary.LittleEndian.Uint32(buf[0x5C:0x60]),
		FeatureIncompat: binary.LittleEndian.Uint32(buf[0x60:0x64]),
		FeatureROCompat: binary.LittleEndian.Uint32(buf[0x64:0x68]),
		DescSize:        32,
	}

	if id, err := uuid.FromBytes(buf[0x68:0x78]); err == nil {
		sb.UUID = id
	}

	sb.Label = string(bytes.TrimRight(buf[0x78:0x88], "\x00"))

	if sb.RevLevel == revGoodOld {
		// rev 0 has no dynamic inode fields
		sb.InodeSize = oldInodeSize
		sb.FirstInode = oldFirstInode
	}

	if sb.Is64Bit() {
		sb.DescSize = binary.LittleEndian.Uint16(buf[0xFE:0x100])
		sb.BlocksCount |= uint64(binary.LittleEndian.Uint32(buf[0x150:0x154])) << 32
	}

	if err := sb.validate(); err != nil {
		return nil, err
	}

	return sb, nil
}

func (sb *Superblock) validate() error {
	if unsupported := sb.FeatureIncompat & (featureIncompatMetaBG | featureIncompatInlineData); unsupported != 0 {
		return sbCorrupt(fmt.Sprintf("unsupported incompatible features %#x", unsupported))
	}

	if sb.LogBlockSize > 6 {
		return sbCorrupt(fmt.Sprintf("log block size %d out of range", sb.LogBlockSize))
	}

	if sb.BlocksCount == 0 || sb.InodesCount == 0 {
		return sbCorrupt("zero block or inode count")
	}

	if sb.BlocksPerGroup == 0 || sb.InodesPerGroup == 0 {
		return sbCorrupt("zero blocks or inodes per group")
	}

	if uint64(sb.InodesPerGroup) > sb.BlockSize()*8 {
		return sbCorrupt(fmt.Sprintf("%d inodes per group exceed one bitmap block", sb.InodesPerGroup))
	}

	if sb.InodeSize < oldInodeSize || uint64(sb.InodeSize) > sb.BlockSize() {
		return sbCorrupt(fmt.Sprintf("inode size %d out of range", sb.InodeSize))
	}

	if sb.Is64Bit() && sb.DescSize < 32 {
		return sbCorrupt(fmt.Sprintf("descriptor size %d below minimum", sb.DescSize))
	}

	// Block 0 holds the superblock only when blocks are 1 KiB.
	if first := sb.FirstDataBlock; (sb.BlockSize() == 1024) != (first == 1) || first > 1 {
		return sbCorrupt(fmt.Sprintf("first data block %d inconsistent with block size %d", first, sb.BlockSize()))
	}

	if uint64(sb.FirstDataBlock) >= sb.BlocksCount {
		return sbCorrupt("first data block beyond block count")
	}

	if capacity := uint64(sb.GroupCount()) * uint64(sb.InodesPerGroup); uint64(sb.InodesCount) > capacity {
		return sbCorrupt(fmt.Sprintf("%d inodes exceed group capacity %d", sb.InodesCount, capacity))
	}

	return nil
}

func sbCorrupt(reason string) error {
	return &CorruptError{Struct: "superblock", Offset: SuperblockOffset, Reason: reason}
}

func (sb *Superblock) BlockSize() uint64 {
	return 1024 << sb.LogBlockSize
}

// GroupCount is the number of block groups, from the rounded-up block count.
func (sb *Superblock) GroupCount() uint32 {
	return uint32(util.DivCeil(sb.BlocksCount-uint64(sb.FirstDataBlock), uint64(sb.BlocksPerGroup)))
}

func (sb *Superblock) Is64Bit() bool {
	return sb.FeatureIncompat&FeatureIncompat64Bit != 0
}

func (sb *Superblock) HasFiletype() bool {
	return sb.FeatureIncompat&FeatureIncompatFiletype != 0
}

// HasLargeFiles reports whether logical sizes carry 64 bits.
func (sb *Superblock) HasLargeFiles() bool {
	return sb.FeatureROCompat&FeatureROCompatLargeFile != 0
}

// HasHugeFiles reports whether inode sector counts carry the high half.
func (sb *Superblock) HasHugeFiles() bool {
	return sb.FeatureROCompat&FeatureROCompatHugeFile != 0
}
