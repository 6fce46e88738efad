package ext2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/amadigan/slackscan/internal/ext2/ext2test"
	"github.com/stretchr/testify/assert"
)

func TestReadSuperblock(t *testing.T) {
	t.Parallel()

	img := ext2test.New(64, 32)
	img.SetUUID([16]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10})
	img.SetLabel("scratch")

	sb, err := ReadSuperblock(img.Reader())
	if err != nil {
		t.Fatalf("failed to read superblock: %v", err)
	}

	assert.Equal(t, uint32(32), sb.InodesCount)
	assert.Equal(t, uint64(64), sb.BlocksCount)
	assert.Equal(t, uint32(1), sb.FirstDataBlock)
	assert.Equal(t, uint64(1024), sb.BlockSize())
	assert.Equal(t, uint32(1), sb.GroupCount())
	assert.Equal(t, uint16(128), sb.InodeSize)
	assert.Equal(t, uint32(11), sb.FirstInode)
	assert.Equal(t, uint16(32), sb.DescSize)
	assert.Equal(t, "01020304-0506-0708-090a-0b0c0d0e0f10", sb.UUID.String())
	assert.Equal(t, "scratch", sb.Label)
	assert.False(t, sb.Is64Bit())
	assert.False(t, sb.HasFiletype())
	assert.False(t, sb.HasLargeFiles())
}

func TestReadSuperblockFeatures(t *testing.T) {
	t.Parallel()

	img := ext2test.New(64, 32)
	img.SetFeatures(0, FeatureIncompatFiletype|FeatureIncompatExtents, FeatureROCompatLargeFile|FeatureROCompatHugeFile)

	sb, err := ReadSuperblock(img.Reader())
	if err != nil {
		t.Fatalf("failed to read superblock: %v", err)
	}

	assert.True(t, sb.HasFiletype())
	assert.True(t, sb.HasLargeFiles())
	assert.True(t, sb.HasHugeFiles())
	assert.False(t, sb.Is64Bit())
}

func TestReadSuperblockBadMagic(t *testing.T) {
	t.Parallel()

	data := ext2test.New(64, 32).Bytes()
	binary.LittleEndian.PutUint16(data[1024+0x38:], 0xBEEF)

	_, err := ReadSuperblock(bytes.NewReader(data))

	assert.ErrorIs(t, err, ErrInvalidMagic)

	var magicErr *MagicError

	if !errors.As(err, &magicErr) {
		t.Fatalf("expected MagicError, got %v", err)
	}

	assert.Equal(t, int64(1024+0x38), magicErr.Offset)
	assert.Equal(t, uint16(0xBEEF), magicErr.Got)
	assert.Equal(t, SuperblockMagic, magicErr.Want)
}

func TestReadSuperblockShortSource(t *testing.T) {
	t.Parallel()

	_, err := ReadSuperblock(bytes.NewReader(make([]byte, 512)))

	assert.ErrorIs(t, err, ErrIO)
}

func TestReadSuperblockRevZero(t *testing.T) {
	t.Parallel()

	data := ext2test.New(64, 32).Bytes()
	sb := data[1024:2048]
	binary.LittleEndian.PutUint32(sb[0x4C:], 0)   // revision 0
	binary.LittleEndian.PutUint32(sb[0x54:], 99)  // garbage, field not defined yet
	binary.LittleEndian.PutUint16(sb[0x58:], 512) // garbage, field not defined yet

	got, err := ReadSuperblock(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to read superblock: %v", err)
	}

	assert.Equal(t, uint16(128), got.InodeSize)
	assert.Equal(t, uint32(11), got.FirstInode)
}

func TestReadSuperblockRejectsBadGeometry(t *testing.T) {
	t.Parallel()

	corrupt := func(mutate func(sb []byte)) error {
		data := ext2test.New(64, 32).Bytes()
		mutate(data[1024:2048])

		_, err := ReadSuperblock(bytes.NewReader(data))

		return err
	}

	// log block size beyond 64 KiB
	err := corrupt(func(sb []byte) { binary.LittleEndian.PutUint32(sb[0x18:], 7) })
	assert.ErrorIs(t, err, ErrCorruptStructure)

	var corruptErr *CorruptError

	if !errors.As(err, &corruptErr) {
		t.Fatalf("expected CorruptError, got %v", err)
	}

	assert.Equal(t, "superblock", corruptErr.Struct)

	// zero block count
	err = corrupt(func(sb []byte) { binary.LittleEndian.PutUint32(sb[0x04:], 0) })
	assert.ErrorIs(t, err, ErrCorruptStructure)

	// zero inodes per group
	err = corrupt(func(sb []byte) { binary.LittleEndian.PutUint32(sb[0x28:], 0) })
	assert.ErrorIs(t, err, ErrCorruptStructure)

	// more inodes per group than one bitmap block can track
	err = corrupt(func(sb []byte) { binary.LittleEndian.PutUint32(sb[0x28:], 16384) })
	assert.ErrorIs(t, err, ErrCorruptStructure)

	// inode record smaller than the classic layout
	err = corrupt(func(sb []byte) { binary.LittleEndian.PutUint16(sb[0x58:], 64) })
	assert.ErrorIs(t, err, ErrCorruptStructure)

	// 1 KiB blocks put the first data block at 1, never 0
	err = corrupt(func(sb []byte) { binary.LittleEndian.PutUint32(sb[0x14:], 0) })
	assert.ErrorIs(t, err, ErrCorruptStructure)

	// meta_bg moves the descriptor table, which the reader does not follow
	err = corrupt(func(sb []byte) { binary.LittleEndian.PutUint32(sb[0x60:], 0x0010) })
	assert.ErrorIs(t, err, ErrCorruptStructure)
}
