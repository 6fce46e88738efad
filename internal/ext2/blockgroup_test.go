package ext2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/amadigan/slackscan/internal/ext2/ext2test"
	"github.com/stretchr/testify/assert"
)

func TestReadGroupDescriptors(t *testing.T) {
	t.Parallel()

	img := ext2test.New(64, 32)

	sb, err := ReadSuperblock(img.Reader())
	if err != nil {
		t.Fatalf("failed to read superblock: %v", err)
	}

	descs, err := ReadGroupDescriptors(img.Reader(), sb)
	if err != nil {
		t.Fatalf("failed to read group descriptors: %v", err)
	}

	if len(descs) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(descs))
	}

	assert.Equal(t, uint64(3), descs[0].BlockBitmap)
	assert.Equal(t, uint64(4), descs[0].InodeBitmap)
	assert.Equal(t, uint64(5), descs[0].InodeTable)
	assert.Equal(t, uint32(55), descs[0].FreeBlocksCount)
	assert.Equal(t, uint32(32), descs[0].FreeInodesCount)
	assert.Equal(t, uint32(0), descs[0].UsedDirsCount)
	assert.Equal(t, uint16(0), descs[0].Flags)
}

func TestReadGroupDescriptorsCorrupt(t *testing.T) {
	t.Parallel()

	corrupt := func(mutate func(gd []byte)) error {
		img := ext2test.New(64, 32)
		data := img.Bytes()
		mutate(data[2*ext2test.BlockSize:])

		sb, err := ReadSuperblock(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("failed to read superblock: %v", err)
		}

		_, err = ReadGroupDescriptors(bytes.NewReader(data), sb)

		return err
	}

	// inode bitmap beyond the block count
	err := corrupt(func(gd []byte) { binary.LittleEndian.PutUint32(gd[0x04:], 9999) })
	assert.ErrorIs(t, err, ErrCorruptStructure)

	var corruptErr *CorruptError

	if !errors.As(err, &corruptErr) {
		t.Fatalf("expected CorruptError, got %v", err)
	}

	assert.Equal(t, "group descriptor 0", corruptErr.Struct)

	// the 4 block inode table would run past the end
	err = corrupt(func(gd []byte) { binary.LittleEndian.PutUint32(gd[0x08:], 62) })
	assert.ErrorIs(t, err, ErrCorruptStructure)

	// block bitmap pointer of zero
	err = corrupt(func(gd []byte) { binary.LittleEndian.PutUint32(gd[0x00:], 0) })
	assert.ErrorIs(t, err, ErrCorruptStructure)

	// more free inodes than the group holds
	err = corrupt(func(gd []byte) { binary.LittleEndian.PutUint16(gd[0x0E:], 999) })
	assert.ErrorIs(t, err, ErrCorruptStructure)
}

func TestReadGroupDescriptors64Bit(t *testing.T) {
	t.Parallel()

	sb := &Superblock{
		InodesCount:     32,
		BlocksCount:     0x1_FFFF_FFFE,
		FirstDataBlock:  0,
		LogBlockSize:    2,
		BlocksPerGroup:  0xFFFF_FFFF,
		InodesPerGroup:  16,
		InodeSize:       256,
		DescSize:        64,
		FeatureIncompat: FeatureIncompat64Bit,
	}

	buf := make([]byte, 4096+2*64)

	d0 := buf[4096:]
	binary.LittleEndian.PutUint32(d0[0x00:], 0x10)
	binary.LittleEndian.PutUint32(d0[0x04:], 0x11)
	binary.LittleEndian.PutUint32(d0[0x08:], 0x12)
	binary.LittleEndian.PutUint16(d0[0x0C:], 0x0001)
	binary.LittleEndian.PutUint16(d0[0x0E:], 5)
	binary.LittleEndian.PutUint16(d0[0x10:], 3)
	binary.LittleEndian.PutUint16(d0[0x12:], BGFlagInodeUninit)
	binary.LittleEndian.PutUint32(d0[0x20:], 1) // block bitmap high half
	binary.LittleEndian.PutUint32(d0[0x24:], 1) // inode bitmap high half
	binary.LittleEndian.PutUint32(d0[0x28:], 1) // inode table high half
	binary.LittleEndian.PutUint16(d0[0x2C:], 2) // free blocks high half

	d1 := buf[4096+64:]
	binary.LittleEndian.PutUint32(d1[0x00:], 0x20)
	binary.LittleEndian.PutUint32(d1[0x04:], 0x21)
	binary.LittleEndian.PutUint32(d1[0x08:], 0x22)
	binary.LittleEndian.PutUint16(d1[0x0E:], 16)

	descs, err := ReadGroupDescriptors(bytes.NewReader(buf), sb)
	if err != nil {
		t.Fatalf("failed to read group descriptors: %v", err)
	}

	if len(descs) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(descs))
	}

	assert.Equal(t, uint64(0x1_0000_0010), descs[0].BlockBitmap)
	assert.Equal(t, uint64(0x1_0000_0011), descs[0].InodeBitmap)
	assert.Equal(t, uint64(0x1_0000_0012), descs[0].InodeTable)
	assert.Equal(t, uint32(0x0002_0001), descs[0].FreeBlocksCount)
	assert.Equal(t, uint32(5), descs[0].FreeInodesCount)
	assert.Equal(t, uint32(3), descs[0].UsedDirsCount)
	assert.Equal(t, BGFlagInodeUninit, descs[0].Flags)

	assert.Equal(t, uint64(0x20), descs[1].BlockBitmap)
	assert.Equal(t, uint64(0x22), descs[1].InodeTable)
	assert.Equal(t, uint32(16), descs[1].FreeInodesCount)
}

func TestReadGroupDescriptorsImplausibleCount(t *testing.T) {
	t.Parallel()

	sb := &Superblock{
		BlocksCount:    1 << 30,
		BlocksPerGroup: 1,
		LogBlockSize:   2,
		InodesPerGroup: 16,
		InodeSize:      256,
		DescSize:       32,
	}

	_, err := ReadGroupDescriptors(bytes.NewReader(nil), sb)

	assert.ErrorIs(t, err, ErrCorruptStructure)
}
