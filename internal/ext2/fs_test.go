package ext2

import (
	"errors"
	"testing"

	"github.com/amadigan/slackscan/internal/ext2/ext2test"
	"github.com/stretchr/testify/assert"
)

func openImage(t *testing.T, img *ext2test.Image) *Filesystem {
	t.Helper()

	fs, err := Open(img.Reader())
	if err != nil {
		t.Fatalf("failed to open image: %v", err)
	}

	return fs
}

func TestOpen(t *testing.T) {
	t.Parallel()

	fs := openImage(t, ext2test.New(64, 32))

	assert.Equal(t, uint64(1024), fs.BlockSize())
	assert.Equal(t, uint32(32), fs.Superblock().InodesCount)

	groups := fs.Groups()

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	assert.Equal(t, uint64(4), groups[0].InodeBitmap)
}

func TestFilesystemInodeBitmap(t *testing.T) {
	t.Parallel()

	img := ext2test.New(64, 32)
	img.WriteInode(2, ext2test.Inode{Mode: ModeDirectory | 0o755, Links: 2})
	img.WriteInode(12, ext2test.Inode{Mode: ModeRegular | 0o644, Links: 1})

	fs := openImage(t, img)

	bitmap, err := fs.InodeBitmap(0)
	if err != nil {
		t.Fatalf("failed to read inode bitmap: %v", err)
	}

	assert.Len(t, bitmap, 4)
	assert.False(t, bitmap.IsSet(0))
	assert.True(t, bitmap.IsSet(1))  // inode 2
	assert.True(t, bitmap.IsSet(11)) // inode 12

	_, err = fs.InodeBitmap(1)
	assert.ErrorIs(t, err, ErrCorruptStructure)
}

func TestReadInodeRange(t *testing.T) {
	t.Parallel()

	fs := openImage(t, ext2test.New(64, 32))

	_, err := fs.ReadInode(0)
	assert.ErrorIs(t, err, ErrInvalidInode)

	_, err = fs.ReadInode(33)
	assert.ErrorIs(t, err, ErrInvalidInode)

	var inodeErr *InodeError

	if !errors.As(err, &inodeErr) {
		t.Fatalf("expected InodeError, got %v", err)
	}

	assert.Equal(t, uint32(33), inodeErr.Inode)
	assert.Equal(t, uint32(32), inodeErr.Max)
}
