package ext2

import (
	"fmt"
	"io"

	"github.com/amadigan/slackscan/internal/applog"
	"github.com/amadigan/slackscan/internal/util"
)

var log = applog.New("ext2")

// Filesystem is a read-only decoding session over one ext2 family
// filesystem. The superblock and group descriptor table are held for the
// session's life; everything else is read on demand. Not safe for
// concurrent use.
type Filesystem struct {
	r      io.ReaderAt
	sb     *Superblock
	groups []GroupDesc
}

// Open reads and validates the superblock and the group descriptor table.
func Open(r io.ReaderAt) (*Filesystem, error) {
	sb, err := ReadSuperblock(r)
	if err != nil {
		return nil, err
	}

	if sb.FeatureROCompat&featureROCompatBigalloc != 0 {
		log.Warnf("bigalloc filesystem, slack is reported at block granularity")
	}

	groups, err := ReadGroupDescriptors(r, sb)
	if err != nil {
		return nil, err
	}

	log.Debugf("opened filesystem %s: %d blocks of %d bytes, %d inodes in %d groups",
		sb.UUID, sb.BlocksCount, sb.BlockSize(), sb.InodesCount, len(groups))

	return &Filesystem{r: r, sb: sb, groups: groups}, nil
}

func (fs *Filesystem) Superblock() *Superblock {
	return fs.sb
}

func (fs *Filesystem) Groups() []GroupDesc {
	return fs.groups
}

func (fs *Filesystem) BlockSize() uint64 {
	return fs.sb.BlockSize()
}

func (fs *Filesystem) readBlock(block uint64) ([]byte, error) {
	if block == 0 || block >= fs.sb.BlocksCount {
		return nil, &CorruptError{Struct: "block pointer", Offset: 0, Reason: fmt.Sprintf("block %d outside [1, %d)", block, fs.sb.BlocksCount)}
	}

	off := util.Int64(block * fs.BlockSize())
	buf := make([]byte, fs.BlockSize())

	if _, err := fs.r.ReadAt(buf, off); err != nil {
		return nil, &IOError{Op: fmt.Sprintf("read block %d", block), Offset: off, Err: err}
	}

	return buf, nil
}

// InodeBitmap reads the inode allocation bitmap for one group.
func (fs *Filesystem) InodeBitmap(group uint32) (InodeBitmap, error) {
	if uint64(group) >= uint64(len(fs.groups)) {
		return nil, &CorruptError{Struct: "inode bitmap", Offset: 0, Reason: fmt.Sprintf("group %d outside table of %d", group, len(fs.groups))}
	}

	buf, err := fs.readBlock(fs.groups[group].InodeBitmap)
	if err != nil {
		return nil, fmt.Errorf("failed to read inode bitmap of group %d: %w", group, err)
	}

	return InodeBitmap(buf[:util.DivCeil(fs.sb.InodesPerGroup, 8)]), nil
}

// ReadInode decodes one inode record by its 1-based number.
func (fs *Filesystem) ReadInode(num uint32) (*Inode, error) {
	if num == 0 || num > fs.sb.InodesCount {
		return nil, &InodeError{Inode: num, Max: fs.sb.InodesCount}
	}

	group := (num - 1) / fs.sb.InodesPerGroup
	index := (num - 1) % fs.sb.InodesPerGroup

	off := util.Int64(fs.groups[group].InodeTable*fs.BlockSize() + uint64(index)*uint64(fs.sb.InodeSize))
	buf := make([]byte, fs.sb.InodeSize)

	if _, err := fs.r.ReadAt(buf, off); err != nil {
		return nil, &IOError{Op: fmt.Sprintf("read inode %d", num), Offset: off, Err: err}
	}

	return decodeInode(num, off, buf, fs.sb), nil
}
