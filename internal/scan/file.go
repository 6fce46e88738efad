package scan

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/amadigan/slackscan/internal/block"
	"github.com/amadigan/slackscan/internal/devmap"
	"github.com/amadigan/slackscan/internal/ext2"
	"github.com/amadigan/slackscan/internal/report"

	"golang.org/x/sys/unix"
)

// File scans one file on a mounted filesystem. The file's inode number and
// device come from stat, the device path from the partition table at
// partitions (the kernel's list when empty), and the inode is decoded
// straight off the device, bypassing the bitmap.
func File(path, partitions string, rep *report.Reporter, verbose bool) (*report.Summary, error) {
	var st unix.Stat_t

	if err := unix.Stat(path, &st); err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if st.Ino > math.MaxUint32 {
		return nil, fmt.Errorf("inode %d of %s does not fit an ext2 filesystem", st.Ino, path)
	}

	if partitions == "" {
		partitions = devmap.DefaultPath
	}

	devs, err := devmap.Load(partitions)
	if err != nil {
		return nil, err
	}

	major := unix.Major(uint64(st.Dev))
	minor := unix.Minor(uint64(st.Dev))

	devPath, ok := devs.Lookup(major, minor)
	if !ok {
		return nil, fmt.Errorf("no block device %d:%d found for %s", major, minor, path)
	}

	log.Debugf("%s: inode %d on device %d:%d (%s)", path, st.Ino, major, minor, devPath)

	src, err := block.Open(devPath, 0)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	fs, err := ext2.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open filesystem on %s: %w", devPath, err)
	}

	in, err := fs.ReadInode(uint32(st.Ino))
	if err != nil {
		return nil, fmt.Errorf("failed to read inode of %s: %w", path, err)
	}

	blocks, err := fs.CountDataBlocks(in)
	if err != nil {
		return nil, fmt.Errorf("failed to count blocks of %s: %w", path, err)
	}

	slack := Slack(fs.BlockSize(), blocks, in.Size)

	if verbose {
		err = rep.Record(report.Record{
			Inode:      in.Number,
			Name:       filepath.Base(path),
			RawBlocks:  in.BlocksRaw,
			Bytes:      in.Size,
			Slack:      slack,
			DataBlocks: blocks,
		})
		if err != nil {
			return nil, err
		}
	}

	return &report.Summary{Target: path, Inodes: 1, Blocks: blocks, Bytes: in.Size, SlackBytes: slack}, nil
}
