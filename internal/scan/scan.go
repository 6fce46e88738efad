// Package scan drives whole-device and single-file slack scans over the
// ext2 decoder, accumulating totals and emitting per-inode records.
package scan

import (
	"errors"
	"fmt"
	"io"

	"github.com/amadigan/slackscan/internal/applog"
	"github.com/amadigan/slackscan/internal/ext2"
	"github.com/amadigan/slackscan/internal/ident"
	"github.com/amadigan/slackscan/internal/report"
)

var log = applog.New("scan")

// Device scans every allocated inode of the filesystem on src and returns
// the totals. Per-inode records are emitted through rep in verbose mode; the
// summary is left to the caller. The scan aborts on the first error.
func Device(src io.ReaderAt, target string, rep *report.Reporter, verbose bool) (*report.Summary, error) {
	fs, err := ext2.Open(src)
	if err != nil {
		if errors.Is(err, ext2.ErrInvalidMagic) {
			if found := foreignFS(src); found != nil {
				return nil, fmt.Errorf("%s contains %s, not an ext filesystem: %w", target, found, err)
			}
		}

		return nil, fmt.Errorf("failed to open filesystem on %s: %w", target, err)
	}

	sb := fs.Superblock()
	log.Infof("%s: filesystem %s label %q rev %d, %d blocks of %d bytes", target, sb.UUID, sb.Label, sb.RevLevel, sb.BlocksCount, fs.BlockSize())

	sum, err := scanInodes(fs, rep, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", target, err)
	}

	sum.Target = target

	return sum, nil
}

// foreignFS names the filesystem actually present on src, best effort.
// The signature gates need the source size, which plain readers do not
// expose.
func foreignFS(src io.ReaderAt) *ident.Filesystem {
	sized, ok := src.(interface{ Size() int64 })
	if !ok {
		return nil
	}

	found, err := ident.Probe(sized.Size(), src)
	if err != nil {
		log.Debugf("signature probe failed: %v", err)

		return nil
	}

	return found
}

func scanInodes(fs *ext2.Filesystem, rep *report.Reporter, verbose bool) (*report.Summary, error) {
	sb := fs.Superblock()
	sum := &report.Summary{}

	// dir is the name-resolution context: the most recently visited
	// directory, starting at the root. Only verbose mode resolves names.
	var dir *ext2.Inode

	if verbose {
		root, err := fs.ReadInode(ext2.RootInode)
		if err != nil {
			return nil, err
		}

		dir = root
	}

	for group, desc := range fs.Groups() {
		if desc.FreeInodesCount == sb.InodesPerGroup || desc.Flags&ext2.BGFlagInodeUninit != 0 {
			continue
		}

		bitmap, err := fs.InodeBitmap(uint32(group))
		if err != nil {
			return nil, err
		}

		base := uint32(group) * sb.InodesPerGroup

		for idx := range bitmap.Used() {
			if idx >= sb.InodesPerGroup || base+idx+1 > sb.InodesCount {
				break
			}

			in, err := fs.ReadInode(base + idx + 1)
			if err != nil {
				return nil, err
			}

			if in.IsDirectory() {
				dir = in
			}

			blocks, slack, err := processInode(fs, in, dir, rep, verbose)
			if err != nil {
				return nil, err
			}

			sum.Inodes++
			sum.Blocks += blocks
			sum.Bytes += in.Size
			sum.SlackBytes += slack
		}
	}

	return sum, nil
}

// processInode resolves one inode's allocated data blocks and slack, and in
// verbose mode emits its record named against the directory context.
func processInode(fs *ext2.Filesystem, in, dir *ext2.Inode, rep *report.Reporter, verbose bool) (uint64, uint64, error) {
	blocks, err := fs.CountDataBlocks(in)
	if err != nil {
		return 0, 0, err
	}

	slack := Slack(fs.BlockSize(), blocks, in.Size)

	if !verbose {
		return blocks, slack, nil
	}

	name, found, err := fs.LookupName(dir, in.Number)
	if err != nil {
		return 0, 0, err
	}

	if !found {
		name = "?"
	}

	err = rep.Record(report.Record{
		Inode:      in.Number,
		Name:       name,
		RawBlocks:  in.BlocksRaw,
		Bytes:      in.Size,
		Slack:      slack,
		DataBlocks: blocks,
	})

	return blocks, slack, err
}
