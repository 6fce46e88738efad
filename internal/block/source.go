// Package block opens raw devices and disk images for scanning, optionally
// narrowed to one partition of the medium.
package block

import (
	"fmt"
	"io"

	"github.com/amadigan/slackscan/internal/applog"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
)

var log = applog.New("block")

// Source is a read-only window over a device or image file. Offsets are
// relative to the window, so a filesystem on a partition reads the same as
// one spanning the whole medium.
type Source struct {
	path  string
	disk  *disk.Disk
	r     io.ReaderAt
	start int64
	size  int64
}

// Open opens path read-only. Partition numbers are 1-based entries of the
// medium's partition table; 0 means the whole medium.
func Open(path string, partition int) (*Source, error) {
	d, err := diskfs.Open(path, diskfs.WithOpenMode(diskfs.ReadOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	f, err := d.Backend.Sys()
	if err != nil {
		d.Close()

		return nil, fmt.Errorf("failed to get file handle for %s: %w", path, err)
	}

	src := &Source{path: path, disk: d, r: f, size: d.Size}

	if partition == 0 {
		return src, nil
	}

	table, err := d.GetPartitionTable()
	if err != nil {
		d.Close()

		return nil, fmt.Errorf("failed to read partition table of %s: %w", path, err)
	}

	parts := table.GetPartitions()

	if partition < 0 || partition > len(parts) {
		d.Close()

		return nil, fmt.Errorf("%s has %d partitions, no partition %d", path, len(parts), partition)
	}

	part := parts[partition-1]

	if part.GetSize() <= 0 {
		d.Close()

		return nil, fmt.Errorf("partition %d of %s is unused", partition, path)
	}

	src.start = part.GetStart()
	src.size = part.GetSize()

	log.Debugf("%s: %s partition %d at offset %d, %d bytes", path, table.Type(), partition, src.start, src.size)

	return src, nil
}

func (s *Source) Path() string {
	return s.path
}

func (s *Source) Size() int64 {
	return s.size
}

// ReadAt reads from the window. Reads reaching past the window's end are
// truncated and return io.EOF with the bytes read.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= s.size {
		return 0, io.EOF
	}

	short := false

	if off+int64(len(p)) > s.size {
		p = p[:s.size-off]
		short = true
	}

	n, err := s.r.ReadAt(p, s.start+off)

	if err == nil && short {
		err = io.EOF
	}

	return n, err
}

func (s *Source) Close() error {
	return s.disk.Close()
}
