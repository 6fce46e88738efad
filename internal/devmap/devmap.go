// Package devmap resolves device numbers to device paths by reading the
// kernel's partition list.
package devmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultPath is the standard kernel partition list.
const DefaultPath = "/proc/partitions"

type devno struct {
	major uint32
	minor uint32
}

// Table maps major:minor device numbers to /dev paths.
type Table map[devno]string

// Load reads and parses a partition list file.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return table, nil
}

// Parse reads the "major minor #blocks name" table. Header and blank lines
// are dropped, every device line becomes a /dev path.
func Parse(r io.Reader) (Table, error) {
	table := Table{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}

		major, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			continue
		}

		minor, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			continue
		}

		table[devno{uint32(major), uint32(minor)}] = "/dev/" + fields[3]
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return table, nil
}

// Lookup returns the device path for a major:minor pair.
func (t Table) Lookup(major, minor uint32) (string, bool) {
	path, ok := t[devno{major, minor}]

	return path, ok
}
