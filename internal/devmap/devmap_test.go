package devmap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleList = `major minor  #blocks  name

   8        0  488386584 sda
   8        1     524288 sda1
   8        2  487860224 sda2
 259        0  500107608 nvme0n1
 259        1     262144 nvme0n1p1
`

func TestParse(t *testing.T) {
	t.Parallel()

	table, err := Parse(strings.NewReader(sampleList))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	assert.Len(t, table, 5)

	path, ok := table.Lookup(8, 1)
	assert.True(t, ok)
	assert.Equal(t, "/dev/sda1", path)

	path, ok = table.Lookup(259, 0)
	assert.True(t, ok)
	assert.Equal(t, "/dev/nvme0n1", path)

	_, ok = table.Lookup(8, 16)
	assert.False(t, ok)
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	table, err := Parse(strings.NewReader("major minor  #blocks  name\n"))

	assert.NoError(t, err)
	assert.Empty(t, table)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "partitions")

	if err := os.WriteFile(path, []byte(sampleList), 0o644); err != nil {
		t.Fatalf("failed to write list: %v", err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	devPath, ok := table.Lookup(8, 2)
	assert.True(t, ok)
	assert.Equal(t, "/dev/sda2", devPath)

	_, err = Load(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "failed to open")
}
