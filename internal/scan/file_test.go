package scan

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/amadigan/slackscan/internal/report"
	"github.com/stretchr/testify/assert"
)

func TestFileMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing")

	_, err := File(path, "", report.NewReporter(io.Discard, false), false)

	assert.ErrorContains(t, err, "failed to stat")
	assert.ErrorContains(t, err, path)
}

func TestFileBadPartitionTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")

	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("failed to write sample: %v", err)
	}

	_, err := File(path, filepath.Join(dir, "partitions"), report.NewReporter(io.Discard, false), false)

	assert.ErrorContains(t, err, "failed to open")
}
