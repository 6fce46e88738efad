// Package report renders scan results, either as the classic text lines or
// as JSON objects, one per line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// Record is the per-inode result. RawBlocks is the on-disk 512-byte sector
// count, which includes map and tree metadata; DataBlocks is the number of
// allocated data blocks found by walking the map, the figure slack is
// computed from.
type Record struct {
	Inode      uint32 `json:"inode"`
	Name       string `json:"name"`
	RawBlocks  uint64 `json:"raw_blocks"`
	Bytes      uint64 `json:"bytes"`
	Slack      uint64 `json:"slack"`
	DataBlocks uint64 `json:"data_blocks"`
}

// Summary totals one scan target. Blocks sums allocated data blocks, the
// same figure slack is computed from, not the raw sector fields.
type Summary struct {
	Target     string `json:"target"`
	Inodes     uint64 `json:"inodes"`
	Blocks     uint64 `json:"blocks"`
	Bytes      uint64 `json:"bytes"`
	SlackBytes uint64 `json:"slack_bytes"`
}

// Reporter writes results to one stream. In JSON mode each record and the
// summary become one object per line and the banner is suppressed.
type Reporter struct {
	w    io.Writer
	json bool
	enc  *json.Encoder
}

func NewReporter(w io.Writer, jsonOut bool) *Reporter {
	r := &Reporter{w: w, json: jsonOut}

	if jsonOut {
		r.enc = json.NewEncoder(w)
	}

	return r
}

func (r *Reporter) Banner(target string) {
	if r.json {
		return
	}

	fmt.Fprintf(r.w, "Scanning device: %s...\n", target)
}

func (r *Reporter) Record(rec Record) error {
	if r.json {
		return r.enc.Encode(rec)
	}

	_, err := fmt.Fprintf(r.w, "[%d:%s] (%d blocks) (%d bytes) (slack %d) (actual blocks: %d)\n",
		rec.Inode, rec.Name, rec.RawBlocks, rec.Bytes, rec.Slack, rec.DataBlocks)

	return err
}

func (r *Reporter) Summary(sum *Summary) error {
	if r.json {
		return r.enc.Encode(sum)
	}

	_, err := fmt.Fprintf(r.w, "%s: %d inodes, %d blocks, %d bytes, %d slack bytes\n",
		sum.Target, sum.Inodes, sum.Blocks, sum.Bytes, sum.SlackBytes)

	return err
}
