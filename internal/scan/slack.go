package scan

// Slack returns the unused bytes between the allocated space and the logical
// size. An inode with zero allocated blocks is still charged one block.
func Slack(blockSize, blocks, size uint64) uint64 {
	raw := blockSize

	if blocks > 0 {
		raw = blocks * blockSize
	}

	if raw < size {
		return 0
	}

	return raw - size
}
