package ext2

import "iter"

// InodeBitmap is one group's inode allocation bitmap. Bit 0 of byte 0 is
// local index 0, which is the group's first inode.
type InodeBitmap []byte

func (b InodeBitmap) IsSet(index uint32) bool {
	byteIdx := index / 8

	if uint64(byteIdx) >= uint64(len(b)) {
		return false
	}

	return b[byteIdx]&(1<<(index%8)) != 0
}

// Used yields the local index of every set bit in ascending order.
func (b InodeBitmap) Used() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for i, octet := range b {
			if octet == 0 {
				continue
			}

			for bit := uint32(0); bit < 8; bit++ {
				if octet&(1<<bit) == 0 {
					continue
				}

				if !yield(uint32(i)*8 + bit) {
					return
				}
			}
		}
	}
}
