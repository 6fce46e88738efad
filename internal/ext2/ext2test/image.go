// Package ext2test builds small synthetic filesystem images for tests:
// 1024-byte blocks, one block group, inode records of 128 bytes. The layout
// is fixed: superblock in block 1, group descriptors in block 2, block and
// inode bitmaps in blocks 3 and 4, the inode table from block 5.
package ext2test

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	BlockSize = 1024
	InodeSize = 128

	blockBitmapBlock = 3
	inodeBitmapBlock = 4
	inodeTableBlock  = 5
)

// Dirent is one directory record to encode.
type Dirent struct {
	Inode uint32
	Type  uint8
	Name  string
}

// Inode is the raw material for one inode record.
type Inode struct {
	Mode   uint16
	Links  uint16
	Size   uint64
	Blocks uint32
	Flags  uint32
	Block  [60]byte
}

// Image is a filesystem image under construction.
type Image struct {
	buf    []byte
	blocks uint32
	inodes uint32
	free   uint32
	dirs   uint32
}

// New allocates an image of the given total blocks with one group holding
// the given inode count. No inodes are marked allocated yet.
func New(blocks, inodes uint32) *Image {
	img := &Image{
		buf:    make([]byte, blocks*BlockSize),
		blocks: blocks,
		inodes: inodes,
		free:   inodes,
	}

	sb := img.buf[1024:2048]
	binary.LittleEndian.PutUint32(sb[0x00:], inodes)           // inodes count
	binary.LittleEndian.PutUint32(sb[0x04:], blocks)           // blocks count
	binary.LittleEndian.PutUint32(sb[0x14:], 1)                // first data block
	binary.LittleEndian.PutUint32(sb[0x18:], 0)                // log block size
	binary.LittleEndian.PutUint32(sb[0x20:], 8192)             // blocks per group
	binary.LittleEndian.PutUint32(sb[0x28:], inodes)           // inodes per group
	binary.LittleEndian.PutUint16(sb[0x38:], 0xEF53)           // magic
	binary.LittleEndian.PutUint32(sb[0x4C:], 1)                // revision
	binary.LittleEndian.PutUint32(sb[0x54:], 11)               // first inode
	binary.LittleEndian.PutUint16(sb[0x58:], InodeSize)        // inode size

	img.writeGroupDesc()

	return img
}

func (img *Image) writeGroupDesc() {
	gd := img.buf[2*BlockSize : 2*BlockSize+32]
	binary.LittleEndian.PutUint32(gd[0x00:], blockBitmapBlock)
	binary.LittleEndian.PutUint32(gd[0x04:], inodeBitmapBlock)
	binary.LittleEndian.PutUint32(gd[0x08:], inodeTableBlock)
	binary.LittleEndian.PutUint16(gd[0x0C:], uint16(img.blocks-img.dataStart()))
	binary.LittleEndian.PutUint16(gd[0x0E:], uint16(img.free))
	binary.LittleEndian.PutUint16(gd[0x10:], uint16(img.dirs))
}

// dataStart is the first block after the inode table.
func (img *Image) dataStart() uint32 {
	return inodeTableBlock + (img.inodes*InodeSize+BlockSize-1)/BlockSize
}

// SetFeatures writes the compat, incompat and ro-compat feature words.
func (img *Image) SetFeatures(compat, incompat, rocompat uint32) {
	sb := img.buf[1024:2048]
	binary.LittleEndian.PutUint32(sb[0x5C:], compat)
	binary.LittleEndian.PutUint32(sb[0x60:], incompat)
	binary.LittleEndian.PutUint32(sb[0x64:], rocompat)
}

// SetUUID writes the 16 byte filesystem id.
func (img *Image) SetUUID(id [16]byte) {
	copy(img.buf[1024+0x68:1024+0x78], id[:])
}

// SetLabel writes the volume label, NUL padded.
func (img *Image) SetLabel(label string) {
	field := img.buf[1024+0x78 : 1024+0x88]

	for i := range field {
		field[i] = 0
	}

	copy(field, label)
}

// WriteInode stores a record, marks it allocated in the bitmap and updates
// the group's free and directory counts. Inode numbers are 1-based.
func (img *Image) WriteInode(num uint32, in Inode) {
	if num == 0 || num > img.inodes {
		panic(fmt.Sprintf("inode %d outside [1, %d]", num, img.inodes))
	}

	rec := img.buf[inodeTableBlock*BlockSize+(num-1)*InodeSize:]
	binary.LittleEndian.PutUint16(rec[0x00:], in.Mode)
	binary.LittleEndian.PutUint32(rec[0x04:], uint32(in.Size))
	binary.LittleEndian.PutUint16(rec[0x1A:], in.Links)
	binary.LittleEndian.PutUint32(rec[0x1C:], in.Blocks)
	binary.LittleEndian.PutUint32(rec[0x20:], in.Flags)
	copy(rec[0x28:0x64], in.Block[:])
	binary.LittleEndian.PutUint32(rec[0x6C:], uint32(in.Size>>32))

	bit := num - 1
	bitmap := img.buf[inodeBitmapBlock*BlockSize:]

	if bitmap[bit/8]&(1<<(bit%8)) == 0 {
		bitmap[bit/8] |= 1 << (bit % 8)
		img.free--

		if in.Mode&0xF000 == 0x4000 {
			img.dirs++
		}

		img.writeGroupDesc()
	}
}

// WriteBlock fills one whole block.
func (img *Image) WriteBlock(num uint32, data []byte) {
	if num == 0 || num >= img.blocks {
		panic(fmt.Sprintf("block %d outside [1, %d)", num, img.blocks))
	}

	if len(data) > BlockSize {
		panic(fmt.Sprintf("%d bytes do not fit one block", len(data)))
	}

	copy(img.buf[num*BlockSize:(num+1)*BlockSize], data)
}

// Bytes returns the raw image.
func (img *Image) Bytes() []byte {
	return img.buf
}

// Reader returns the image as a random access source.
func (img *Image) Reader() *bytes.Reader {
	return bytes.NewReader(img.buf)
}

// DirectBlocks builds a classic block area with the given direct pointers.
func DirectBlocks(blocks ...uint32) [60]byte {
	if len(blocks) > 12 {
		panic("more than 12 direct pointers")
	}

	var area [60]byte

	for i, b := range blocks {
		binary.LittleEndian.PutUint32(area[i*4:], b)
	}

	return area
}

// Indirect sets one of the indirect pointers of a block area: level 1 is
// singly, 2 doubly, 3 triply indirect.
func Indirect(area [60]byte, level int, block uint32) [60]byte {
	if level < 1 || level > 3 {
		panic("indirect level outside [1, 3]")
	}

	binary.LittleEndian.PutUint32(area[(11+level)*4:], block)

	return area
}

// PointerBlock encodes a block of u32 pointers.
func PointerBlock(ptrs ...uint32) []byte {
	block := make([]byte, BlockSize)

	for i, p := range ptrs {
		binary.LittleEndian.PutUint32(block[i*4:], p)
	}

	return block
}

// DirentBlock encodes directory records covering exactly one block; the
// last record absorbs the remaining space.
func DirentBlock(entries ...Dirent) []byte {
	block := make([]byte, BlockSize)
	pos := 0

	for i, e := range entries {
		recLen := 8 + (len(e.Name)+3)&^3

		if i == len(entries)-1 {
			recLen = BlockSize - pos
		}

		binary.LittleEndian.PutUint32(block[pos:], e.Inode)
		binary.LittleEndian.PutUint16(block[pos+4:], uint16(recLen))
		block[pos+6] = uint8(len(e.Name))
		block[pos+7] = e.Type
		copy(block[pos+8:], e.Name)
		pos += recLen
	}

	return block
}

// PutExtentHeader writes a 12 byte extent node header.
func PutExtentHeader(b []byte, entries, depth uint16) {
	binary.LittleEndian.PutUint16(b[0x00:], 0xF30A)
	binary.LittleEndian.PutUint16(b[0x02:], entries)
	binary.LittleEndian.PutUint16(b[0x04:], entries)
	binary.LittleEndian.PutUint16(b[0x06:], depth)
}

// PutExtentLeaf writes a 12 byte leaf entry mapping length blocks at start.
func PutExtentLeaf(b []byte, logical uint32, length uint16, start uint64) {
	binary.LittleEndian.PutUint32(b[0x00:], logical)
	binary.LittleEndian.PutUint16(b[0x04:], length)
	binary.LittleEndian.PutUint16(b[0x06:], uint16(start>>32))
	binary.LittleEndian.PutUint32(b[0x08:], uint32(start))
}

// PutExtentIndex writes a 12 byte index entry referencing a child node.
func PutExtentIndex(b []byte, logical uint32, child uint64) {
	binary.LittleEndian.PutUint32(b[0x00:], logical)
	binary.LittleEndian.PutUint32(b[0x04:], uint32(child))
	binary.LittleEndian.PutUint16(b[0x08:], uint16(child>>32))
}
