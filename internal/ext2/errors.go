package ext2

import (
	"errors"
	"fmt"
)

// Every failure the decoder can produce wraps one of these kinds, so callers
// match with errors.Is and pull context from the concrete types below.
var (
	ErrIO               = errors.New("i/o error")
	ErrInvalidMagic     = errors.New("invalid filesystem magic")
	ErrCorruptStructure = errors.New("corrupt structure")
	ErrInvalidInode     = errors.New("invalid inode")
)

// IOError reports a failed or short read against the underlying source.
type IOError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// MagicError reports a superblock that is not ext2 family.
type MagicError struct {
	Offset int64
	Got    uint16
	Want   uint16
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("bad superblock magic at offset %d: %#06x, want %#06x", e.Offset, e.Got, e.Want)
}

func (e *MagicError) Unwrap() error {
	return ErrInvalidMagic
}

// CorruptError reports an on-disk structure that failed a validity check.
type CorruptError struct {
	Struct string
	Offset int64
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt %s at offset %d: %s", e.Struct, e.Offset, e.Reason)
}

func (e *CorruptError) Unwrap() error {
	return ErrCorruptStructure
}

// InodeError reports an inode number outside the table.
type InodeError struct {
	Inode uint32
	Max   uint32
}

func (e *InodeError) Error() string {
	return fmt.Sprintf("inode %d out of range [1, %d]", e.Inode, e.Max)
}

func (e *InodeError) Unwrap() error {
	return ErrInvalidInode
}
