// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ByteStream is a seekable, readable, writable in-memory buffer of bytes
// with position tracking for reads and writes. Every codec component in
// this package operates on a ByteStream; no component touches *os.File
// directly. All multi-byte fields are little-endian. Closing and reopening
// is a no-op: the stream is a plain value wrapped around a slice.
type ByteStream struct {
	buf []byte
	pos int
}

// NewByteStream wraps buf for reading and writing. The returned stream
// takes ownership of buf; callers must not mutate buf afterwards except
// through the stream.
func NewByteStream(buf []byte) *ByteStream {
	return &ByteStream{buf: buf}
}

// Bytes returns the stream's full backing buffer.
func (bs *ByteStream) Bytes() []byte { return bs.buf }

// Len returns the total length of the backing buffer.
func (bs *ByteStream) Len() int { return len(bs.buf) }

// Tell returns the current cursor position.
func (bs *ByteStream) Tell() int64 { return int64(bs.pos) }

// Seek whence values, matching io.Seeker.
const (
	SeekStart   = io.SeekStart
	SeekCurrent = io.SeekCurrent
	SeekEnd     = io.SeekEnd
)

// Seek moves the cursor to offset relative to whence.
func (bs *ByteStream) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case SeekStart:
		base = 0
	case SeekCurrent:
		base = int64(bs.pos)
	case SeekEnd:
		base = int64(len(bs.buf))
	default:
		return 0, fmt.Errorf("bytestream: invalid whence %d", whence)
	}

	target := base + offset
	if target < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeSeek, target)
	}

	bs.pos = int(target)

	return target, nil
}

// remaining returns the number of unread bytes from the cursor.
func (bs *ByteStream) remaining() int { return len(bs.buf) - bs.pos }

// ReadBytes reads and returns n bytes starting at the cursor, advancing it.
func (bs *ByteStream) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > bs.remaining() {
		return nil, fmt.Errorf("%w: want %d have %d", ErrOutOfRange, n, bs.remaining())
	}

	out := bs.buf[bs.pos : bs.pos+n]
	bs.pos += n

	return out, nil
}

// PeekBytes returns n bytes starting at the cursor without advancing it.
func (bs *ByteStream) PeekBytes(n int) ([]byte, error) {
	if n < 0 || n > bs.remaining() {
		return nil, fmt.Errorf("%w: want %d have %d", ErrOutOfRange, n, bs.remaining())
	}

	return bs.buf[bs.pos : bs.pos+n], nil
}

// ReadU8 reads one unsigned byte.
func (bs *ByteStream) ReadU8() (uint8, error) {
	b, err := bs.ReadBytes(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (bs *ByteStream) ReadU16() (uint16, error) {
	b, err := bs.ReadBytes(2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (bs *ByteStream) ReadU32() (uint32, error) {
	b, err := bs.ReadBytes(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian uint64.
func (bs *ByteStream) ReadU64() (uint64, error) {
	b, err := bs.ReadBytes(8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

// ReadI32 reads a little-endian signed int32.
func (bs *ByteStream) ReadI32() (int32, error) {
	v, err := bs.ReadU32()
	return int32(v), err
}

// ReadF32 reads a little-endian IEEE-754 float32.
func (bs *ByteStream) ReadF32() (float32, error) {
	v, err := bs.ReadU32()
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(v), nil
}

// ReadNameRef reads an 8-byte name reference: 4-byte table index then
// 4-byte numeric suffix.
func (bs *ByteStream) ReadNameRef() (NameRef, error) {
	idx, err := bs.ReadU32()
	if err != nil {
		return NameRef{}, err
	}

	suffix, err := bs.ReadU32()
	if err != nil {
		return NameRef{}, err
	}

	return NameRef{Index: idx, Suffix: suffix}, nil
}

// ReadObjRef reads a 4-byte signed object reference.
func (bs *ByteStream) ReadObjRef() (ObjRef, error) {
	v, err := bs.ReadI32()
	return ObjRef(v), err
}

// ReadGUID reads a 16-byte GUID as four uint32 words.
func (bs *ByteStream) ReadGUID() (GUID, error) {
	var g GUID
	var err error

	if g.A, err = bs.ReadU32(); err != nil {
		return g, err
	}
	if g.B, err = bs.ReadU32(); err != nil {
		return g, err
	}
	if g.C, err = bs.ReadU32(); err != nil {
		return g, err
	}
	if g.D, err = bs.ReadU32(); err != nil {
		return g, err
	}

	return g, nil
}

// ReadCString reads a NUL-terminated string, advancing past the terminator.
func (bs *ByteStream) ReadCString() (string, error) {
	start := bs.pos
	for bs.pos < len(bs.buf) && bs.buf[bs.pos] != 0 {
		bs.pos++
	}

	if bs.pos >= len(bs.buf) {
		return "", fmt.Errorf("%w: unterminated string", ErrOutOfRange)
	}

	s := string(bs.buf[start:bs.pos])
	bs.pos++ // consume the terminator

	return s, nil
}

// ReadFixedString reads n raw bytes and returns them as a string with any
// trailing NUL bytes trimmed.
func (bs *ByteStream) ReadFixedString(n int) (string, error) {
	b, err := bs.ReadBytes(n)
	if err != nil {
		return "", err
	}

	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}

	return string(b[:end]), nil
}

// ReadLengthPrefixedString reads the wire format used by the package file:
// a signed 32-bit length followed by that many bytes including a trailing
// NUL, or nothing at all when length is zero.
func (bs *ByteStream) ReadLengthPrefixedString() (string, error) {
	n, err := bs.ReadI32()
	if err != nil {
		return "", err
	}

	if n <= 0 {
		return "", nil
	}

	b, err := bs.ReadBytes(int(n))
	if err != nil {
		return "", err
	}

	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}

	return string(b[:end]), nil
}

// WriteU32 overwrites 4 bytes at the cursor with a little-endian uint32 and
// advances the cursor. The destination range must already exist in buf.
func (bs *ByteStream) WriteU32(v uint32) error {
	if bs.remaining() < 4 {
		return fmt.Errorf("%w: write u32 at %d", ErrOutOfRange, bs.pos)
	}

	binary.LittleEndian.PutUint32(bs.buf[bs.pos:bs.pos+4], v)
	bs.pos += 4

	return nil
}

// WriteU16 overwrites 2 bytes at the cursor with a little-endian uint16.
func (bs *ByteStream) WriteU16(v uint16) error {
	if bs.remaining() < 2 {
		return fmt.Errorf("%w: write u16 at %d", ErrOutOfRange, bs.pos)
	}

	binary.LittleEndian.PutUint16(bs.buf[bs.pos:bs.pos+2], v)
	bs.pos += 2

	return nil
}

// WriteBytes overwrites len(p) bytes at the cursor and advances it.
func (bs *ByteStream) WriteBytes(p []byte) error {
	if bs.remaining() < len(p) {
		return fmt.Errorf("%w: write %d bytes at %d", ErrOutOfRange, len(p), bs.pos)
	}

	copy(bs.buf[bs.pos:], p)
	bs.pos += len(p)

	return nil
}

// Append grows the backing buffer by appending p at the end, independent of
// the cursor position.
func (bs *ByteStream) Append(p []byte) {
	bs.buf = append(bs.buf, p...)
}

// Truncate cuts the backing buffer down to n bytes. If the cursor now sits
// past the new end it is clamped to n.
func (bs *ByteStream) Truncate(n int) error {
	if n < 0 || n > len(bs.buf) {
		return fmt.Errorf("%w: truncate to %d of %d", ErrOutOfRange, n, len(bs.buf))
	}

	bs.buf = bs.buf[:n]
	if bs.pos > n {
		bs.pos = n
	}

	return nil
}

// Replace swaps the entire backing buffer for replacement and resets the
// cursor to zero.
func (bs *ByteStream) Replace(replacement []byte) {
	bs.buf = replacement
	bs.pos = 0
}
