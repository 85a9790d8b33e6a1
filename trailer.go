// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import "bytes"

// appendMoveResizeTrailer appends the 24-byte move-resize undo trailer to
// bs: the fixed magic followed by the export's size and offset as they
// stood immediately before the move-resize that is about to happen.
func appendMoveResizeTrailer(bs *ByteStream, prevSize, prevOffset uint32) {
	bs.Append(moveResizeTrailerMagic[:])
	_ = appendU32(bs, prevSize)
	_ = appendU32(bs, prevOffset)
}

// readMoveResizeTrailer reports the (size, offset) pair recorded in the
// trailer at the end of buf, if the final moveResizeTrailerSize bytes carry
// the magic.
func readMoveResizeTrailer(buf []byte) (prevSize, prevOffset uint32, ok bool) {
	if len(buf) < moveResizeTrailerSize {
		return 0, 0, false
	}

	tail := buf[len(buf)-moveResizeTrailerSize:]
	if !bytes.Equal(tail[:16], moveResizeTrailerMagic[:]) {
		return 0, 0, false
	}

	size := uint32(tail[16]) | uint32(tail[17])<<8 | uint32(tail[18])<<16 | uint32(tail[19])<<24
	offset := uint32(tail[20]) | uint32(tail[21])<<8 | uint32(tail[22])<<16 | uint32(tail[23])<<24

	return size, offset, true
}
