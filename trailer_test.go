// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import "testing"

func TestMoveResizeTrailerRoundTrip(t *testing.T) {
	bs := NewByteStream([]byte{0xDE, 0xAD, 0xBE, 0xEF})

	appendMoveResizeTrailer(bs, 123, 456)

	size, offset, ok := readMoveResizeTrailer(bs.Bytes())
	if !ok {
		t.Fatal("readMoveResizeTrailer: ok = false, want true")
	}
	if size != 123 || offset != 456 {
		t.Fatalf("got (size=%d, offset=%d), want (123, 456)", size, offset)
	}
}

func TestMoveResizeTrailerAbsent(t *testing.T) {
	_, _, ok := readMoveResizeTrailer([]byte{1, 2, 3})
	if ok {
		t.Fatal("expected ok = false for a buffer shorter than the trailer")
	}

	_, _, ok = readMoveResizeTrailer(make([]byte, moveResizeTrailerSize))
	if ok {
		t.Fatal("expected ok = false when the magic does not match")
	}
}
