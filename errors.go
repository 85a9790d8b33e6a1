// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import "errors"

// Sentinel errors for package operations. Use errors.Is in callers.
var (
	// ErrBadSignature means the leading magic does not match the expected
	// package signature 0x9E2A83C1.
	ErrBadSignature = errors.New("bad package signature")
	// ErrBadVersion means the summary version differs from the expected
	// value and envelope recovery also failed.
	ErrBadVersion = errors.New("bad package version")
	// ErrIsCompressed means a decompression pass was required and failed.
	ErrIsCompressed = errors.New("compressed package decode failed")
	// ErrDecompression means LZO block decompression failed a sanity check.
	ErrDecompression = errors.New("decompression error")
	// ErrUninitialized means an operation was attempted before a
	// successful load.
	ErrUninitialized = errors.New("package not loaded")
	// ErrFile means the underlying byte buffer could not be produced or
	// written.
	ErrFile = errors.New("file error")

	// ErrOutOfRange means a stream read went past the buffer end.
	ErrOutOfRange = errors.New("read out of range")
	// ErrNegativeSeek means a seek would move before the start of the
	// stream.
	ErrNegativeSeek = errors.New("negative seek")

	// ErrNilPackage means an operation was given a nil package.
	ErrNilPackage = errors.New("nil package")
	// ErrExportNotFound means an export index is out of range.
	ErrExportNotFound = errors.New("export not found")
	// ErrImportNotFound means an import index is out of range.
	ErrImportNotFound = errors.New("import not found")
	// ErrNameNotFound means a name-table index is out of range.
	ErrNameNotFound = errors.New("name not found")
	// ErrUnknownVariant means an export's type string matched no known
	// object variant and no fallback applied.
	ErrUnknownVariant = errors.New("unknown object variant")

	// ErrSizeMismatch means a write-in-place replacement buffer length
	// does not equal the target length.
	ErrSizeMismatch = errors.New("size mismatch")
	// ErrProtectedRegion means a write targeted the protected leading
	// signature/version bytes.
	ErrProtectedRegion = errors.New("write targets protected header region")
	// ErrBadPropertySize means a declared property size exceeds the
	// containing export's serial size.
	ErrBadPropertySize = errors.New("bad property size")
	// ErrBadElementCount means a declared array element count exceeds the
	// declared property size.
	ErrBadElementCount = errors.New("bad element count")
	// ErrScriptSizeOverflow means a struct's serial size exceeds the
	// 0xFFFF bytecode limit.
	ErrScriptSizeOverflow = errors.New("script serial size overflow")
	// ErrNoTrailer means undo-move-resize found no trailer, or the
	// trailer magic did not match.
	ErrNoTrailer = errors.New("no move-resize trailer")
	// ErrInvalidEntryName means an add-name/import/export call received
	// an empty or otherwise unusable name.
	ErrInvalidEntryName = errors.New("invalid entry name")
)
