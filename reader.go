// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import (
	"fmt"
	"os"
	"sync"
)

// Package holds a parsed package: the decompressed byte stream, summary,
// tables, and a cache of deserialized objects by export index. It is the
// single load-then-query-then-edit unit the rest of the package revolves
// around.
type Package struct {
	name string
	path string

	bs      *ByteStream
	summary *Summary
	tables  *Tables

	opts ReaderOptions

	mu          sync.Mutex
	objectCache map[int]Object

	lastErr error
}

// Name returns the registered package name (usually the file's base name
// without extension).
func (p *Package) Name() string { return p.name }

// Summary returns the parsed header.
func (p *Package) Summary() *Summary { return p.summary }

// Tables returns the parsed name/import/export tables.
func (p *Package) Tables() *Tables { return p.tables }

// Err returns the last error recorded on the package. Load failures are not
// recorded here: Open, OpenWithOptions and LoadBytes return them directly
// and return no package, so Err on a successfully loaded package is nil.
func (p *Package) Err() error { return p.lastErr }

// RawBytes returns the package's current decompressed, in-memory buffer.
// The slice is shared with the package; callers must not mutate it.
func (p *Package) RawBytes() []byte { return p.bs.Bytes() }

// Open loads a package from path with default options and registers it in
// the process-wide registry under its base file name.
func Open(path string) (*Package, error) {
	return OpenWithOptions(path, ReaderOptions{})
}

// OpenWithOptions loads a package from path using explicit reader options.
func OpenWithOptions(path string, opts ReaderOptions) (*Package, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFile, err)
	}

	name := packageNameFromPath(path)

	p, err := LoadBytes(name, buf, opts)
	if err != nil {
		return nil, err
	}

	p.path = path

	return p, nil
}

// LoadBytes parses an in-memory package image under the given registry
// name, decompressing it first if required, and registers the result.
func LoadBytes(name string, buf []byte, opts ReaderOptions) (*Package, error) {
	opts.applyDefaults()

	p := &Package{
		name:        name,
		opts:        opts,
		objectCache: make(map[int]Object),
	}

	if err := p.parse(buf); err != nil {
		p.lastErr = err
		return nil, err
	}

	Register(name, p)

	return p, nil
}

// parse decompresses buf if necessary and loads the summary and tables,
// clearing the object cache first.
func (p *Package) parse(buf []byte) error {
	p.mu.Lock()
	p.objectCache = make(map[int]Object)
	p.mu.Unlock()

	sig, err := NewByteStream(buf).PeekBytes(4)
	if err != nil || !isSignatureBytes(sig) {
		return ErrBadSignature
	}

	// A fully compressed envelope carries no summary layout, so its version
	// field is checked on the raw bytes before the summary is parsed.
	if len(buf) >= 6 && uint16(buf[4])|uint16(buf[5])<<8 != ExpectedVersion {
		decoded, derr := DecompressEnvelope(buf)
		if derr != nil {
			return fmt.Errorf("%w: %v", ErrBadVersion, derr)
		}

		buf = decoded
	}

	bs := NewByteStream(buf)

	summary, err := ReadSummary(bs)
	if err != nil {
		return err
	}

	switch {
	case summary.IsFullyCompressed():
		decoded, derr := DecompressEnvelope(buf)
		if derr != nil {
			return fmt.Errorf("%w: %v", ErrBadVersion, derr)
		}

		bs = NewByteStream(decoded)
		if summary, err = ReadSummary(bs); err != nil {
			return err
		}

	case summary.IsCompressed():
		decoded, derr := p.decompressChunked(buf, summary)
		if derr != nil {
			return fmt.Errorf("%w: %v", ErrIsCompressed, derr)
		}

		bs = NewByteStream(decoded)
		if summary, err = ReadSummary(bs); err != nil {
			return err
		}
	}

	tables, err := ReadTables(bs, summary)
	if err != nil {
		return err
	}

	p.bs = bs
	p.summary = summary
	p.tables = tables

	return nil
}

// decompressChunked reassembles a stream whose prefix is a freshly
// serialized summary with compression fields cleared, followed by the
// concatenated decompressed chunk bytes, matching the format's contract
// for summary-declared (as opposed to whole-file) compression.
func (p *Package) decompressChunked(buf []byte, summary *Summary) ([]byte, error) {
	if len(summary.CompressedChunks) == 0 {
		return nil, fmt.Errorf("%w: no compressed chunks declared", ErrDecompression)
	}

	chunkData, err := DecompressChunks(buf, summary.CompressedChunks)
	if err != nil {
		return nil, err
	}

	summary.ClearCompression()

	out := NewByteStream(nil)
	if err := summary.Serialize(out); err != nil {
		return nil, err
	}

	out.Append(chunkData)

	return out.Bytes(), nil
}

// reparse re-reads the summary and tables from the package's current
// stream, discarding the object cache. Every mutating edit operation calls
// this so cached offsets and deserialized objects stay consistent with the
// mutated bytes.
func (p *Package) reparse() error {
	buf := p.bs.Bytes()

	bs := NewByteStream(buf)

	summary, err := ReadSummary(bs)
	if err != nil {
		return err
	}

	tables, err := ReadTables(bs, summary)
	if err != nil {
		return err
	}

	p.bs = bs
	p.summary = summary
	p.tables = tables

	p.mu.Lock()
	p.objectCache = make(map[int]Object)
	p.mu.Unlock()

	return nil
}

// GetExportData returns the raw serialized payload bytes for export idx.
func (p *Package) GetExportData(idx int) ([]byte, error) {
	if idx <= 0 || idx >= len(p.tables.Exports) {
		return nil, ErrExportNotFound
	}

	exp := &p.tables.Exports[idx]

	return p.bs.Bytes()[exp.SerialOffset : exp.SerialOffset+exp.SerialSize], nil
}

// GetExportEntry returns export idx, or the sentinel null entry when idx is
// out of range.
func (p *Package) GetExportEntry(idx int) ExportEntry {
	if idx <= 0 || idx >= len(p.tables.Exports) {
		return ExportEntry{}
	}

	return p.tables.Exports[idx]
}

// GetImportEntry returns import idx, or the sentinel null entry when idx is
// out of range.
func (p *Package) GetImportEntry(idx int) ImportEntry {
	if idx <= 0 || idx >= len(p.tables.Imports) {
		return ImportEntry{}
	}

	return p.tables.Imports[idx]
}

// FindByName returns the first export or import whose own (unqualified)
// name matches, preferring exports.
func (p *Package) FindByName(name string) (idx int, isExport bool, found bool) {
	for i := 1; i < len(p.tables.Exports); i++ {
		if p.tables.Exports[i].Name == name {
			return i, true, true
		}
	}

	for i := 1; i < len(p.tables.Imports); i++ {
		if p.tables.Imports[i].Name == name {
			return i, false, true
		}
	}

	return 0, false, false
}

// FindByFullName returns the first export or import whose full name
// matches, optionally constrained to a declared type. wantType is ignored
// when empty.
func (p *Package) FindByFullName(fullName, wantType string) (idx int, isExport bool, found bool) {
	for i := 1; i < len(p.tables.Exports); i++ {
		e := &p.tables.Exports[i]
		if e.FullName == fullName && (wantType == "" || e.Type == wantType) {
			return i, true, true
		}
	}

	for i := 1; i < len(p.tables.Imports); i++ {
		imp := &p.tables.Imports[i]
		if imp.FullName == fullName && (wantType == "" || imp.Type == wantType) {
			return i, false, true
		}
	}

	return 0, false, false
}

// FindByOffset returns the export whose serial region contains the given
// absolute file offset.
func (p *Package) FindByOffset(offset int64) (idx int, found bool) {
	for i := 1; i < len(p.tables.Exports); i++ {
		e := &p.tables.Exports[i]

		start := int64(e.SerialOffset)
		end := start + int64(e.SerialSize)

		if offset >= start && offset < end {
			return i, true
		}
	}

	return 0, false
}

// packageNameFromPath derives a registry name from a file path: the base
// name with its extension stripped.
func packageNameFromPath(path string) string {
	base := path

	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			base = path[i+1:]
			break
		}
	}

	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}

	return base
}

// isSignatureBytes reports whether the first 4 bytes of a peek equal the
// package signature, little-endian.
func isSignatureBytes(b []byte) bool {
	if len(b) < 4 {
		return false
	}

	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24

	return v == PackageSignature
}
