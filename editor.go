// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import "fmt"

// protectedHeaderSize is the leading region no write-arbitrary call may
// touch: the 4-byte signature plus the 4-byte version/licensee-version pair.
const protectedHeaderSize int64 = 8

// functionBytecodeFillByte fills a Function export's expanded bytecode
// region during move-resize-to-end growth.
const functionBytecodeFillByte = 0x0B

// writeU32At overwrites the 4 bytes at offset with v.
func (p *Package) writeU32At(offset int64, v uint32) error {
	if _, err := p.bs.Seek(offset, SeekStart); err != nil {
		return err
	}

	return p.bs.WriteU32(v)
}

// exportSerialSizeFieldOffset and exportSerialOffsetFieldOffset are the
// byte offsets of the SerialSize/SerialOffset fields within one export
// entry's record, relative to its EntryOffset, per readExportEntry's fixed
// field order (two ObjRefs, one ObjRef, one NameRef, one ObjRef, two
// uint32s, then SerialSize/SerialOffset).
const (
	exportSerialSizeFieldOffset   int64 = 4 + 4 + 4 + 8 + 4 + 4 + 4
	exportSerialOffsetFieldOffset int64 = exportSerialSizeFieldOffset + 4
)

// WriteInPlace overwrites export idx's entire serialized payload with data,
// which must be exactly the export's current serial size. Returns a copy of
// the bytes it replaced.
func (p *Package) WriteInPlace(idx int, data []byte, opts EditOptions) ([]byte, error) {
	opts.applyDefaults()

	if idx <= 0 || idx >= len(p.tables.Exports) {
		return nil, ErrExportNotFound
	}

	entry := p.tables.Exports[idx]
	if uint32(len(data)) != entry.SerialSize {
		return nil, ErrSizeMismatch
	}

	prev, err := p.GetExportData(idx)
	if err != nil {
		return nil, err
	}

	backup := append([]byte(nil), prev...)

	if _, err := p.bs.Seek(int64(entry.SerialOffset), SeekStart); err != nil {
		return nil, err
	}
	if err := p.bs.WriteBytes(data); err != nil {
		return nil, err
	}

	if err := p.reparse(); err != nil {
		return nil, err
	}

	opts.Logger.Debugf("editor", "wrote %d bytes in place for export %d", len(data), idx)

	return backup, nil
}

// WriteName overwrites name table entry nameIdx's string. The replacement
// must encode to exactly the same byte length as the entry's current
// string storage; otherwise every fixed-offset record referencing names by
// index further down the file would need patching too, which write-name is
// not specified to do. Returns the name it replaced.
func (p *Package) WriteName(nameIdx int, name string, opts EditOptions) (string, error) {
	opts.applyDefaults()

	if nameIdx < 0 || nameIdx >= len(p.tables.Names) {
		return "", ErrNameNotFound
	}
	if name == "" {
		return "", ErrInvalidEntryName
	}

	entry := p.tables.Names[nameIdx]

	haveBytes := entry.EntrySize - 4 - 8
	wantBytes := int64(len(name) + 1)
	if wantBytes != haveBytes {
		return "", ErrSizeMismatch
	}

	if _, err := p.bs.Seek(entry.EntryOffset+4, SeekStart); err != nil {
		return "", err
	}

	if err := p.bs.WriteBytes(append([]byte(name), 0)); err != nil {
		return "", err
	}

	if err := p.reparse(); err != nil {
		return "", err
	}

	opts.Logger.Debugf("editor", "renamed name entry %d from %q to %q", nameIdx, entry.Name, name)

	return entry.Name, nil
}

// WriteArbitrary overwrites len(data) bytes starting at offset, which must
// lie outside the protected leading signature/version region. Returns a
// copy of the bytes it replaced.
func (p *Package) WriteArbitrary(offset int64, data []byte, opts EditOptions) ([]byte, error) {
	opts.applyDefaults()

	if offset < protectedHeaderSize {
		return nil, ErrProtectedRegion
	}

	if _, err := p.bs.Seek(offset, SeekStart); err != nil {
		return nil, err
	}

	prev, err := p.bs.PeekBytes(len(data))
	if err != nil {
		return nil, err
	}

	backup := append([]byte(nil), prev...)

	if err := p.bs.WriteBytes(data); err != nil {
		return nil, err
	}

	if err := p.reparse(); err != nil {
		return nil, err
	}

	opts.Logger.Debugf("editor", "wrote %d bytes at offset %d", len(data), offset)

	return backup, nil
}

// ResizeInPlace replaces export idx's payload with newPayload, which may be
// a different length than the export's current serial size. The stream is
// reassembled in memory and every later export's serial offset is cascaded
// by the resulting delta.
func (p *Package) ResizeInPlace(idx int, newPayload []byte, opts EditOptions) error {
	opts.applyDefaults()

	if idx <= 0 || idx >= len(p.tables.Exports) {
		return ErrExportNotFound
	}

	entry := p.tables.Exports[idx]
	start := int64(entry.SerialOffset)
	end := start + int64(entry.SerialSize)
	delta := int64(len(newPayload)) - int64(entry.SerialSize)

	buf := p.bs.Bytes()
	if end > int64(len(buf)) {
		return ErrOutOfRange
	}

	rebuilt := make([]byte, 0, len(buf)+int(delta))
	rebuilt = append(rebuilt, buf[:start]...)
	rebuilt = append(rebuilt, newPayload...)
	rebuilt = append(rebuilt, buf[end:]...)

	p.bs.Replace(rebuilt)

	if err := p.writeU32At(entry.EntryOffset+exportSerialSizeFieldOffset, uint32(len(newPayload))); err != nil {
		return err
	}

	for i := 1; i < len(p.tables.Exports); i++ {
		if i == idx {
			continue
		}

		other := p.tables.Exports[i]
		if int64(other.SerialOffset) < end {
			continue
		}

		newOffset := uint32(int64(other.SerialOffset) + delta)
		if err := p.writeU32At(other.EntryOffset+exportSerialOffsetFieldOffset, newOffset); err != nil {
			return err
		}
	}

	if err := p.reparse(); err != nil {
		return err
	}

	opts.Logger.Debugf("editor", "resized export %d in place by %d bytes", idx, delta)

	return nil
}

// MoveResizeToEnd relocates export idx's payload to end-of-file, growing or
// shrinking it to newSize, and appends a 24-byte undo trailer recording the
// export's size and offset as they stood beforehand. A Function export that
// grows has its expansion inserted between the fixed header and the
// bytecode tail, filled with opcode byte 0x0B and reflected in
// ScriptMemorySize/ScriptSerialSize; every other export, and any shrink,
// simply pads or truncates the payload at its end.
func (p *Package) MoveResizeToEnd(idx int, newSize uint32, opts EditOptions) error {
	opts.applyDefaults()

	if idx <= 0 || idx >= len(p.tables.Exports) {
		return ErrExportNotFound
	}

	entry := p.tables.Exports[idx]

	oldPayload, err := p.GetExportData(idx)
	if err != nil {
		return err
	}

	payload, err := resizeExportPayload(p, idx, entry, oldPayload, newSize)
	if err != nil {
		return err
	}

	prevSize := entry.SerialSize
	prevOffset := entry.SerialOffset
	newOffset := uint32(p.bs.Len())

	p.bs.Append(payload)

	if err := p.writeU32At(entry.EntryOffset+exportSerialSizeFieldOffset, uint32(len(payload))); err != nil {
		return err
	}
	if err := p.writeU32At(entry.EntryOffset+exportSerialOffsetFieldOffset, newOffset); err != nil {
		return err
	}

	appendMoveResizeTrailer(p.bs, prevSize, prevOffset)

	if err := p.reparse(); err != nil {
		return err
	}

	opts.Logger.Debugf("editor", "moved export %d to end, size %d -> %d", idx, prevSize, len(payload))

	return nil
}

// resizeExportPayload returns payload grown or shrunk to newSize according
// to entry's type-specific fill rule.
func resizeExportPayload(p *Package, idx int, entry ExportEntry, payload []byte, newSize uint32) ([]byte, error) {
	oldSize := uint32(len(payload))

	switch {
	case newSize == oldSize:
		return append([]byte(nil), payload...), nil
	case newSize < oldSize:
		return append([]byte(nil), payload[:newSize]...), nil
	}

	delta := int(newSize - oldSize)

	if entry.Type == "Function" {
		return expandFunctionPayload(p, idx, entry, payload, delta)
	}

	out := make([]byte, 0, newSize)
	out = append(out, payload...)
	out = append(out, make([]byte, delta)...)

	return out, nil
}

// expandFunctionPayload inserts delta bytes of opcode 0x0B between a
// Function export's fixed struct header and its bytecode tail, bumping
// ScriptMemorySize and ScriptSerialSize by delta. It locates the header's
// end by replaying the same field-read order buildField uses rather than
// assuming a fixed byte offset, since the preceding BaseObject/Field
// preamble is variable length.
func expandFunctionPayload(p *Package, idx int, entry ExportEntry, payload []byte, delta int) ([]byte, error) {
	bs := NewByteStream(append([]byte(nil), payload...))
	c := &deserCtx{pkg: p, idx: idx, bs: bs, opts: DeserializeOptions{Mode: ParseStrict}, entry: entry}

	if _, err := buildField(c, true); err != nil {
		return nil, fmt.Errorf("locate function header: %w", err)
	}

	// UStruct reads ScriptTextRef, FirstChildRef, CppTextRef, Line, TextPos
	// (five 4-byte fields) before ScriptMemorySize/ScriptSerialSize.
	if _, err := bs.Seek(20, SeekCurrent); err != nil {
		return nil, err
	}

	memSizeOff := bs.Tell()

	memSize, err := bs.ReadU32()
	if err != nil {
		return nil, err
	}

	serialSize, err := bs.ReadU32()
	if err != nil {
		return nil, err
	}

	bytecodeOff := bs.Tell()

	out := NewByteStream(nil)
	out.Append(payload[:memSizeOff])
	_ = appendU32(out, memSize+uint32(delta))
	_ = appendU32(out, serialSize+uint32(delta))

	fill := make([]byte, delta)
	for i := range fill {
		fill[i] = functionBytecodeFillByte
	}
	out.Append(fill)
	out.Append(payload[bytecodeOff:])

	return out.Bytes(), nil
}

// UndoMoveResize reads the trailer at end-of-file and, if its magic
// matches, restores export idx's serial offset and size from it and drops
// the trailer. It fails with ErrNoTrailer if no trailer is present.
func (p *Package) UndoMoveResize(idx int, opts EditOptions) error {
	opts.applyDefaults()

	if idx <= 0 || idx >= len(p.tables.Exports) {
		return ErrExportNotFound
	}

	prevSize, prevOffset, ok := readMoveResizeTrailer(p.bs.Bytes())
	if !ok {
		return ErrNoTrailer
	}

	if err := p.bs.Truncate(p.bs.Len() - moveResizeTrailerSize); err != nil {
		return err
	}

	entry := p.tables.Exports[idx]

	if err := p.writeU32At(entry.EntryOffset+exportSerialSizeFieldOffset, prevSize); err != nil {
		return err
	}
	if err := p.writeU32At(entry.EntryOffset+exportSerialOffsetFieldOffset, prevOffset); err != nil {
		return err
	}

	if err := p.reparse(); err != nil {
		return err
	}

	opts.Logger.Debugf("editor", "undid move-resize for export %d, restored size %d offset %d", idx, prevSize, prevOffset)

	return nil
}

// FindQuery describes one Find lookup. Exactly one of Name, FullName, or
// Offset should be set; Type narrows a FullName lookup to exports/imports
// declaring that type, and is ignored otherwise. Glob treats Name or
// FullName as a pathrules pattern instead of an exact match.
type FindQuery struct {
	Name     string
	FullName string
	Type     string
	Offset   *int64
	Glob     bool
}

// FindResult is one Find match.
type FindResult struct {
	Index    int
	IsExport bool
}

// Find runs one linear lookup over the export and import tables per query.
func (p *Package) Find(q FindQuery) (FindResult, bool) {
	switch {
	case q.Offset != nil:
		idx, found := p.FindByOffset(*q.Offset)
		return FindResult{Index: idx, IsExport: true}, found

	case q.FullName != "":
		if q.Glob {
			return p.findFullNameGlob(q.FullName, q.Type)
		}

		idx, isExport, found := p.FindByFullName(q.FullName, q.Type)
		return FindResult{Index: idx, IsExport: isExport}, found

	case q.Name != "":
		if q.Glob {
			return p.findNameGlob(q.Name)
		}

		idx, isExport, found := p.FindByName(q.Name)
		return FindResult{Index: idx, IsExport: isExport}, found
	}

	return FindResult{}, false
}

func (p *Package) findFullNameGlob(pattern, wantType string) (FindResult, bool) {
	matcher, err := NewNameMatcher(pattern)
	if err != nil {
		return FindResult{}, false
	}

	for i := 1; i < len(p.tables.Exports); i++ {
		e := &p.tables.Exports[i]
		if (wantType == "" || e.Type == wantType) && matcher.Match(e.FullName) {
			return FindResult{Index: i, IsExport: true}, true
		}
	}

	for i := 1; i < len(p.tables.Imports); i++ {
		imp := &p.tables.Imports[i]
		if (wantType == "" || imp.Type == wantType) && matcher.Match(imp.FullName) {
			return FindResult{Index: i, IsExport: false}, true
		}
	}

	return FindResult{}, false
}

func (p *Package) findNameGlob(pattern string) (FindResult, bool) {
	matcher, err := NewNameMatcher(pattern)
	if err != nil {
		return FindResult{}, false
	}

	for i := 1; i < len(p.tables.Exports); i++ {
		if matcher.Match(p.tables.Exports[i].Name) {
			return FindResult{Index: i, IsExport: true}, true
		}
	}

	for i := 1; i < len(p.tables.Imports); i++ {
		if matcher.Match(p.tables.Imports[i].Name) {
			return FindResult{Index: i, IsExport: false}, true
		}
	}

	return FindResult{}, false
}

// AddName appends a new name table entry and returns its index. Table
// growth slides every offset that follows the insertion point: import,
// export, depends, and serial offsets, plus every export whose own serial
// offset now falls after it.
func (p *Package) AddName(name string, opts EditOptions) (int, error) {
	opts.applyDefaults()

	if name == "" {
		return 0, ErrInvalidEntryName
	}

	entryBytes := NewByteStream(nil)
	if err := appendLengthPrefixedString(entryBytes, name); err != nil {
		return 0, err
	}
	_ = appendU32(entryBytes, 0)
	_ = appendU32(entryBytes, 0)

	growth := int64(len(entryBytes.Bytes()))
	insertAt := int64(p.summary.ImportOffset)
	newIdx := int(p.summary.NameCount)

	if err := p.insertBytesAt(insertAt, entryBytes.Bytes()); err != nil {
		return 0, err
	}

	if err := p.cascadeTableOffsets(insertAt, growth); err != nil {
		return 0, err
	}

	if err := p.writeU32At(p.summary.nameCountOffset, p.summary.NameCount+1); err != nil {
		return 0, err
	}

	if err := p.reparse(); err != nil {
		return 0, err
	}

	opts.Logger.Debugf("editor", "added name %q at index %d", name, newIdx)

	return newIdx, nil
}

// AddImport appends a new import table entry and returns its index.
func (p *Package) AddImport(entry ImportEntry, opts EditOptions) (int, error) {
	opts.applyDefaults()

	entryBytes := NewByteStream(nil)
	_ = appendU32(entryBytes, entry.PackageIdx.Index)
	_ = appendU32(entryBytes, entry.PackageIdx.Suffix)
	_ = appendU32(entryBytes, entry.TypeIdx.Index)
	_ = appendU32(entryBytes, entry.TypeIdx.Suffix)
	_ = appendU32(entryBytes, uint32(entry.OwnerRef))
	_ = appendU32(entryBytes, entry.NameIdx.Index)
	_ = appendU32(entryBytes, entry.NameIdx.Suffix)

	growth := int64(len(entryBytes.Bytes()))
	insertAt := int64(p.summary.ExportOffset)
	newIdx := len(p.tables.Imports)

	if err := p.insertBytesAt(insertAt, entryBytes.Bytes()); err != nil {
		return 0, err
	}

	if err := p.cascadeTableOffsets(insertAt, growth); err != nil {
		return 0, err
	}

	importCountField := p.summary.nameCountOffset + 4 + 4 + 4 + 4
	if err := p.writeU32At(importCountField, p.summary.ImportCount+1); err != nil {
		return 0, err
	}

	if err := p.reparse(); err != nil {
		return 0, err
	}

	opts.Logger.Debugf("editor", "added import at index %d", newIdx)

	return newIdx, nil
}

// AddExport appends a new export table entry, links it into owner's child
// chain, and returns its index. The new export's initial payload is a
// minimal 12-byte stub appended at end-of-file: a zero net index followed
// by the 8-byte "None" name reference (name index plus a zero suffix) that
// ends an empty default-property list.
func (p *Package) AddExport(entry ExportEntry, owner ObjRef, opts EditOptions) (int, error) {
	opts.applyDefaults()

	stub := NewByteStream(nil)
	_ = appendU32(stub, 0)                // NetIndex
	_ = appendU32(stub, p.tables.NoneIdx) // default-property list terminator name idx
	_ = appendU32(stub, 0)                // terminator suffix

	entry.SerialSize = uint32(len(stub.Bytes()))
	entry.OwnerRef = owner

	entryBytes := NewByteStream(nil)
	_ = appendU32(entryBytes, uint32(entry.TypeRef))
	_ = appendU32(entryBytes, uint32(entry.ParentClassRef))
	_ = appendU32(entryBytes, uint32(entry.OwnerRef))
	_ = appendU32(entryBytes, entry.NameIdx.Index)
	_ = appendU32(entryBytes, entry.NameIdx.Suffix)
	_ = appendU32(entryBytes, uint32(entry.ArchetypeRef))
	_ = appendU32(entryBytes, entry.ObjectFlagsH)
	_ = appendU32(entryBytes, entry.ObjectFlagsL)
	_ = appendU32(entryBytes, entry.SerialSize)
	serialOffsetFieldInNewEntry := int64(len(entryBytes.Bytes()))
	_ = appendU32(entryBytes, 0) // SerialOffset, patched in below once known
	_ = appendU32(entryBytes, entry.ExportFlags)
	_ = appendU32(entryBytes, 0) // NetObjectCount
	_ = appendU32(entryBytes, entry.GUID.A)
	_ = appendU32(entryBytes, entry.GUID.B)
	_ = appendU32(entryBytes, entry.GUID.C)
	_ = appendU32(entryBytes, entry.GUID.D)
	_ = appendU32(entryBytes, entry.Unknown1)

	growth := int64(len(entryBytes.Bytes()))
	insertAt := int64(p.summary.DependsOffset)
	newIdx := len(p.tables.Exports)
	entryTableOffset := insertAt

	if err := p.insertBytesAt(insertAt, entryBytes.Bytes()); err != nil {
		return 0, err
	}

	if err := p.cascadeTableOffsets(insertAt, growth); err != nil {
		return 0, err
	}

	entry.SerialOffset = uint32(p.bs.Len())
	p.bs.Append(stub.Bytes())

	if err := p.writeU32At(entryTableOffset+serialOffsetFieldInNewEntry, entry.SerialOffset); err != nil {
		return 0, err
	}

	exportCountField := p.summary.nameCountOffset + 4 + 4
	if err := p.writeU32At(exportCountField, p.summary.ExportCount+1); err != nil {
		return 0, err
	}

	if err := p.reparse(); err != nil {
		return 0, err
	}

	if err := p.linkChildChain(owner, ObjRef(newIdx)); err != nil {
		return 0, err
	}

	if err := p.reparse(); err != nil {
		return 0, err
	}

	opts.Logger.Debugf("editor", "added export %d under owner %s", newIdx, p.tables.ResolveFullName(owner))

	return newIdx, nil
}

// insertBytesAt splices data into the stream at offset, shifting everything
// from offset onward forward by len(data).
func (p *Package) insertBytesAt(offset int64, data []byte) error {
	buf := p.bs.Bytes()
	if offset < 0 || offset > int64(len(buf)) {
		return ErrOutOfRange
	}

	rebuilt := make([]byte, 0, len(buf)+len(data))
	rebuilt = append(rebuilt, buf[:offset]...)
	rebuilt = append(rebuilt, data...)
	rebuilt = append(rebuilt, buf[offset:]...)

	p.bs.Replace(rebuilt)

	return nil
}

// cascadeTableOffsets patches header_size and every table/export offset
// that sits at or after insertAt forward by growth, after a table-growing
// insert. header_size always grows since every table insert point precedes
// the header/table region's own declared end.
func (p *Package) cascadeTableOffsets(insertAt, growth int64) error {
	s := p.summary

	if err := p.writeU32At(s.headerSizeOffset, s.HeaderSize+uint32(growth)); err != nil {
		return err
	}

	patch := func(fieldOffset int64, current uint32) error {
		if int64(current) < insertAt {
			return nil
		}

		return p.writeU32At(fieldOffset, current+uint32(growth))
	}

	// Field byte offsets within the fixed summary layout, derived from
	// ReadSummary's declared order starting at name_count.
	nameCountField := s.nameCountOffset
	nameOffsetField := nameCountField + 4
	exportCountField := nameOffsetField + 4
	exportOffsetField := exportCountField + 4
	importCountField := exportOffsetField + 4
	importOffsetField := importCountField + 4
	dependsOffsetField := importOffsetField + 4
	serialOffsetField := dependsOffsetField + 4

	if err := patch(nameOffsetField, s.NameOffset); err != nil {
		return err
	}
	if err := patch(exportOffsetField, s.ExportOffset); err != nil {
		return err
	}
	if err := patch(importOffsetField, s.ImportOffset); err != nil {
		return err
	}
	if err := patch(dependsOffsetField, s.DependsOffset); err != nil {
		return err
	}
	if err := patch(serialOffsetField, s.SerialOffset); err != nil {
		return err
	}

	for i := 1; i < len(p.tables.Exports); i++ {
		e := &p.tables.Exports[i]
		entryOffset := e.EntryOffset
		if entryOffset >= insertAt {
			entryOffset += growth
		}

		if err := patch(entryOffset+exportSerialOffsetFieldOffset, e.SerialOffset); err != nil {
			return err
		}
	}

	return nil
}

// locateFieldOffsets replays deserializeBase/buildField's read order over
// export idx's own payload to find the byte offset of its NextRef field,
// and, for Struct-derived kinds, its FirstChildRef field. It never
// allocates a typed Object; it only needs stream positions.
func (p *Package) locateFieldOffsets(idx int) (nextRefOff int64, firstChildOff int64, hasFirstChild bool, err error) {
	entry := p.tables.Exports[idx]

	data, err := p.GetExportData(idx)
	if err != nil {
		return 0, 0, false, err
	}

	bs := NewByteStream(append([]byte(nil), data...))
	c := &deserCtx{pkg: p, idx: idx, bs: bs, opts: DeserializeOptions{Mode: ParseStrict}, entry: entry}

	if _, err := deserializeBase(c, entry.Type == "Class"); err != nil {
		return 0, 0, false, err
	}

	nextRefOff = bs.Tell()
	if _, err := bs.ReadObjRef(); err != nil {
		return 0, 0, false, err
	}

	if !isStructureType(entry.Type) {
		return nextRefOff, 0, false, nil
	}

	if _, err := bs.ReadObjRef(); err != nil { // ParentRef
		return nextRefOff, 0, false, err
	}
	if _, err := bs.ReadObjRef(); err != nil { // ScriptTextRef
		return nextRefOff, 0, false, err
	}

	firstChildOff = bs.Tell()

	return nextRefOff, firstChildOff, true, nil
}

// isStructureType reports whether typeName is one of the Struct-derived
// export kinds that carries a ParentRef and FirstChildRef.
func isStructureType(typeName string) bool {
	switch typeName {
	case "Struct", "Function", "ScriptStruct", "State", "Class":
		return true
	}

	return false
}

// readObjRefAt reads the 4-byte object reference at an absolute stream
// offset without disturbing the cursor convention of the caller's next use.
func (p *Package) readObjRefAt(offset int64) (ObjRef, error) {
	if _, err := p.bs.Seek(offset, SeekStart); err != nil {
		return 0, err
	}

	b, err := p.bs.PeekBytes(4)
	if err != nil {
		return 0, err
	}

	v := int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)

	return ObjRef(v), nil
}

// linkChildChain appends ref to owner's child list: either directly into
// owner's FirstChildRef if it has no children yet, or onto the NextRef of
// the last Field currently in that chain. A null or non-export owner (the
// package root) is left unlinked.
func (p *Package) linkChildChain(owner, ref ObjRef) error {
	if owner.IsNull() || !owner.IsExport() {
		return nil
	}

	ownerIdx := int(owner)
	if ownerIdx <= 0 || ownerIdx >= len(p.tables.Exports) {
		return ErrExportNotFound
	}

	_, firstChildOff, hasFirstChild, err := p.locateFieldOffsets(ownerIdx)
	if err != nil || !hasFirstChild {
		return nil //nolint:nilerr // best-effort linking; a non-Struct owner simply has no chain.
	}

	ownerEntry := p.tables.Exports[ownerIdx]
	firstChildAbs := int64(ownerEntry.SerialOffset) + firstChildOff

	cur, err := p.readObjRefAt(firstChildAbs)
	if err != nil {
		return err
	}

	if cur.IsNull() {
		return p.writeU32At(firstChildAbs, uint32(ref))
	}

	for {
		if !cur.IsExport() {
			return nil
		}

		curIdx := int(cur)
		if curIdx <= 0 || curIdx >= len(p.tables.Exports) {
			return nil
		}

		nextRefOff, _, _, err := p.locateFieldOffsets(curIdx)
		if err != nil {
			return err
		}

		curEntry := p.tables.Exports[curIdx]
		nextAbs := int64(curEntry.SerialOffset) + nextRefOff

		next, err := p.readObjRefAt(nextAbs)
		if err != nil {
			return err
		}

		if next.IsNull() {
			return p.writeU32At(nextAbs, uint32(ref))
		}

		cur = next
	}
}
