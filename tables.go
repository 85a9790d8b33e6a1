// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import "fmt"

// Tables holds the three sibling tables and the depends buffer, plus the
// resolved index of the sentinel "None" name used to terminate
// default-property lists and array-type guesses.
type Tables struct {
	Names   []NameEntry
	Imports []ImportEntry
	Exports []ExportEntry

	DependsBuf []byte

	// NoneIdx is the name-table index of the first entry equal to "None".
	NoneIdx uint32
}

// ReadTables parses the name, import, and export tables plus the depends
// buffer, using the offsets and counts declared in s. Import and export
// tables are built with a synthetic zero-th null entry so object
// references can use signed 1-based indexing directly.
func ReadTables(bs *ByteStream, s *Summary) (*Tables, error) {
	t := &Tables{}

	if _, err := bs.Seek(int64(s.NameOffset), SeekStart); err != nil {
		return nil, fmt.Errorf("seek name table: %w", err)
	}

	t.Names = make([]NameEntry, s.NameCount)
	foundNone := false

	for i := range t.Names {
		entryOffset := bs.Tell()

		name, err := bs.ReadLengthPrefixedString()
		if err != nil {
			return nil, fmt.Errorf("name %d: %w", i, err)
		}

		flagsLow, err := bs.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("name %d flags low: %w", i, err)
		}

		flagsHigh, err := bs.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("name %d flags high: %w", i, err)
		}

		t.Names[i] = NameEntry{
			Name:        name,
			FlagsLow:    flagsLow,
			FlagsHigh:   flagsHigh,
			EntryOffset: entryOffset,
			EntrySize:   bs.Tell() - entryOffset,
		}

		if !foundNone && name == "None" {
			t.NoneIdx = uint32(i)
			foundNone = true
		}
	}

	if _, err := bs.Seek(int64(s.ImportOffset), SeekStart); err != nil {
		return nil, fmt.Errorf("seek import table: %w", err)
	}

	t.Imports = make([]ImportEntry, s.ImportCount+1)
	for i := 1; i < len(t.Imports); i++ {
		entryOffset := bs.Tell()

		pkgIdx, err := bs.ReadNameRef()
		if err != nil {
			return nil, fmt.Errorf("import %d package idx: %w", i, err)
		}

		typeIdx, err := bs.ReadNameRef()
		if err != nil {
			return nil, fmt.Errorf("import %d type idx: %w", i, err)
		}

		ownerRef, err := bs.ReadObjRef()
		if err != nil {
			return nil, fmt.Errorf("import %d owner ref: %w", i, err)
		}

		nameIdx, err := bs.ReadNameRef()
		if err != nil {
			return nil, fmt.Errorf("import %d name idx: %w", i, err)
		}

		t.Imports[i] = ImportEntry{
			PackageIdx:  pkgIdx,
			TypeIdx:     typeIdx,
			OwnerRef:    ownerRef,
			NameIdx:     nameIdx,
			EntryOffset: entryOffset,
			EntrySize:   bs.Tell() - entryOffset,
		}
	}

	if _, err := bs.Seek(int64(s.ExportOffset), SeekStart); err != nil {
		return nil, fmt.Errorf("seek export table: %w", err)
	}

	t.Exports = make([]ExportEntry, s.ExportCount+1)
	for i := 1; i < len(t.Exports); i++ {
		entryOffset := bs.Tell()

		e, err := readExportEntry(bs)
		if err != nil {
			return nil, fmt.Errorf("export %d: %w", i, err)
		}

		e.EntryOffset = entryOffset
		e.EntrySize = bs.Tell() - entryOffset
		t.Exports[i] = e
	}

	dependsLen := int64(s.SerialOffset) - int64(s.DependsOffset)
	if dependsLen < 0 {
		dependsLen = 0
	}

	if _, err := bs.Seek(int64(s.DependsOffset), SeekStart); err != nil {
		return nil, fmt.Errorf("seek depends buffer: %w", err)
	}

	dependsBuf, err := bs.ReadBytes(int(dependsLen))
	if err != nil {
		return nil, fmt.Errorf("%w: depends buffer", ErrOutOfRange)
	}

	t.DependsBuf = dependsBuf

	resolveFullNames(t)

	return t, nil
}

func readExportEntry(bs *ByteStream) (ExportEntry, error) {
	var e ExportEntry
	var err error

	if e.TypeRef, err = bs.ReadObjRef(); err != nil {
		return e, fmt.Errorf("type ref: %w", err)
	}
	if e.ParentClassRef, err = bs.ReadObjRef(); err != nil {
		return e, fmt.Errorf("parent class ref: %w", err)
	}
	if e.OwnerRef, err = bs.ReadObjRef(); err != nil {
		return e, fmt.Errorf("owner ref: %w", err)
	}
	if e.NameIdx, err = bs.ReadNameRef(); err != nil {
		return e, fmt.Errorf("name idx: %w", err)
	}
	if e.ArchetypeRef, err = bs.ReadObjRef(); err != nil {
		return e, fmt.Errorf("archetype ref: %w", err)
	}
	if e.ObjectFlagsH, err = bs.ReadU32(); err != nil {
		return e, fmt.Errorf("object flags high: %w", err)
	}
	if e.ObjectFlagsL, err = bs.ReadU32(); err != nil {
		return e, fmt.Errorf("object flags low: %w", err)
	}
	if e.SerialSize, err = bs.ReadU32(); err != nil {
		return e, fmt.Errorf("serial size: %w", err)
	}
	if e.SerialOffset, err = bs.ReadU32(); err != nil {
		return e, fmt.Errorf("serial offset: %w", err)
	}
	if e.ExportFlags, err = bs.ReadU32(); err != nil {
		return e, fmt.Errorf("export flags: %w", err)
	}
	if e.NetObjectCount, err = bs.ReadU32(); err != nil {
		return e, fmt.Errorf("net object count: %w", err)
	}
	if e.GUID, err = bs.ReadGUID(); err != nil {
		return e, fmt.Errorf("guid: %w", err)
	}
	if e.Unknown1, err = bs.ReadU32(); err != nil {
		return e, fmt.Errorf("unknown1: %w", err)
	}

	e.NetObjects = make([]uint32, e.NetObjectCount)
	for i := range e.NetObjects {
		if e.NetObjects[i], err = bs.ReadU32(); err != nil {
			return e, fmt.Errorf("net object %d: %w", i, err)
		}
	}

	return e, nil
}

// resolveName renders a name reference as "Name" or "Name_{suffix-1}".
func (t *Tables) resolveName(ref NameRef) string {
	if int(ref.Index) >= len(t.Names) {
		return "Error"
	}

	name := t.Names[ref.Index].Name
	if ref.Suffix > 0 && name != "None" {
		return fmt.Sprintf("%s_%d", name, ref.Suffix-1)
	}

	return name
}

// ResolveFullName follows ref's owner chain to the root, joining names
// with ".". The null reference resolves to the empty string.
func (t *Tables) ResolveFullName(ref ObjRef) string {
	if ref.IsNull() {
		return ""
	}

	if ref.IsExport() {
		idx := int(ref)
		if idx >= len(t.Exports) {
			return "Error"
		}

		exp := &t.Exports[idx]
		if exp.OwnerRef.IsNull() {
			return exp.Name
		}

		return t.ResolveFullName(exp.OwnerRef) + "." + exp.Name
	}

	idx := -int(ref)
	if idx >= len(t.Imports) {
		return "Error"
	}

	imp := &t.Imports[idx]
	if imp.OwnerRef.IsNull() {
		return imp.Name
	}

	return t.ResolveFullName(imp.OwnerRef) + "." + imp.Name
}

// resolveTypeName returns the simple, unqualified name of the object ref
// points to: the referenced export or import's own NameIdx, never its
// owner-qualified full path. This is the source's ObjRefToName — a typed
// export's class name ("Function", "IntProperty") must stay a bare name for
// the exact-match variant dispatch to recognize it.
func (t *Tables) resolveTypeName(ref ObjRef) string {
	if ref.IsNull() {
		return ""
	}

	if ref.IsExport() {
		idx := int(ref)
		if idx >= len(t.Exports) {
			return "Error"
		}

		return t.resolveName(t.Exports[idx].NameIdx)
	}

	idx := -int(ref)
	if idx >= len(t.Imports) {
		return "Error"
	}

	return t.resolveName(t.Imports[idx].NameIdx)
}

// resolveFullNames walks every import and export, computing Name, Type,
// and FullName by following OwnerRef to the root and joining with ".".
// Type is resolved to the referenced object's simple name, not its full
// path; a blank type string normalizes to "Class".
func resolveFullNames(t *Tables) {
	for i := 1; i < len(t.Imports); i++ {
		imp := &t.Imports[i]
		imp.Name = t.resolveName(imp.NameIdx)
		imp.Type = t.resolveName(imp.TypeIdx)

		if imp.Type == "" {
			imp.Type = "Class"
		}
	}

	for i := 1; i < len(t.Exports); i++ {
		exp := &t.Exports[i]
		exp.Name = t.resolveName(exp.NameIdx)

		if exp.TypeRef.IsNull() {
			exp.Type = "Class"
		} else {
			exp.Type = t.resolveTypeName(exp.TypeRef)
		}
	}

	for i := 1; i < len(t.Imports); i++ {
		imp := &t.Imports[i]
		imp.FullName = t.ResolveFullName(ObjRef(-i))
	}

	for i := 1; i < len(t.Exports); i++ {
		exp := &t.Exports[i]
		exp.FullName = t.ResolveFullName(ObjRef(i))
	}
}
