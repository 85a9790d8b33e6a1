// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import (
	"encoding/binary"
	"testing"
)

// testPackageNames is the name table every fixture built by
// buildTestPackageBytes shares: "None" at index 0 so deserializeBase's
// property-list terminator and AddExport's stub both resolve correctly,
// "Class" at index 1, "TestExport" at index 2.
var testPackageNames = []string{"None", "Class", "TestExport"}

// buildTestPackageBytes hand-assembles a minimal but fully valid
// uncompressed package: a summary, a three-entry name table, no imports,
// one export ("TestExport", whose null TypeRef resolves its type to
// "Class"), and that export's minimal payload (a zero net index followed
// by a "None"-terminated empty property list). Every offset is
// computed from the actual encoded byte lengths rather than hand-counted,
// the same way the teacher's own fixture-building tests assemble archives
// field by field.
func buildTestPackageBytes(t *testing.T) []byte {
	t.Helper()

	nameBytes := NewByteStream(nil)
	for _, n := range testPackageNames {
		if err := appendLengthPrefixedString(nameBytes, n); err != nil {
			t.Fatalf("name %q: %v", n, err)
		}
		_ = appendU32(nameBytes, 0)
		_ = appendU32(nameBytes, 0)
	}

	payload := NewByteStream(nil)
	_ = appendU32(payload, 0) // NetIndex
	_ = appendU32(payload, 0) // NoneIdx (name index of "None")
	_ = appendU32(payload, 0) // terminator suffix

	exportEntry := NewByteStream(nil)
	_ = appendU32(exportEntry, 0) // TypeRef
	_ = appendU32(exportEntry, 0) // ParentClassRef
	_ = appendU32(exportEntry, 0) // OwnerRef
	_ = appendU32(exportEntry, 2) // NameIdx.Index -> "TestExport"
	_ = appendU32(exportEntry, 0) // NameIdx.Suffix
	_ = appendU32(exportEntry, 0) // ArchetypeRef
	_ = appendU32(exportEntry, 0) // ObjectFlagsH
	_ = appendU32(exportEntry, 0) // ObjectFlagsL
	_ = appendU32(exportEntry, uint32(len(payload.Bytes())))
	serialOffsetPos := len(exportEntry.Bytes())
	_ = appendU32(exportEntry, 0) // SerialOffset placeholder, patched below
	_ = appendU32(exportEntry, 0) // ExportFlags
	_ = appendU32(exportEntry, 0) // NetObjectCount
	_ = appendU32(exportEntry, 0) // GUID.A
	_ = appendU32(exportEntry, 0) // GUID.B
	_ = appendU32(exportEntry, 0) // GUID.C
	_ = appendU32(exportEntry, 0) // GUID.D
	_ = appendU32(exportEntry, 0) // Unknown1

	s := &Summary{Signature: PackageSignature, Version: ExpectedVersion}

	measure := NewByteStream(nil)
	if err := s.Serialize(measure); err != nil {
		t.Fatalf("measure summary: %v", err)
	}
	headerLen := int64(len(measure.Bytes()))

	nameOffset := headerLen
	importOffset := nameOffset + int64(len(nameBytes.Bytes()))
	exportOffset := importOffset
	dependsOffset := exportOffset + int64(len(exportEntry.Bytes()))
	serialOffset := dependsOffset

	entryBytes := exportEntry.Bytes()
	binary.LittleEndian.PutUint32(entryBytes[serialOffsetPos:], uint32(serialOffset))

	s.NameCount = uint32(len(testPackageNames))
	s.NameOffset = uint32(nameOffset)
	s.ExportCount = 1
	s.ExportOffset = uint32(exportOffset)
	s.ImportCount = 0
	s.ImportOffset = uint32(importOffset)
	s.DependsOffset = uint32(dependsOffset)
	s.SerialOffset = uint32(serialOffset)
	s.HeaderSize = uint32(headerLen)

	header := NewByteStream(nil)
	if err := s.Serialize(header); err != nil {
		t.Fatalf("serialize summary: %v", err)
	}
	if int64(len(header.Bytes())) != headerLen {
		t.Fatalf("header length changed after patching offsets: %d != %d", len(header.Bytes()), headerLen)
	}

	buf := NewByteStream(nil)
	buf.Append(header.Bytes())
	buf.Append(nameBytes.Bytes())
	buf.Append(entryBytes)
	buf.Append(payload.Bytes())

	return buf.Bytes()
}

func mustLoadTestPackage(t *testing.T) *Package {
	t.Helper()

	p, err := LoadBytes("test", buildTestPackageBytes(t), ReaderOptions{})
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	return p
}

// typedExportPackageNames is the name table buildTypedExportPackageBytes'
// fixture shares: "None" at index 0, "IntProperty" at index 1 (doubling as
// both the import's own name and, once resolved by resolveTypeName, the
// export's Type), "IntProp" at index 2 (the export's own name).
var typedExportPackageNames = []string{"None", "IntProperty", "IntProp"}

// buildTypedExportPackageBytes hand-assembles a minimal valid uncompressed
// package with one import ("IntProperty", an otherwise empty Core-style
// class import) and one export whose TypeRef points at that import, so the
// export's resolved Type is the import's own simple name rather than any
// owner-qualified path. The export's payload is the minimal byte sequence
// buildProperty/buildField/deserializeBase read for a property with no
// default properties of its own: a net index, an empty (None-terminated)
// property list, a null NextRef, and a zeroed PropertyObject preamble.
func buildTypedExportPackageBytes(t *testing.T) []byte {
	t.Helper()

	nameBytes := NewByteStream(nil)
	for _, n := range typedExportPackageNames {
		if err := appendLengthPrefixedString(nameBytes, n); err != nil {
			t.Fatalf("name %q: %v", n, err)
		}
		_ = appendU32(nameBytes, 0)
		_ = appendU32(nameBytes, 0)
	}

	importEntry := NewByteStream(nil)
	_ = appendU32(importEntry, 0) // PackageIdx.Index -> "None"
	_ = appendU32(importEntry, 0) // PackageIdx.Suffix
	_ = appendU32(importEntry, 0) // TypeIdx.Index -> "None"
	_ = appendU32(importEntry, 0) // TypeIdx.Suffix
	_ = appendU32(importEntry, 0) // OwnerRef (null)
	_ = appendU32(importEntry, 1) // NameIdx.Index -> "IntProperty"
	_ = appendU32(importEntry, 0) // NameIdx.Suffix

	payload := NewByteStream(nil)
	_ = appendU32(payload, 0) // BaseObject.NetIndex
	_ = appendU32(payload, 0) // property list terminator NameIdx.Index -> "None"
	_ = appendU32(payload, 0) // property list terminator NameIdx.Suffix
	_ = appendU32(payload, 0) // FieldObject.NextRef
	_ = appendU32(payload, 0) // PropertyObject packed ArrayDim/ElementSize
	_ = appendU32(payload, 0) // PropertyObject.PropertyFlagsL
	_ = appendU32(payload, 0) // PropertyObject.PropertyFlagsH
	_ = appendU32(payload, 0) // PropertyObject.CategoryIndex.Index -> "None"
	_ = appendU32(payload, 0) // PropertyObject.CategoryIndex.Suffix
	_ = appendU32(payload, 0) // PropertyObject.ArrayEnumRef (null)

	exportEntry := NewByteStream(nil)
	_ = appendU32(exportEntry, uint32(ObjRef(-1))) // TypeRef -> import 1 ("IntProperty")
	_ = appendU32(exportEntry, 0)                  // ParentClassRef
	_ = appendU32(exportEntry, 0)                  // OwnerRef
	_ = appendU32(exportEntry, 2)                  // NameIdx.Index -> "IntProp"
	_ = appendU32(exportEntry, 0)                  // NameIdx.Suffix
	_ = appendU32(exportEntry, 0)                  // ArchetypeRef
	_ = appendU32(exportEntry, 0)                  // ObjectFlagsH
	_ = appendU32(exportEntry, 0)                  // ObjectFlagsL
	_ = appendU32(exportEntry, uint32(len(payload.Bytes())))
	serialOffsetPos := len(exportEntry.Bytes())
	_ = appendU32(exportEntry, 0) // SerialOffset placeholder, patched below
	_ = appendU32(exportEntry, 0) // ExportFlags
	_ = appendU32(exportEntry, 0) // NetObjectCount
	_ = appendU32(exportEntry, 0) // GUID.A
	_ = appendU32(exportEntry, 0) // GUID.B
	_ = appendU32(exportEntry, 0) // GUID.C
	_ = appendU32(exportEntry, 0) // GUID.D
	_ = appendU32(exportEntry, 0) // Unknown1

	s := &Summary{Signature: PackageSignature, Version: ExpectedVersion}

	measure := NewByteStream(nil)
	if err := s.Serialize(measure); err != nil {
		t.Fatalf("measure summary: %v", err)
	}
	headerLen := int64(len(measure.Bytes()))

	nameOffset := headerLen
	importOffset := nameOffset + int64(len(nameBytes.Bytes()))
	exportOffset := importOffset + int64(len(importEntry.Bytes()))
	dependsOffset := exportOffset + int64(len(exportEntry.Bytes()))
	serialOffset := dependsOffset

	entryBytes := exportEntry.Bytes()
	binary.LittleEndian.PutUint32(entryBytes[serialOffsetPos:], uint32(serialOffset))

	s.NameCount = uint32(len(typedExportPackageNames))
	s.NameOffset = uint32(nameOffset)
	s.ImportCount = 1
	s.ImportOffset = uint32(importOffset)
	s.ExportCount = 1
	s.ExportOffset = uint32(exportOffset)
	s.DependsOffset = uint32(dependsOffset)
	s.SerialOffset = uint32(serialOffset)
	s.HeaderSize = uint32(headerLen)

	header := NewByteStream(nil)
	if err := s.Serialize(header); err != nil {
		t.Fatalf("serialize summary: %v", err)
	}
	if int64(len(header.Bytes())) != headerLen {
		t.Fatalf("header length changed after patching offsets: %d != %d", len(header.Bytes()), headerLen)
	}

	buf := NewByteStream(nil)
	buf.Append(header.Bytes())
	buf.Append(nameBytes.Bytes())
	buf.Append(importEntry.Bytes())
	buf.Append(entryBytes)
	buf.Append(payload.Bytes())

	return buf.Bytes()
}

func mustLoadTypedExportPackage(t *testing.T) *Package {
	t.Helper()

	p, err := LoadBytes("typed", buildTypedExportPackageBytes(t), ReaderOptions{})
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	return p
}
