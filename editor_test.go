// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import (
	"bytes"
	"testing"
)

func TestWriteInPlace(t *testing.T) {
	p := mustLoadTestPackage(t)

	entry := p.GetExportEntry(1)
	newPayload := make([]byte, entry.SerialSize)
	copy(newPayload, []byte{1, 2, 3})

	backup, err := p.WriteInPlace(1, newPayload, EditOptions{})
	if err != nil {
		t.Fatalf("WriteInPlace: %v", err)
	}
	if len(backup) != len(newPayload) {
		t.Fatalf("backup length = %d, want %d", len(backup), len(newPayload))
	}

	got, err := p.GetExportData(1)
	if err != nil {
		t.Fatalf("GetExportData: %v", err)
	}
	if !bytes.Equal(got, newPayload) {
		t.Fatalf("GetExportData = %v, want %v", got, newPayload)
	}
}

func TestWriteInPlaceSizeMismatch(t *testing.T) {
	p := mustLoadTestPackage(t)

	_, err := p.WriteInPlace(1, []byte{1}, EditOptions{})
	if err != ErrSizeMismatch {
		t.Fatalf("err = %v, want ErrSizeMismatch", err)
	}
}

func TestWriteArbitraryProtectedRegion(t *testing.T) {
	p := mustLoadTestPackage(t)

	_, err := p.WriteArbitrary(4, []byte{0, 0}, EditOptions{})
	if err != ErrProtectedRegion {
		t.Fatalf("err = %v, want ErrProtectedRegion", err)
	}
}

func TestWriteArbitrary(t *testing.T) {
	p := mustLoadTestPackage(t)

	entry := p.GetExportEntry(1)

	prev, err := p.WriteArbitrary(int64(entry.SerialOffset), []byte{9, 9, 9}, EditOptions{})
	if err != nil {
		t.Fatalf("WriteArbitrary: %v", err)
	}
	if len(prev) != 3 {
		t.Fatalf("prev length = %d, want 3", len(prev))
	}

	got, err := p.GetExportData(1)
	if err != nil {
		t.Fatalf("GetExportData: %v", err)
	}
	if got[0] != 9 || got[1] != 9 || got[2] != 9 {
		t.Fatalf("GetExportData = %v, want leading 9,9,9", got)
	}
}

func TestResizeInPlaceGrow(t *testing.T) {
	p := mustLoadTestPackage(t)

	before := p.GetExportEntry(1)
	grown := make([]byte, int(before.SerialSize)+4)
	copy(grown, []byte{1, 2, 3, 4})

	if err := p.ResizeInPlace(1, grown, EditOptions{}); err != nil {
		t.Fatalf("ResizeInPlace: %v", err)
	}

	after := p.GetExportEntry(1)
	if after.SerialSize != uint32(len(grown)) {
		t.Fatalf("SerialSize = %d, want %d", after.SerialSize, len(grown))
	}

	got, err := p.GetExportData(1)
	if err != nil {
		t.Fatalf("GetExportData: %v", err)
	}
	if !bytes.Equal(got, grown) {
		t.Fatalf("GetExportData = %v, want %v", got, grown)
	}
}

func TestResizeInPlaceShrink(t *testing.T) {
	p := mustLoadTestPackage(t)

	shrunk := []byte{1, 2}

	if err := p.ResizeInPlace(1, shrunk, EditOptions{}); err != nil {
		t.Fatalf("ResizeInPlace: %v", err)
	}

	after := p.GetExportEntry(1)
	if after.SerialSize != uint32(len(shrunk)) {
		t.Fatalf("SerialSize = %d, want %d", after.SerialSize, len(shrunk))
	}
}

func TestMoveResizeToEndAndUndo(t *testing.T) {
	p := mustLoadTestPackage(t)

	before := p.GetExportEntry(1)
	prevSize, prevOffset := before.SerialSize, before.SerialOffset

	if err := p.MoveResizeToEnd(1, prevSize+8, EditOptions{}); err != nil {
		t.Fatalf("MoveResizeToEnd: %v", err)
	}

	moved := p.GetExportEntry(1)
	if moved.SerialSize != prevSize+8 {
		t.Fatalf("SerialSize = %d, want %d", moved.SerialSize, prevSize+8)
	}
	if moved.SerialOffset == prevOffset {
		t.Fatalf("SerialOffset unchanged after move")
	}

	if err := p.UndoMoveResize(1, EditOptions{}); err != nil {
		t.Fatalf("UndoMoveResize: %v", err)
	}

	restored := p.GetExportEntry(1)
	if restored.SerialSize != prevSize || restored.SerialOffset != prevOffset {
		t.Fatalf("restored entry = %+v, want size=%d offset=%d", restored, prevSize, prevOffset)
	}
}

func TestUndoMoveResizeNoTrailer(t *testing.T) {
	p := mustLoadTestPackage(t)

	if err := p.UndoMoveResize(1, EditOptions{}); err != ErrNoTrailer {
		t.Fatalf("err = %v, want ErrNoTrailer", err)
	}
}

func TestFindByFullNameAndOffset(t *testing.T) {
	p := mustLoadTestPackage(t)

	res, found := p.Find(FindQuery{FullName: "TestExport"})
	if !found || !res.IsExport || res.Index != 1 {
		t.Fatalf("Find FullName = %+v, found=%v", res, found)
	}

	entry := p.GetExportEntry(1)
	off := int64(entry.SerialOffset)
	res, found = p.Find(FindQuery{Offset: &off})
	if !found || res.Index != 1 {
		t.Fatalf("Find Offset = %+v, found=%v", res, found)
	}
}

func TestFindGlob(t *testing.T) {
	p := mustLoadTestPackage(t)

	res, found := p.Find(FindQuery{FullName: "Test*", Glob: true})
	if !found || !res.IsExport || res.Index != 1 {
		t.Fatalf("Find glob = %+v, found=%v", res, found)
	}

	_, found = p.Find(FindQuery{FullName: "NoSuchThing*", Glob: true})
	if found {
		t.Fatalf("expected no match for NoSuchThing*")
	}
}

func TestAddName(t *testing.T) {
	p := mustLoadTestPackage(t)

	before := len(p.Tables().Names)

	idx, err := p.AddName("NewName", EditOptions{})
	if err != nil {
		t.Fatalf("AddName: %v", err)
	}
	if idx != before {
		t.Fatalf("idx = %d, want %d", idx, before)
	}
	if len(p.Tables().Names) != before+1 {
		t.Fatalf("names len = %d, want %d", len(p.Tables().Names), before+1)
	}
	if p.Tables().Names[idx].Name != "NewName" {
		t.Fatalf("Names[%d].Name = %q, want NewName", idx, p.Tables().Names[idx].Name)
	}

	// The export table and its payload must survive the earlier table
	// growth untouched.
	entry := p.GetExportEntry(1)
	if entry.Name != "TestExport" {
		t.Fatalf("export 1 name = %q after AddName, want TestExport", entry.Name)
	}
	data, err := p.GetExportData(1)
	if err != nil {
		t.Fatalf("GetExportData after AddName: %v", err)
	}
	if len(data) != int(entry.SerialSize) {
		t.Fatalf("export payload length = %d, want %d", len(data), entry.SerialSize)
	}
}

func TestWriteName(t *testing.T) {
	p := mustLoadTestPackage(t)

	nameIdx := int(p.GetExportEntry(1).NameIdx.Index)

	old, err := p.WriteName(nameIdx, "Replaced!!", EditOptions{})
	if err != nil {
		t.Fatalf("WriteName: %v", err)
	}
	if old != "TestExport" {
		t.Fatalf("old = %q, want TestExport", old)
	}

	if p.Tables().Names[nameIdx].Name != "Replaced!!" {
		t.Fatalf("Names[%d].Name = %q, want Replaced!!", nameIdx, p.Tables().Names[nameIdx].Name)
	}
}

func TestWriteNameSizeMismatch(t *testing.T) {
	p := mustLoadTestPackage(t)

	nameIdx := int(p.GetExportEntry(1).NameIdx.Index)

	if _, err := p.WriteName(nameIdx, "ShortOrLong", EditOptions{}); err != ErrSizeMismatch {
		t.Fatalf("err = %v, want ErrSizeMismatch", err)
	}
}

func TestAddImport(t *testing.T) {
	p := mustLoadTestPackage(t)

	before := len(p.Tables().Imports)

	idx, err := p.AddImport(ImportEntry{NameIdx: NameRef{Index: 2}}, EditOptions{})
	if err != nil {
		t.Fatalf("AddImport: %v", err)
	}
	if idx != before {
		t.Fatalf("idx = %d, want %d", idx, before)
	}
	if len(p.Tables().Imports) != before+1 {
		t.Fatalf("imports len = %d, want %d", len(p.Tables().Imports), before+1)
	}

	// The export table that follows the import table must have shifted
	// forward and still parse correctly.
	entry := p.GetExportEntry(1)
	if entry.Name != "TestExport" {
		t.Fatalf("export 1 name = %q after AddImport, want TestExport", entry.Name)
	}
	data, err := p.GetExportData(1)
	if err != nil {
		t.Fatalf("GetExportData after AddImport: %v", err)
	}
	if len(data) != int(entry.SerialSize) {
		t.Fatalf("export payload length = %d, want %d", len(data), entry.SerialSize)
	}
}

func TestAddExportNullOwner(t *testing.T) {
	p := mustLoadTestPackage(t)

	before := len(p.Tables().Exports)

	nameIdx, err := p.AddName("SecondExport", EditOptions{})
	if err != nil {
		t.Fatalf("AddName: %v", err)
	}

	idx, err := p.AddExport(ExportEntry{NameIdx: NameRef{Index: uint32(nameIdx)}}, ObjRef(0), EditOptions{})
	if err != nil {
		t.Fatalf("AddExport: %v", err)
	}
	if idx != before {
		t.Fatalf("idx = %d, want %d", idx, before)
	}
	if len(p.Tables().Exports) != before+1 {
		t.Fatalf("exports len = %d, want %d", len(p.Tables().Exports), before+1)
	}

	added := p.GetExportEntry(idx)
	if added.Name != "SecondExport" {
		t.Fatalf("added export name = %q, want SecondExport", added.Name)
	}
	if added.SerialSize != 12 {
		t.Fatalf("added export SerialSize = %d, want 12 (stub payload)", added.SerialSize)
	}

	data, err := p.GetExportData(idx)
	if err != nil {
		t.Fatalf("GetExportData(new export): %v", err)
	}
	if len(data) != int(added.SerialSize) {
		t.Fatalf("new export payload length = %d, want %d", len(data), added.SerialSize)
	}

	// The original export must still be intact after the table growth and
	// the trailing stub append.
	orig := p.GetExportEntry(1)
	if orig.Name != "TestExport" {
		t.Fatalf("export 1 name = %q after AddExport, want TestExport", orig.Name)
	}
	origData, err := p.GetExportData(1)
	if err != nil {
		t.Fatalf("GetExportData(1) after AddExport: %v", err)
	}
	if len(origData) != int(orig.SerialSize) {
		t.Fatalf("export 1 payload length = %d, want %d", len(origData), orig.SerialSize)
	}
}
