// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import "testing"

func TestLoadBytesParsesTables(t *testing.T) {
	p := mustLoadTestPackage(t)

	if got := p.Summary().NameCount; got != uint32(len(testPackageNames)) {
		t.Fatalf("NameCount = %d, want %d", got, len(testPackageNames))
	}

	if len(p.Tables().Exports) != 2 {
		t.Fatalf("len(Exports) = %d, want 2 (sentinel + 1)", len(p.Tables().Exports))
	}

	exp := p.Tables().Exports[1]
	if exp.Name != "TestExport" {
		t.Fatalf("Exports[1].Name = %q, want TestExport", exp.Name)
	}
	if exp.FullName != "TestExport" {
		t.Fatalf("Exports[1].FullName = %q, want TestExport", exp.FullName)
	}
}

func TestFindByName(t *testing.T) {
	p := mustLoadTestPackage(t)

	idx, isExport, found := p.FindByName("TestExport")
	if !found || !isExport || idx != 1 {
		t.Fatalf("FindByName = (%d, %v, %v), want (1, true, true)", idx, isExport, found)
	}

	_, _, found = p.FindByName("DoesNotExist")
	if found {
		t.Fatal("expected DoesNotExist to not be found")
	}
}

func TestFindByOffset(t *testing.T) {
	p := mustLoadTestPackage(t)

	entry := p.GetExportEntry(1)

	idx, found := p.FindByOffset(int64(entry.SerialOffset))
	if !found || idx != 1 {
		t.Fatalf("FindByOffset = (%d, %v), want (1, true)", idx, found)
	}

	_, found = p.FindByOffset(int64(entry.SerialOffset) + int64(entry.SerialSize) + 1000)
	if found {
		t.Fatal("expected out-of-range offset to not be found")
	}
}

func TestGetExportData(t *testing.T) {
	p := mustLoadTestPackage(t)

	data, err := p.GetExportData(1)
	if err != nil {
		t.Fatalf("GetExportData: %v", err)
	}

	entry := p.GetExportEntry(1)
	if uint32(len(data)) != entry.SerialSize {
		t.Fatalf("len(data) = %d, want %d", len(data), entry.SerialSize)
	}
}

func TestGetExportDataOutOfRange(t *testing.T) {
	p := mustLoadTestPackage(t)

	if _, err := p.GetExportData(99); err != ErrExportNotFound {
		t.Fatalf("err = %v, want ErrExportNotFound", err)
	}
}
