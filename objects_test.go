// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import "testing"

func TestImportTypedExportResolvesSimpleTypeName(t *testing.T) {
	p := mustLoadTypedExportPackage(t)

	exp := p.GetExportEntry(1)
	if exp.Type != "IntProperty" {
		t.Fatalf("Exports[1].Type = %q, want IntProperty", exp.Type)
	}
}

func TestDeserializeObjectDispatchesImportTypedExport(t *testing.T) {
	p := mustLoadTypedExportPackage(t)

	obj, err := p.Object(1)
	if err != nil {
		t.Fatalf("Object: %v", err)
	}

	prop, ok := obj.(*IntProperty)
	if !ok {
		t.Fatalf("Object(1) = %T, want *IntProperty", obj)
	}

	if prop.Kind() != "IntProperty" {
		t.Fatalf("Kind() = %q, want IntProperty", prop.Kind())
	}
}
