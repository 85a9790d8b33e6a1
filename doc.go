// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

/*
Package upk provides read, query, and in-place edit operations for
Unreal-engine-family package container files (the "UPK" format): binary
parsing of the compressed envelope and summary header, the name/import/
export tables, and typed deserialization of each export's object payload
into the closed set of object kinds the format defines.

# Opening

Open a package and inspect its summary:

	p, err := upk.Open("Engine.upk")
	if err != nil {
	    return err
	}
	fmt.Println(p.Summary().PackageFlags)

For packages already in memory:

	p, err := upk.LoadBytes("Engine", buf, upk.ReaderOptions{})
	if err != nil {
	    return err
	}

# Querying tables

Walk the name, import, and export tables:

	for i, e := range p.Tables().Exports {
	    fmt.Printf("%d: %s (%s)\n", i, e.FullName, e.Type)
	}

	idx, isExport, found := p.FindByFullName("Engine.Default__Engine", "Class")
	if found && isExport {
	    fmt.Println(p.Tables().Exports[idx].SerialSize)
	}

# Walking objects

Deserialize one export's payload into its typed object:

	obj, err := p.Object(idx)
	if err != nil {
	    return err
	}
	fmt.Println(obj.Trace())

	if props := obj.Properties(); props != nil {
	    for _, prop := range props.Entries {
	        fmt.Println(prop.Name, prop.Type)
	    }
	}

# Editing

Edit operations mutate the package's in-memory buffer and leave it ready
for the caller to persist:

	backup, err := p.WriteInPlace(idx, newPayload, upk.EditOptions{})
	if err != nil {
	    return err
	}
	_ = backup // original bytes, for a manual undo

Resizing and relocating a payload, with an undo trailer for the move:

	if err := p.MoveResizeToEnd(idx, newSize, upk.EditOptions{}); err != nil {
	    return err
	}
	// ... later, to revert:
	if err := p.UndoMoveResize(idx, upk.EditOptions{}); err != nil {
	    return err
	}

Adding a new export under an existing owner:

	nameIdx, err := p.AddName("NewProperty", upk.EditOptions{})
	if err != nil {
	    return err
	}
	newIdx, err := p.AddExport(upk.ExportEntry{
	    TypeRef: classRef,
	    NameIdx: upk.NameRef{Index: uint32(nameIdx)},
	}, ownerRef, upk.EditOptions{})
	if err != nil {
	    return err
	}

Glob-matching by full name, built on github.com/woozymasta/pathrules:

	result, found := p.Find(upk.FindQuery{FullName: "Engine.Default__*", Glob: true})
	if found {
	    fmt.Println(result.Index, result.IsExport)
	}
*/
package upk
