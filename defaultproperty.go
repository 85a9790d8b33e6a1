// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import "strings"

// DefaultProperty is one entry in a default-property list: a tagged value
// whose on-disk shape depends on its Type string. The terminal "None"
// sentinel entry is included in PropertyList.Entries so callers can detect
// an empty list versus a truncated one.
type DefaultProperty struct {
	NameIdx      NameRef
	Name         string
	TypeIdx      NameRef
	Type         string
	PropertySize uint32
	ArrayIdx     uint32
	BoolValue    uint8
	InnerNameIdx NameRef
}

// PropertyList is a None-terminated sequence of default properties, the
// shape every non-Class object (and every ScriptStruct/struct-typed value)
// carries.
type PropertyList struct {
	Entries []DefaultProperty
}

// deserializeDefaultPropertyList reads properties until the "None"
// sentinel, mirroring the source's do/while loop.
func deserializeDefaultPropertyList(c *deserCtx) (*PropertyList, error) {
	c.trc().Linef("UDefaultPropertiesList:")

	list := &PropertyList{}

	for {
		prop, err := deserializeOneProperty(c)
		if err != nil {
			return list, err
		}

		list.Entries = append(list.Entries, prop)

		if prop.Name == "None" {
			break
		}
	}

	return list, nil
}

func deserializeOneProperty(c *deserCtx) (DefaultProperty, error) {
	var p DefaultProperty

	nameIdx, err := c.bs.ReadNameRef()
	if err != nil {
		return p, err
	}

	p.NameIdx = nameIdx
	p.Name = c.nameOf(nameIdx)
	c.trc().Linef("\tNameIdx -> %s", p.Name)

	if p.Name == "None" {
		return p, nil
	}

	if p.TypeIdx, err = c.bs.ReadNameRef(); err != nil {
		return p, err
	}
	p.Type = c.nameOf(p.TypeIdx)
	c.trc().Linef("\tTypeIdx -> %s", p.Type)

	if p.PropertySize, err = c.bs.ReadU32(); err != nil {
		return p, err
	}
	c.trc().Linef("\tPropertySize = %s", c.hex32(p.PropertySize))

	if uint64(p.PropertySize) > uint64(c.entry.SerialSize) {
		return p, ErrBadPropertySize
	}

	if p.ArrayIdx, err = c.bs.ReadU32(); err != nil {
		return p, err
	}
	c.trc().Linef("\tArrayIdx = %s", c.hex32(p.ArrayIdx))

	if p.Type == "BoolProperty" {
		if p.BoolValue, err = c.bs.ReadU8(); err != nil {
			return p, err
		}
		c.trc().Linef("\tBoolean value: %v", p.BoolValue != 0)
	}

	if p.Type == "StructProperty" || p.Type == "ByteProperty" {
		if p.InnerNameIdx, err = c.bs.ReadNameRef(); err != nil {
			return p, err
		}
		c.trc().Linef("\tInnerNameIdx -> %s", c.nameOf(p.InnerNameIdx))

		if p.Type == "StructProperty" {
			p.Type = c.nameOf(p.InnerNameIdx)
		}
		// A ByteProperty whose value is exactly 8 bytes holds a name
		// reference, so it is deserialized as a NameProperty.
		if p.Type == "ByteProperty" && p.PropertySize == 8 {
			p.Type = "NameProperty"
		}
	}

	if p.PropertySize > 0 {
		offset := c.bs.Tell()

		if !c.opts.QuickMode {
			if err := deserializePropertyValue(c, &p, p.PropertySize); err != nil {
				return p, err
			}
		} else {
			c.trc().Linef("Quick mode: skipping value.")
		}

		if _, err := c.bs.Seek(offset+int64(p.PropertySize), SeekStart); err != nil {
			return p, err
		}
	}

	return p, nil
}

// deserializePropertyValue renders size bytes of value according to typ,
// falling back through the unsafe size-based guesses the source applies
// when the type name itself is not recognized.
func deserializePropertyValue(c *deserCtx, p *DefaultProperty, size uint32) error {
	typ := p.Type
	unsafe := c.opts.Mode == ParseUnsafe

	switch typ {
	case "ArrayProperty":
		return deserializeArrayValue(c, p, size)

	case "BoolProperty":
		v, err := c.bs.ReadU8()
		if err != nil {
			return err
		}
		c.trc().Linef("\tBoolean value: %v", v != 0)
		return nil

	case "ByteProperty":
		v, err := c.bs.ReadU8()
		if err != nil {
			return err
		}
		c.trc().Linef("\tByte value: %d", v)
		return nil

	case "IntProperty":
		v, err := c.bs.ReadI32()
		if err != nil {
			return err
		}
		c.trc().Linef("\tInteger: %d", v)
		return nil

	case "FloatProperty":
		v, err := c.bs.ReadF32()
		if err != nil {
			return err
		}
		c.trc().Linef("\tFloat: %v", v)
		return nil

	case "ObjectProperty", "InterfaceProperty", "ComponentProperty", "ClassProperty":
		ref, err := c.bs.ReadObjRef()
		if err != nil {
			return err
		}
		if ref.IsNull() {
			c.trc().Linef("\tObject: none")
		} else {
			c.trc().Linef("\tObject: %s", c.refName(ref))
		}
		return nil

	case "DelegateProperty":
		ref, err := c.bs.ReadObjRef()
		if err != nil {
			return err
		}
		c.trc().Linef("\tReturn value: %s", c.refName(ref))

		name, err := c.bs.ReadNameRef()
		if err != nil {
			return err
		}
		c.trc().Linef("\tDelegate name: %s", c.nameOf(name))
		return nil

	case "NameProperty":
		name, err := c.bs.ReadNameRef()
		if err != nil {
			return err
		}
		c.trc().Linef("\tName: %s", c.nameOf(name))
		return nil

	case "StrProperty":
		return deserializeStrValue(c)

	case "Vector", "Vector2D":
		n := 2
		if typ == "Vector" {
			n = 3
		}
		for i := 0; i < n; i++ {
			if _, err := c.bs.ReadF32(); err != nil {
				return err
			}
		}
		c.trc().Linef("\t%s read", typ)
		return nil

	case "Plane", "LinearColor":
		for i := 0; i < 4; i++ {
			if _, err := c.bs.ReadF32(); err != nil {
				return err
			}
		}
		c.trc().Linef("\t%s read", typ)
		return nil

	case "Rotator":
		for i := 0; i < 3; i++ {
			if _, err := c.bs.ReadI32(); err != nil {
				return err
			}
		}
		c.trc().Linef("\tRotator read")
		return nil

	case "Guid":
		if _, err := c.bs.ReadGUID(); err != nil {
			return err
		}
		c.trc().Linef("\tGUID read")
		return nil

	case "Color":
		if _, err := c.bs.ReadBytes(4); err != nil {
			return err
		}
		c.trc().Linef("\tColor read")
		return nil

	case "Box":
		for i := 0; i < 6; i++ {
			if _, err := c.bs.ReadF32(); err != nil {
				return err
			}
		}
		if _, err := c.bs.ReadU8(); err != nil {
			return err
		}
		c.trc().Linef("\tBox read")
		return nil

	case "Matrix":
		for i := 0; i < 16; i++ {
			if _, err := c.bs.ReadF32(); err != nil {
				return err
			}
		}
		c.trc().Linef("\tMatrix read")
		return nil

	case "ScriptStruct":
		_, err := deserializeDefaultPropertyList(c)
		return err
	}

	if unsafe && p.Name != "ArrayProperty" && size > 24 {
		c.trc().Linef("Unsafe guess (it's a Property List):")
		_, err := deserializeDefaultPropertyList(c)
		return err
	}

	if unsafe && size == 16 {
		if _, err := c.bs.ReadGUID(); err != nil {
			return err
		}
		c.trc().Linef("\tUnsafe guess: GUID read")
		return nil
	}

	if unsafe && size == 8 {
		name, err := c.bs.ReadNameRef()
		if err != nil {
			return err
		}
		c.trc().Linef("\tUnsafe guess: Name -> %s", c.nameOf(name))
		return nil
	}

	if unsafe && size == 4 {
		v, err := c.bs.ReadI32()
		if err != nil {
			return err
		}
		c.trc().Linef("\tUnsafe guess: Integer %d or Reference -> %s", v, c.refName(ObjRef(v)))
		return nil
	}

	if unsafe && size == 1 {
		v, err := c.bs.ReadU8()
		if err != nil {
			return err
		}
		c.trc().Linef("\tUnsafe guess: boolean %v", v != 0)
		return nil
	}

	if uint64(size) <= uint64(c.entry.SerialSize) {
		unk, err := c.bs.ReadBytes(int(size))
		if err != nil {
			return err
		}
		c.trc().Linef("\tUnknown property: %x", unk)
	}

	return nil
}

func deserializeStrValue(c *deserCtx) error {
	strLen, err := c.bs.ReadI32()
	if err != nil {
		return err
	}

	switch {
	case strLen > 0:
		s, err := c.bs.ReadCString()
		if err != nil {
			return err
		}
		c.trc().Linef("\tString = %s", s)

	case strLen < 0:
		n := int(-strLen) * 2
		raw, err := c.bs.ReadBytes(n)
		if err != nil {
			return err
		}

		var sb strings.Builder
		for i := 0; i < len(raw); i += 2 {
			sb.WriteByte(raw[i])
		}
		c.trc().Linef("\tUnicode string = %s", sb.String())
	}

	return nil
}

func deserializeArrayValue(c *deserCtx, p *DefaultProperty, size uint32) error {
	numElements, err := c.bs.ReadU32()
	if err != nil {
		return err
	}
	c.trc().Linef("\tNumElements = %d", numElements)

	if numElements > size {
		return ErrBadElementCount
	}

	if numElements == 0 || size <= 4 {
		return nil
	}

	innerType := findArrayType(c, p.Name)
	if innerType != "" {
		c.trc().Linef("\tArrayInnerType = %s", innerType)
	}

	if innerType == "" && c.opts.Mode == ParseUnsafe {
		innerType = guessArrayType(p.Name)
		if innerType != "" {
			c.trc().Linef("\tUnsafe guess: ArrayInnerType = %s", innerType)
		}
	}

	innerSize := size - 4

	if innerType != "" {
		innerSize /= numElements

		for i := uint32(0); i < numElements; i++ {
			c.trc().Linef("\t%s[%d]:", p.Name, i)

			inner := DefaultProperty{Name: p.Name, Type: innerType}
			if err := deserializePropertyValue(c, &inner, innerSize); err != nil {
				return err
			}
		}

		return nil
	}

	endsWithNone := false

	if innerSize > 8 && c.opts.Mode == ParseUnsafe {
		offset := c.bs.Tell()

		peek, err := c.bs.ReadBytes(int(innerSize))
		if err != nil {
			return err
		}

		if _, err := c.bs.Seek(offset, SeekStart); err != nil {
			return err
		}

		if len(peek) >= 8 {
			tailIdx := uint32(peek[len(peek)-8]) | uint32(peek[len(peek)-7])<<8 |
				uint32(peek[len(peek)-6])<<16 | uint32(peek[len(peek)-5])<<24
			endsWithNone = tailIdx == c.pkg.tables.NoneIdx
		}
	}

	switch {
	case endsWithNone && c.opts.Mode == ParseUnsafe:
		for i := uint32(0); i < numElements; i++ {
			c.trc().Linef("\t%s[%d]:", p.Name, i)
			c.trc().Linef("Unsafe guess (it's a Property List):")

			if _, err := deserializeDefaultPropertyList(c); err != nil {
				return err
			}
		}

	case c.opts.Mode == ParseUnsafe:
		innerSize /= numElements

		for i := uint32(0); i < numElements; i++ {
			c.trc().Linef("\t%s[%d]:", p.Name, i)

			inner := DefaultProperty{Name: p.Name, Type: ""}
			if err := deserializePropertyValue(c, &inner, innerSize); err != nil {
				return err
			}
		}

	default:
		inner := DefaultProperty{Name: p.Name, Type: ""}
		return deserializePropertyValue(c, &inner, innerSize)
	}

	return nil
}

// findArrayType resolves an array property's element type by locating a
// sibling export named "<owner>.<property>" (stripping a leading
// "Default__" from the owner's full name first) and, if that export is
// itself an ArrayProperty, following its InnerObjRef (and, for a
// StructProperty inner, its StructObjRef) to a concrete type name.
func findArrayType(c *deserCtx, propName string) string {
	if c.idx == 0 {
		return ""
	}

	ownerName := c.entry.FullName
	if strings.HasPrefix(ownerName, "Default__") {
		ownerName = ownerName[len("Default__"):]
	}

	fullName := ownerName + "." + propName

	idx, isExport, found := c.pkg.FindByFullName(fullName, "")
	if !found || !isExport {
		fullName = c.entry.Type + "." + propName
		idx, isExport, found = c.pkg.FindByFullName(fullName, "")
	}

	if !found || !isExport || idx <= 0 {
		return ""
	}

	if c.pkg.tables.Exports[idx].Type != "ArrayProperty" {
		return ""
	}

	obj, err := c.pkg.Object(idx)
	if err != nil {
		return ""
	}

	arr, ok := obj.(*ArrayProperty)
	if !ok {
		return ""
	}

	innerRef := arr.InnerObjRef
	innerIdx := int(innerRef)
	if innerIdx <= 0 || innerIdx >= len(c.pkg.tables.Exports) {
		return ""
	}

	if c.pkg.tables.Exports[innerIdx].Type == "StructProperty" {
		innerObj, err := c.pkg.Object(innerIdx)
		if err != nil {
			return ""
		}

		sp, ok := innerObj.(*StructProperty)
		if !ok {
			return ""
		}

		structIdx := int(sp.StructObjRef)
		if structIdx <= 0 || structIdx >= len(c.pkg.tables.Exports) {
			return ""
		}

		return c.pkg.tables.Exports[structIdx].Type
	}

	return c.pkg.tables.Exports[innerIdx].Type
}

// guessArrayType is the fixed name-keyed fallback table the source applies
// when no sibling ArrayProperty export can be located.
func guessArrayType(propName string) string {
	switch propName {
	case "VertexData":
		return "Vector"
	case "PermutedVertexData":
		return "Plane"
	case "FaceTriData":
		return "IntProperty"
	case "EdgeDirections":
		return "Vector"
	case "FaceNormalDirections":
		return "Vector"
	case "FacePlaneData":
		return "Plane"
	case "ElemBox":
		return "Box"
	}

	return ""
}
