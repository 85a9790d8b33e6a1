// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

// propertyFlagNet gates PropertyObject.RepOffset. Value matches the
// engine's public CPF_Net property flag.
const propertyFlagNet uint32 = 0x00000020

// PropertyObject is the common Property export shape: a Field plus array
// dimension/element size, flag pairs, and an optional replication offset.
// Every concrete property kind embeds this and adds its own reference
// fields.
type PropertyObject struct {
	FieldObject

	ArrayDim      uint16
	ElementSize   uint16
	PropertyFlagsL uint32
	PropertyFlagsH uint32
	CategoryIndex NameRef
	ArrayEnumRef  ObjRef
	RepOffset     uint16
}

func buildProperty(c *deserCtx) (PropertyObject, error) {
	field, err := buildField(c, false)
	if err != nil {
		return PropertyObject{FieldObject: field}, err
	}

	p := PropertyObject{FieldObject: field}
	p.trace.Linef("UProperty:")

	packed, err := c.bs.ReadU32()
	if err != nil {
		return p, err
	}

	p.ArrayDim = uint16(packed & 0xFFFF)
	p.ElementSize = uint16(packed >> 16)
	p.trace.Linef("\tArrayDim = %d", p.ArrayDim)
	p.trace.Linef("\tElementSize = %d", p.ElementSize)

	if p.PropertyFlagsL, err = c.bs.ReadU32(); err != nil {
		return p, err
	}
	p.trace.Linef("\tPropertyFlagsL = %s", c.hex32(p.PropertyFlagsL))

	if p.PropertyFlagsH, err = c.bs.ReadU32(); err != nil {
		return p, err
	}
	p.trace.Linef("\tPropertyFlagsH = %s", c.hex32(p.PropertyFlagsH))

	if p.CategoryIndex, err = c.bs.ReadNameRef(); err != nil {
		return p, err
	}
	p.trace.Linef("\tCategoryIndex -> %s", c.nameOf(p.CategoryIndex))

	if p.ArrayEnumRef, err = c.bs.ReadObjRef(); err != nil {
		return p, err
	}
	p.trace.Linef("\tArrayEnumRef -> %s", c.refName(p.ArrayEnumRef))

	if p.PropertyFlagsL&propertyFlagNet != 0 {
		if p.RepOffset, err = c.bs.ReadU16(); err != nil {
			return p, err
		}
		p.trace.Linef("\tRepOffset = %s", c.hex32(uint32(p.RepOffset)))
	}

	return p, nil
}

// ByteProperty is an enum or plain byte field; EnumObjRef is null for a
// plain byte.
type ByteProperty struct {
	PropertyObject
	EnumObjRef ObjRef
}

// IntProperty has no fields beyond PropertyObject.
type IntProperty struct{ PropertyObject }

// BoolProperty has no fields beyond PropertyObject.
type BoolProperty struct{ PropertyObject }

// FloatProperty has no fields beyond PropertyObject.
type FloatProperty struct{ PropertyObject }

// NameProperty has no fields beyond PropertyObject.
type NameProperty struct{ PropertyObject }

// StrProperty has no fields beyond PropertyObject.
type StrProperty struct{ PropertyObject }

// ObjectProperty points at an instance of OtherObjRef's class.
type ObjectProperty struct {
	PropertyObject
	OtherObjRef ObjRef
}

// ComponentProperty is an ObjectProperty specialized for owned components;
// it carries no fields beyond what ObjectProperty reads.
type ComponentProperty struct {
	ObjectProperty
}

// ClassProperty further narrows an ObjectProperty to instances of
// ClassObjRef specifically (a "subclass of" field).
type ClassProperty struct {
	ObjectProperty
	ClassObjRef ObjRef
}

// StructProperty embeds an instance of a ScriptStruct.
type StructProperty struct {
	PropertyObject
	StructObjRef ObjRef
}

// FixedArrayProperty is a compile-time-sized array of InnerObjRef elements.
type FixedArrayProperty struct {
	PropertyObject
	InnerObjRef ObjRef
	Count       uint32
}

// ArrayProperty is a dynamically sized array of InnerObjRef elements.
type ArrayProperty struct {
	PropertyObject
	InnerObjRef ObjRef
}

// DelegateProperty binds a function reference to an optional delegate
// property override.
type DelegateProperty struct {
	PropertyObject
	FunctionObjRef ObjRef
	DelegateObjRef ObjRef
}

// InterfaceProperty narrows an object reference to implementors of
// InterfaceObjRef.
type InterfaceProperty struct {
	PropertyObject
	InterfaceObjRef ObjRef
}

// MapProperty is a key/value association; neither side is serialized with
// the property itself, only the key and value element types.
type MapProperty struct {
	PropertyObject
	KeyObjRef   ObjRef
	ValueObjRef ObjRef
}

var propertyKinds = map[string]bool{
	"ByteProperty":       true,
	"IntProperty":        true,
	"BoolProperty":       true,
	"FloatProperty":      true,
	"ObjectProperty":     true,
	"ClassProperty":      true,
	"ComponentProperty":  true,
	"NameProperty":       true,
	"StructProperty":     true,
	"StrProperty":        true,
	"FixedArrayProperty": true,
	"ArrayProperty":      true,
	"DelegateProperty":   true,
	"InterfaceProperty":  true,
	"MapProperty":        true,
}

func isPropertyKind(typeName string) bool { return propertyKinds[typeName] }

// deserializePropertyVariant dispatches to the concrete property kind named
// by typeName, all sharing the PropertyObject prefix.
func deserializePropertyVariant(c *deserCtx, typeName string) (Object, error) {
	base, err := buildProperty(c)
	if err != nil {
		return &PropertyObject{FieldObject: base.FieldObject}, err
	}

	switch typeName {
	case "ByteProperty":
		p := ByteProperty{PropertyObject: base}
		p.trace.Linef("UByteProperty:")

		if p.EnumObjRef, err = c.bs.ReadObjRef(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tEnumObjRef -> %s", c.refName(p.EnumObjRef))

		return &p, nil

	case "IntProperty":
		return &IntProperty{PropertyObject: base}, nil

	case "BoolProperty":
		return &BoolProperty{PropertyObject: base}, nil

	case "FloatProperty":
		return &FloatProperty{PropertyObject: base}, nil

	case "NameProperty":
		return &NameProperty{PropertyObject: base}, nil

	case "StrProperty":
		return &StrProperty{PropertyObject: base}, nil

	case "ObjectProperty":
		p := ObjectProperty{PropertyObject: base}
		p.trace.Linef("UObjectProperty:")

		if p.OtherObjRef, err = c.bs.ReadObjRef(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tOtherObjRef -> %s", c.refName(p.OtherObjRef))

		return &p, nil

	case "ComponentProperty":
		obj, err := deserializeObjectPropertyBase(c, base)
		return &ComponentProperty{ObjectProperty: obj}, err

	case "ClassProperty":
		obj, err := deserializeObjectPropertyBase(c, base)
		if err != nil {
			return &ClassProperty{ObjectProperty: obj}, err
		}

		p := ClassProperty{ObjectProperty: obj}
		p.trace.Linef("UClassProperty:")

		if p.ClassObjRef, err = c.bs.ReadObjRef(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tClassObjRef -> %s", c.refName(p.ClassObjRef))

		return &p, nil

	case "StructProperty":
		p := StructProperty{PropertyObject: base}
		p.trace.Linef("UStructProperty:")

		if p.StructObjRef, err = c.bs.ReadObjRef(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tStructObjRef -> %s", c.refName(p.StructObjRef))

		return &p, nil

	case "FixedArrayProperty":
		p := FixedArrayProperty{PropertyObject: base}
		p.trace.Linef("UFixedArrayProperty:")

		if p.InnerObjRef, err = c.bs.ReadObjRef(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tInnerObjRef -> %s", c.refName(p.InnerObjRef))

		if p.Count, err = c.bs.ReadU32(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tCount = %d", p.Count)

		return &p, nil

	case "ArrayProperty":
		p := ArrayProperty{PropertyObject: base}
		p.trace.Linef("UArrayProperty:")

		if p.InnerObjRef, err = c.bs.ReadObjRef(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tInnerObjRef -> %s", c.refName(p.InnerObjRef))

		return &p, nil

	case "DelegateProperty":
		p := DelegateProperty{PropertyObject: base}
		p.trace.Linef("UDelegateProperty:")

		if p.FunctionObjRef, err = c.bs.ReadObjRef(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tFunctionObjRef -> %s", c.refName(p.FunctionObjRef))

		if p.DelegateObjRef, err = c.bs.ReadObjRef(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tDelegateObjRef -> %s", c.refName(p.DelegateObjRef))

		return &p, nil

	case "InterfaceProperty":
		p := InterfaceProperty{PropertyObject: base}
		p.trace.Linef("UInterfaceProperty:")

		if p.InterfaceObjRef, err = c.bs.ReadObjRef(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tInterfaceObjRef -> %s", c.refName(p.InterfaceObjRef))

		return &p, nil

	case "MapProperty":
		p := MapProperty{PropertyObject: base}
		p.trace.Linef("UMapProperty:")

		if p.KeyObjRef, err = c.bs.ReadObjRef(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tKeyObjRef -> %s", c.refName(p.KeyObjRef))

		if p.ValueObjRef, err = c.bs.ReadObjRef(); err != nil {
			return &p, err
		}
		p.trace.Linef("\tValueObjRef -> %s", c.refName(p.ValueObjRef))

		return &p, nil
	}

	return &base, ErrUnknownVariant
}

func deserializeObjectPropertyBase(c *deserCtx, base PropertyObject) (ObjectProperty, error) {
	p := ObjectProperty{PropertyObject: base}
	p.trace.Linef("UObjectProperty:")

	otherObjRef, err := c.bs.ReadObjRef()
	if err != nil {
		return p, err
	}

	p.OtherObjRef = otherObjRef
	p.trace.Linef("\tOtherObjRef -> %s", c.refName(p.OtherObjRef))

	return p, nil
}
