// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

// FieldObject is a Field export: a net-indexed object with a "next sibling"
// reference and, for struct-derived kinds, a parent reference.
type FieldObject struct {
	BaseObject

	NextRef   ObjRef
	ParentRef ObjRef

	isStructure bool
}

func (o *FieldObject) IsStructure() bool { return o.isStructure }

// buildField deserializes the UObject preamble plus the Field-level
// NextRef/ParentRef pair, used as the composition root for every
// struct-derived and property-derived variant.
func buildField(c *deserCtx, isStructure bool) (FieldObject, error) {
	isClass := c.entry.Type == "Class"

	base, err := deserializeBase(c, isClass)
	if err != nil {
		return FieldObject{}, err
	}

	f := FieldObject{BaseObject: base, isStructure: isStructure}
	f.trace.Linef("UField:")

	nextRef, err := c.bs.ReadObjRef()
	if err != nil {
		return f, err
	}

	f.NextRef = nextRef
	f.trace.Linef("\tNextRef = %s -> %s", c.hex32(uint32(nextRef)), c.refName(nextRef))

	if isStructure {
		parentRef, err := c.bs.ReadObjRef()
		if err != nil {
			return f, err
		}

		f.ParentRef = parentRef
		f.trace.Linef("\tParentRef = %s -> %s", c.hex32(uint32(parentRef)), c.refName(parentRef))
	}

	return f, nil
}

func deserializeField(c *deserCtx) (Object, error) {
	f, err := buildField(c, false)
	return &f, err
}

// StructObject is a Struct export: a Field plus the bytecode header and
// verbatim script buffer.
type StructObject struct {
	FieldObject

	ScriptTextRef    ObjRef
	FirstChildRef    ObjRef
	CppTextRef       ObjRef
	Line             uint32
	TextPos          uint32
	ScriptMemorySize uint32
	ScriptSerialSize uint32
	DataScript       []byte
}

func buildStruct(c *deserCtx) (StructObject, error) {
	field, err := buildField(c, true)
	if err != nil {
		return StructObject{}, err
	}

	s := StructObject{FieldObject: field}
	s.trace.Linef("UStruct:")

	if s.ScriptTextRef, err = c.bs.ReadObjRef(); err != nil {
		return s, err
	}
	s.trace.Linef("\tScriptTextRef = %s -> %s", c.hex32(uint32(s.ScriptTextRef)), c.refName(s.ScriptTextRef))

	if s.FirstChildRef, err = c.bs.ReadObjRef(); err != nil {
		return s, err
	}
	s.trace.Linef("\tFirstChildRef = %s -> %s", c.hex32(uint32(s.FirstChildRef)), c.refName(s.FirstChildRef))

	if s.CppTextRef, err = c.bs.ReadObjRef(); err != nil {
		return s, err
	}
	s.trace.Linef("\tCppTextRef = %s -> %s", c.hex32(uint32(s.CppTextRef)), c.refName(s.CppTextRef))

	if s.Line, err = c.bs.ReadU32(); err != nil {
		return s, err
	}
	s.trace.Linef("\tLine = %s", c.hex32(s.Line))

	if s.TextPos, err = c.bs.ReadU32(); err != nil {
		return s, err
	}
	s.trace.Linef("\tTextPos = %s", c.hex32(s.TextPos))

	if s.ScriptMemorySize, err = c.bs.ReadU32(); err != nil {
		return s, err
	}
	s.trace.Linef("\tScriptMemorySize = %s", c.hex32(s.ScriptMemorySize))

	if s.ScriptSerialSize, err = c.bs.ReadU32(); err != nil {
		return s, err
	}
	s.trace.Linef("\tScriptSerialSize = %s", c.hex32(s.ScriptSerialSize))

	if s.ScriptSerialSize > 0xFFFF {
		return s, ErrScriptSizeOverflow
	}

	if s.ScriptSerialSize > 0 {
		data, err := c.bs.ReadBytes(int(s.ScriptSerialSize))
		if err != nil {
			return s, err
		}

		s.DataScript = data
		s.trace.Linef("\tSkipping script bytecode.")
	}

	return s, nil
}

func deserializeStructVariant(c *deserCtx) (Object, error) {
	s, err := buildStruct(c)
	return &s, err
}

// functionFlagNet marks a function as replicated, gating the RepOffset
// field. Value matches the engine's public FUNC_Net function flag.
const functionFlagNet uint32 = 0x00000040

// FunctionObject is a Function export: a Struct plus native-calling
// metadata and its own name index.
type FunctionObject struct {
	StructObject

	NativeToken    uint16
	OperPrecedence uint8
	FunctionFlags  uint32
	RepOffset      uint16
	NameIdx        NameRef
}

func deserializeFunction(c *deserCtx) (Object, error) {
	base, err := buildStruct(c)
	if err != nil {
		return &FunctionObject{StructObject: base}, err
	}

	f := FunctionObject{StructObject: base}
	f.trace.Linef("UFunction:")

	if f.NativeToken, err = c.bs.ReadU16(); err != nil {
		return &f, err
	}
	f.trace.Linef("\tNativeToken = %s", c.hex32(uint32(f.NativeToken)))

	nativeByte, err := c.bs.ReadU8()
	if err != nil {
		return &f, err
	}

	f.OperPrecedence = nativeByte
	f.trace.Linef("\tOperPrecedence = %s", c.hex32(uint32(f.OperPrecedence)))

	if f.FunctionFlags, err = c.bs.ReadU32(); err != nil {
		return &f, err
	}
	f.trace.Linef("\tFunctionFlags = %s", c.hex32(f.FunctionFlags))

	if f.FunctionFlags&functionFlagNet != 0 {
		if f.RepOffset, err = c.bs.ReadU16(); err != nil {
			return &f, err
		}
		f.trace.Linef("\tRepOffset = %s", c.hex32(uint32(f.RepOffset)))
	}

	if f.NameIdx, err = c.bs.ReadNameRef(); err != nil {
		return &f, err
	}
	f.trace.Linef("\tNameIdx -> %s", c.nameOf(f.NameIdx))

	return &f, nil
}

// ScriptStructObject is a ScriptStruct export: a Struct plus its own struct
// flags and a nested default-property list describing its member layout.
type ScriptStructObject struct {
	StructObject

	StructFlags uint32
	Members     *PropertyList
}

func deserializeScriptStruct(c *deserCtx) (Object, error) {
	base, err := buildStruct(c)
	if err != nil {
		return &ScriptStructObject{StructObject: base}, err
	}

	s := ScriptStructObject{StructObject: base}
	s.trace.Linef("UScriptStruct:")

	if s.StructFlags, err = c.bs.ReadU32(); err != nil {
		return &s, err
	}
	s.trace.Linef("\tStructFlags = %s", c.hex32(s.StructFlags))

	members, err := deserializeDefaultPropertyList(c)
	if err != nil {
		return &s, err
	}

	s.Members = members

	return &s, nil
}

// StateMapEntry pairs a name with the object it resolves to, the shared
// layout of State.StateMap and Class.Components.
type StateMapEntry struct {
	NameIdx NameRef
	Ref     ObjRef
}

// StateObject is a State export: a Struct plus probe/label metadata and the
// function name-to-reference map governing state-scoped overrides.
type StateObject struct {
	StructObject

	ProbeMask        uint32
	LabelTableOffset uint16
	StateFlags       uint32
	StateMapSize     uint32
	StateMap         []StateMapEntry
}

func buildState(c *deserCtx) (StateObject, error) {
	base, err := buildStruct(c)
	if err != nil {
		return StateObject{StructObject: base}, err
	}

	s := StateObject{StructObject: base}
	s.trace.Linef("UState:")

	if s.ProbeMask, err = c.bs.ReadU32(); err != nil {
		return s, err
	}
	s.trace.Linef("\tProbeMask = %s", c.hex32(s.ProbeMask))

	if s.LabelTableOffset, err = c.bs.ReadU16(); err != nil {
		return s, err
	}
	s.trace.Linef("\tLabelTableOffset = %s", c.hex32(uint32(s.LabelTableOffset)))

	if s.StateFlags, err = c.bs.ReadU32(); err != nil {
		return s, err
	}
	s.trace.Linef("\tStateFlags = %s", c.hex32(s.StateFlags))

	if s.StateMapSize, err = c.bs.ReadU32(); err != nil {
		return s, err
	}
	s.trace.Linef("\tStateMapSize = %s (%d)", c.hex32(s.StateMapSize), s.StateMapSize)

	if uint64(s.StateMapSize)*12 > uint64(c.entry.SerialSize) {
		s.StateMapSize = 0
	}

	s.StateMap = make([]StateMapEntry, 0, s.StateMapSize)
	for i := uint32(0); i < s.StateMapSize; i++ {
		nameIdx, err := c.bs.ReadNameRef()
		if err != nil {
			return s, err
		}

		ref, err := c.bs.ReadObjRef()
		if err != nil {
			return s, err
		}

		s.trace.Linef("\tStateMap[%d]: %s -> %s", i, c.nameOf(nameIdx), c.refName(ref))
		s.StateMap = append(s.StateMap, StateMapEntry{NameIdx: nameIdx, Ref: ref})
	}

	return s, nil
}

func deserializeState(c *deserCtx) (Object, error) {
	s, err := buildState(c)
	return &s, err
}

// ClassObject is a Class export: a State plus the class-wide metadata every
// blueprint/native class carries (flags, component/interface maps, category
// visibility lists, native binding names).
type ClassObject struct {
	StateObject

	ClassFlags    uint32
	WithinRef     ObjRef
	ConfigNameIdx NameRef

	Components []StateMapEntry

	Interfaces []ClassInterfaceEntry

	DontSortCategories     []NameRef
	HideCategories         []NameRef
	AutoExpandCategories   []NameRef
	AutoCollapseCategories []NameRef

	ForceScriptOrder uint32

	ClassGroups []NameRef

	NativeClassName string
	DLLBindName     NameRef
	DefaultRef      ObjRef
}

// ClassInterfaceEntry pairs an interface class reference with its vtable
// offset within the implementing class.
type ClassInterfaceEntry struct {
	Ref    ObjRef
	Offset uint32
}

func deserializeClass(c *deserCtx) (Object, error) {
	base, err := buildState(c)
	if err != nil {
		return &ClassObject{StateObject: base}, err
	}

	cl := ClassObject{StateObject: base}
	cl.trace.Linef("UClass:")

	if cl.ClassFlags, err = c.bs.ReadU32(); err != nil {
		return &cl, err
	}
	cl.trace.Linef("\tClassFlags = %s", c.hex32(cl.ClassFlags))

	if cl.WithinRef, err = c.bs.ReadObjRef(); err != nil {
		return &cl, err
	}
	cl.trace.Linef("\tWithinRef -> %s", c.refName(cl.WithinRef))

	if cl.ConfigNameIdx, err = c.bs.ReadNameRef(); err != nil {
		return &cl, err
	}
	cl.trace.Linef("\tConfigNameIdx -> %s", c.nameOf(cl.ConfigNameIdx))

	numComponents, err := c.bs.ReadU32()
	if err != nil {
		return &cl, err
	}

	if uint64(numComponents)*12 > uint64(c.entry.SerialSize) {
		numComponents = 0
	}

	cl.Components = make([]StateMapEntry, 0, numComponents)
	for i := uint32(0); i < numComponents; i++ {
		nameIdx, err := c.bs.ReadNameRef()
		if err != nil {
			return &cl, err
		}

		ref, err := c.bs.ReadObjRef()
		if err != nil {
			return &cl, err
		}

		cl.trace.Linef("\tComponents[%d]: %s -> %s", i, c.nameOf(nameIdx), c.refName(ref))
		cl.Components = append(cl.Components, StateMapEntry{NameIdx: nameIdx, Ref: ref})
	}

	numInterfaces, err := c.bs.ReadU32()
	if err != nil {
		return &cl, err
	}

	if uint64(numInterfaces)*8 > uint64(c.entry.SerialSize) {
		numInterfaces = 0
	}

	cl.Interfaces = make([]ClassInterfaceEntry, 0, numInterfaces)
	for i := uint32(0); i < numInterfaces; i++ {
		ref, err := c.bs.ReadObjRef()
		if err != nil {
			return &cl, err
		}

		offset, err := c.bs.ReadU32()
		if err != nil {
			return &cl, err
		}

		cl.trace.Linef("\tInterfaces[%d]: %s @ %s", i, c.refName(ref), c.hex32(offset))
		cl.Interfaces = append(cl.Interfaces, ClassInterfaceEntry{Ref: ref, Offset: offset})
	}

	readNameList := func(label string) ([]NameRef, error) {
		count, err := c.bs.ReadU32()
		if err != nil {
			return nil, err
		}

		if uint64(count)*8 > uint64(c.entry.SerialSize) {
			count = 0
		}

		out := make([]NameRef, 0, count)
		for i := uint32(0); i < count; i++ {
			ref, err := c.bs.ReadNameRef()
			if err != nil {
				return out, err
			}

			cl.trace.Linef("\t%s[%d] -> %s", label, i, c.nameOf(ref))
			out = append(out, ref)
		}

		return out, nil
	}

	if cl.DontSortCategories, err = readNameList("DontSortCategories"); err != nil {
		return &cl, err
	}
	if cl.HideCategories, err = readNameList("HideCategories"); err != nil {
		return &cl, err
	}
	if cl.AutoExpandCategories, err = readNameList("AutoExpandCategories"); err != nil {
		return &cl, err
	}
	if cl.AutoCollapseCategories, err = readNameList("AutoCollapseCategories"); err != nil {
		return &cl, err
	}

	if cl.ForceScriptOrder, err = c.bs.ReadU32(); err != nil {
		return &cl, err
	}
	cl.trace.Linef("\tForceScriptOrder = %s", c.hex32(cl.ForceScriptOrder))

	if cl.ClassGroups, err = readNameList("ClassGroups"); err != nil {
		return &cl, err
	}

	nativeLen, err := c.bs.ReadU32()
	if err != nil {
		return &cl, err
	}

	if nativeLen > uint32(c.entry.SerialSize) {
		nativeLen = 0
	}

	if nativeLen > 0 {
		name, err := c.bs.ReadCString()
		if err != nil {
			return &cl, err
		}

		cl.NativeClassName = name
		cl.trace.Linef("\tNativeClassName = %s", cl.NativeClassName)
	}

	if cl.DLLBindName, err = c.bs.ReadNameRef(); err != nil {
		return &cl, err
	}
	cl.trace.Linef("\tDLLBindName -> %s", c.nameOf(cl.DLLBindName))

	if cl.DefaultRef, err = c.bs.ReadObjRef(); err != nil {
		return &cl, err
	}
	cl.trace.Linef("\tDefaultRef -> %s", c.refName(cl.DefaultRef))

	return &cl, nil
}

// ConstObject is a Const export: a Field plus a single string literal.
type ConstObject struct {
	FieldObject

	ValueLength uint32
	Value       string
}

func deserializeConst(c *deserCtx) (Object, error) {
	field, err := buildField(c, false)
	if err != nil {
		return &ConstObject{FieldObject: field}, err
	}

	o := ConstObject{FieldObject: field}
	o.trace.Linef("UConst:")

	if o.ValueLength, err = c.bs.ReadU32(); err != nil {
		return &o, err
	}
	o.trace.Linef("\tValueLength = %s", c.hex32(o.ValueLength))

	if o.ValueLength > 0 {
		value, err := c.bs.ReadCString()
		if err != nil {
			return &o, err
		}

		o.Value = value
		o.trace.Linef("\tValue = %s", o.Value)
	}

	return &o, nil
}

// EnumObject is an Enum export: a Field plus its ordered member names.
type EnumObject struct {
	FieldObject

	Names []NameRef
}

func deserializeEnum(c *deserCtx) (Object, error) {
	field, err := buildField(c, false)
	if err != nil {
		return &EnumObject{FieldObject: field}, err
	}

	o := EnumObject{FieldObject: field}
	o.trace.Linef("UEnum:")

	count, err := c.bs.ReadU32()
	if err != nil {
		return &o, err
	}
	o.trace.Linef("\tNumNames = %s (%d)", c.hex32(count), count)

	o.Names = make([]NameRef, 0, count)
	for i := uint32(0); i < count; i++ {
		ref, err := c.bs.ReadNameRef()
		if err != nil {
			return &o, err
		}

		o.trace.Linef("\tNames[%d] -> %s", i, c.nameOf(ref))
		o.Names = append(o.Names, ref)
	}

	return &o, nil
}

// LevelObject is a Level export: not Field-derived, carrying the level's own
// object reference, its WorldInfo reference, and the flat actor list.
type LevelObject struct {
	BaseObject

	LevelRef     ObjRef
	WorldInfoRef ObjRef
	Actors       []ObjRef
}

func deserializeLevel(c *deserCtx) (Object, error) {
	base, err := deserializeBase(c, false)
	if err != nil {
		return &LevelObject{BaseObject: base}, err
	}

	o := LevelObject{BaseObject: base}
	o.trace.Linef("ULevel:")

	if o.LevelRef, err = c.bs.ReadObjRef(); err != nil {
		return &o, err
	}
	o.trace.Linef("\tLevel object -> %s", c.refName(o.LevelRef))

	numActors, err := c.bs.ReadU32()
	if err != nil {
		return &o, err
	}
	o.trace.Linef("\tNum actors = %d", numActors)

	if o.WorldInfoRef, err = c.bs.ReadObjRef(); err != nil {
		return &o, err
	}
	o.trace.Linef("\tWorldInfo object -> %s", c.refName(o.WorldInfoRef))

	o.Actors = make([]ObjRef, 0, numActors)
	for i := uint32(0); i < numActors; i++ {
		ref, err := c.bs.ReadObjRef()
		if err != nil {
			return &o, err
		}

		o.Actors = append(o.Actors, ref)
	}

	o.trace.Linef("Object unknown, can't deserialize!")

	return &o, nil
}

// UnknownObject is the fallback for an export type string matching none of
// the known variants. Under unsafe mode the UObject preamble is still read;
// under strict mode the payload is left entirely untouched.
type UnknownObject struct {
	BaseObject
}

func deserializeUnknown(c *deserCtx) (Object, error) {
	if c.opts.Mode == ParseUnsafe {
		base, err := deserializeBase(c, false)
		if err != nil {
			return &UnknownObject{BaseObject: base}, err
		}

		o := UnknownObject{BaseObject: base}
		if c.bs.Tell() != int64(c.entry.SerialSize) {
			o.trace.Linef("Stream relative position (debug info): %s", c.hex32(uint32(c.bs.Tell())))
		}

		return &o, nil
	}

	o := UnknownObject{BaseObject: BaseObject{exportIdx: c.idx, kind: c.entry.Type, trace: c.trc()}}
	o.trace.Linef("UObjectUnknown:")
	o.trace.Linef("\tObject unknown, can't deserialize!")

	return &o, nil
}
