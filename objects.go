// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import (
	"fmt"
	"strconv"
	"strings"
)

// Object is the shared contract every deserialized export payload
// satisfies. Concrete kinds are tagged variants composed from a common
// BaseObject prefix rather than a class hierarchy: Field embeds BaseObject,
// Struct embeds Field, and so on, mirroring the source's inheritance chain
// without the dispatch machinery that came with it.
type Object interface {
	// ExportIndex is the export table index this object was built from.
	ExportIndex() int
	// Kind is the export's resolved type string, e.g. "Class" or
	// "IntProperty".
	Kind() string
	// Trace is a human-diagnostic, line-by-line rendering of every field
	// read, produced as a side effect of deserialization. It is never
	// parsed back.
	Trace() string
	// Properties returns the default-property list parsed for this object,
	// or nil where none is read: a Class export, and an unknown kind
	// parsed in strict mode.
	Properties() *PropertyList
}

// traceBuffer accumulates the human-readable field-by-field trace lines
// every variant's deserializer writes as a side product.
type traceBuffer struct {
	b strings.Builder
}

func (t *traceBuffer) Linef(format string, args ...any) {
	t.b.WriteString(fmt.Sprintf(format, args...))
	t.b.WriteByte('\n')
}

func (t *traceBuffer) String() string { return t.b.String() }

// deserCtx carries everything a variant constructor needs: the owning
// package (for name/ref resolution and table bounds checks), the export
// index, the byte stream positioned at the start of this export's payload,
// and the options governing strict/unsafe heuristics.
type deserCtx struct {
	pkg   *Package
	idx   int
	bs    *ByteStream
	opts  DeserializeOptions
	entry ExportEntry
	trace *traceBuffer
}

// trc returns the trace buffer shared by every deserialize step for this
// export, lazily created on first use.
func (c *deserCtx) trc() *traceBuffer {
	if c.trace == nil {
		c.trace = &traceBuffer{}
	}

	return c.trace
}

func (c *deserCtx) hex32(v uint32) string { return "0x" + strconv.FormatUint(uint64(v), 16) }

func (c *deserCtx) refName(ref ObjRef) string {
	name := c.pkg.tables.ResolveFullName(ref)
	if name == "" {
		return "None"
	}

	return name
}

func (c *deserCtx) nameOf(ref NameRef) string { return c.pkg.tables.resolveName(ref) }

// BaseObject is the common prefix every variant embeds: the net index, the
// optional component/stack/shadow-map preamble, and (for non-Class
// variants) a default-property list.
type BaseObject struct {
	exportIdx int
	kind      string
	trace     *traceBuffer

	NetIndex int32
	Props    *PropertyList
}

func (o *BaseObject) ExportIndex() int         { return o.exportIdx }
func (o *BaseObject) Kind() string             { return o.kind }
func (o *BaseObject) Trace() string            { return o.trace.String() }
func (o *BaseObject) Properties() *PropertyList { return o.Props }

// objectFlagHasStack marks that a stack region follows the net index on
// non-Class objects under unsafe parsing. Value matches the engine's public
// RF_HasStack object flag.
const objectFlagHasStack uint32 = 0x02000000

// isComponentType applies the hacky substring heuristic used to decide
// whether a payload carries a template-owner-class preamble.
func isComponentType(typeName string) bool {
	if typeName == "ComponentProperty" {
		return false
	}
	if strings.Contains(typeName, "MaterialExpression") {
		return false
	}

	return strings.Contains(typeName, "Component") || strings.Contains(typeName, "Distribution")
}

func isDominantDirectionalLightComponent(typeName string) bool {
	return strings.Contains(typeName, "DominantDirectionalLightComponent")
}

func isDefaultPropertiesObject(entryName string) bool {
	return strings.Contains(entryName, "Default__")
}

func isSubobject(ownerFullName string) bool {
	return strings.Contains(ownerFullName, "Default__")
}

// deserializeBase reads the shared preamble (shadow-map skip, component
// template refs, net index, optional stack skip) and, unless this export
// is itself a Class, a default-property list.
func deserializeBase(c *deserCtx, isClass bool) (BaseObject, error) {
	o := BaseObject{exportIdx: c.idx, kind: c.entry.Type, trace: c.trc()}

	if !isDefaultPropertiesObject(c.entry.Name) {
		if isDominantDirectionalLightComponent(c.entry.Type) {
			o.trace.Linef("DominantDirectionalLightComponent:")

			shadowMapSize, err := c.bs.ReadU32()
			if err != nil {
				return o, fmt.Errorf("shadow map size: %w", err)
			}

			o.trace.Linef("\tDominantLightShadowMapSize = %s = %d", c.hex32(shadowMapSize), shadowMapSize)

			if _, err := c.bs.Seek(int64(2*shadowMapSize), SeekCurrent); err != nil {
				return o, fmt.Errorf("skip shadow map: %w", err)
			}

			o.trace.Linef("Cannot deserialize DominantLightShadowMap: skipping!")
		}

		if isComponentType(c.entry.Type) {
			o.trace.Linef("UComponent:")

			templateOwnerClass, err := c.bs.ReadObjRef()
			if err != nil {
				return o, fmt.Errorf("template owner class: %w", err)
			}

			o.trace.Linef("\tTemplateOwnerClass = %s = %s", c.hex32(uint32(templateOwnerClass)), c.refName(templateOwnerClass))

			if isSubobject(c.entry.FullName[:max(0, len(c.entry.FullName)-len(c.entry.Name))]) {
				templateName, err := c.bs.ReadNameRef()
				if err != nil {
					return o, fmt.Errorf("template name: %w", err)
				}

				o.trace.Linef("\tTemplateName = %s", c.nameOf(templateName))
			}
		}
	}

	o.trace.Linef("UObject:")

	netIndex, err := c.bs.ReadI32()
	if err != nil {
		return o, fmt.Errorf("net index: %w", err)
	}

	o.NetIndex = netIndex
	o.trace.Linef("\tNetIndex = %s = %d", c.hex32(uint32(netIndex)), netIndex)

	if !isClass {
		if c.opts.Mode == ParseUnsafe && c.entry.ObjectFlagsL&objectFlagHasStack != 0 {
			if _, err := c.bs.Seek(22, SeekCurrent); err != nil {
				return o, fmt.Errorf("skip stack: %w", err)
			}

			o.trace.Linef("Cannot deserialize stack: skipping!")
		}

		props, err := deserializeDefaultPropertyList(c)
		if err != nil {
			return o, err
		}

		o.Props = props
	}

	return o, nil
}

// DeserializeObject builds the typed variant for export idx using opts.
// An export marked "properties object" is parsed as a bare BaseObject,
// bypassing variant dispatch entirely.
func DeserializeObject(pkg *Package, idx int, opts DeserializeOptions) (Object, error) {
	opts.applyDefaults()

	if idx <= 0 || idx >= len(pkg.tables.Exports) {
		return nil, ErrExportNotFound
	}

	entry := pkg.tables.Exports[idx]

	data, err := pkg.GetExportData(idx)
	if err != nil {
		return nil, err
	}

	c := &deserCtx{pkg: pkg, idx: idx, bs: NewByteStream(data), opts: opts, entry: entry}

	if entry.IsPropertiesObject() {
		base, err := deserializeBase(c, false)
		return &base, err
	}

	switch entry.Type {
	case "Field":
		return deserializeField(c)
	case "Struct":
		return deserializeStructVariant(c)
	case "Function":
		return deserializeFunction(c)
	case "ScriptStruct":
		return deserializeScriptStruct(c)
	case "State":
		return deserializeState(c)
	case "Class":
		return deserializeClass(c)
	case "Const":
		return deserializeConst(c)
	case "Enum":
		return deserializeEnum(c)
	case "Level":
		return deserializeLevel(c)
	}

	if isPropertyKind(entry.Type) {
		return deserializePropertyVariant(c, entry.Type)
	}

	return deserializeUnknown(c)
}

// Object returns (and caches) the deserialized object for export idx using
// the package's default deserialize options. A mutating edit discards the
// whole cache, per the single-producer-per-(package,index) guarantee.
func (p *Package) Object(idx int) (Object, error) {
	return p.ObjectWithOptions(idx, p.opts.Deserialize)
}

// ObjectWithOptions is like Object but overrides the deserialize options
// for this one call; the result is still cached under idx, so the first
// caller's options win for subsequent cached lookups.
func (p *Package) ObjectWithOptions(idx int, opts DeserializeOptions) (Object, error) {
	p.mu.Lock()
	if obj, ok := p.objectCache[idx]; ok {
		p.mu.Unlock()
		return obj, nil
	}
	p.mu.Unlock()

	obj, err := DeserializeObject(p, idx, opts)
	if err != nil {
		p.opts.Logger.Warnf("object", "export %d (%s): %v", idx, p.tables.Exports[min(idx, len(p.tables.Exports)-1)].Type, err)
		return nil, err
	}

	p.mu.Lock()
	p.objectCache[idx] = obj
	p.mu.Unlock()

	return obj, nil
}
