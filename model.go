// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

// PackageSignature is the mandatory magic at offset 0 of every package and
// of every compressed envelope/chunk header.
const PackageSignature uint32 = 0x9E2A83C1

// ExpectedVersion is the summary version this reader understands. A summary
// whose version differs is treated as a compressed-envelope candidate.
const ExpectedVersion uint16 = 845

// CompressedBlockSize is the fixed nominal block size used by both the
// full-envelope and chunked decompression layouts.
const CompressedBlockSize uint32 = 131072

// moveResizeTrailerMagic is the fixed 16-byte tag identifying a move-resize
// undo trailer appended to the file.
var moveResizeTrailerMagic = [16]byte{
	0x7A, 0xA0, 0x56, 0xC9, 0x60, 0x5F, 0x7B, 0x31,
	0x72, 0x5D, 0x4B, 0xC4, 0x7C, 0xD2, 0x4D, 0xD9,
}

// moveResizeTrailerSize is the fixed byte length of a move-resize trailer:
// 16-byte magic + uint32 size + uint32 offset.
const moveResizeTrailerSize = 24

// NameRef is a (table index, numeric suffix) pair into the shared name
// table. Suffix is 1-based; zero means "no suffix".
type NameRef struct {
	Index  uint32 `json:"index" yaml:"index"`
	Suffix uint32 `json:"suffix" yaml:"suffix"`
}

// ObjRef is a signed object reference: positive indexes the export table,
// negative (after negation) indexes the import table, zero is null.
type ObjRef int32

// IsNull reports whether the reference is the null reference.
func (r ObjRef) IsNull() bool { return r == 0 }

// IsExport reports whether the reference points into the export table.
func (r ObjRef) IsExport() bool { return r > 0 }

// IsImport reports whether the reference points into the import table.
func (r ObjRef) IsImport() bool { return r < 0 }

// GUID is a 16-byte globally unique identifier stored as four uint32 words.
type GUID struct {
	A uint32 `json:"a" yaml:"a"`
	B uint32 `json:"b" yaml:"b"`
	C uint32 `json:"c" yaml:"c"`
	D uint32 `json:"d" yaml:"d"`
}

// GenerationInfo records export/name/net-object counts for one save
// generation of the package.
type GenerationInfo struct {
	ExportCount    int32 `json:"export_count" yaml:"export_count"`
	NameCount      int32 `json:"name_count" yaml:"name_count"`
	NetObjectCount int32 `json:"net_object_count" yaml:"net_object_count"`
}

// CompressedChunk is one summary-declared compressed chunk descriptor.
type CompressedChunk struct {
	UncompressedOffset uint32 `json:"uncompressed_offset" yaml:"uncompressed_offset"`
	UncompressedSize   uint32 `json:"uncompressed_size" yaml:"uncompressed_size"`
	CompressedOffset   uint32 `json:"compressed_offset" yaml:"compressed_offset"`
	CompressedSize     uint32 `json:"compressed_size" yaml:"compressed_size"`
}

// NameEntry is an interned string used by all indexed references.
type NameEntry struct {
	Name      string `json:"name" yaml:"name"`
	FlagsLow  uint32 `json:"flags_low" yaml:"flags_low"`
	FlagsHigh uint32 `json:"flags_high" yaml:"flags_high"`

	// EntryOffset and EntrySize are the byte position and size of this
	// entry as read from the stream; needed by rewrite-in-place edits.
	EntryOffset int64 `json:"-" yaml:"-"`
	EntrySize   int64 `json:"-" yaml:"-"`
}

// ImportEntry is an external symbol: origin package name, object type,
// owner reference, and symbol name.
type ImportEntry struct {
	PackageIdx NameRef `json:"package_idx" yaml:"package_idx"`
	TypeIdx    NameRef `json:"type_idx" yaml:"type_idx"`
	OwnerRef   ObjRef  `json:"owner_ref" yaml:"owner_ref"`
	NameIdx    NameRef `json:"name_idx" yaml:"name_idx"`

	EntryOffset int64 `json:"-" yaml:"-"`
	EntrySize   int64 `json:"-" yaml:"-"`

	Name     string `json:"name" yaml:"name"`
	FullName string `json:"full_name" yaml:"full_name"`
	Type     string `json:"type" yaml:"type"`
}

// ExportEntry is a local symbol with a byte payload in the serial region.
type ExportEntry struct {
	TypeRef        ObjRef   `json:"type_ref" yaml:"type_ref"`
	ParentClassRef ObjRef   `json:"parent_class_ref" yaml:"parent_class_ref"`
	OwnerRef       ObjRef   `json:"owner_ref" yaml:"owner_ref"`
	NameIdx        NameRef  `json:"name_idx" yaml:"name_idx"`
	ArchetypeRef   ObjRef   `json:"archetype_ref" yaml:"archetype_ref"`
	ObjectFlagsH   uint32   `json:"object_flags_h" yaml:"object_flags_h"`
	ObjectFlagsL   uint32   `json:"object_flags_l" yaml:"object_flags_l"`
	SerialSize     uint32   `json:"serial_size" yaml:"serial_size"`
	SerialOffset   uint32   `json:"serial_offset" yaml:"serial_offset"`
	ExportFlags    uint32   `json:"export_flags" yaml:"export_flags"`
	NetObjectCount uint32   `json:"net_object_count" yaml:"net_object_count"`
	GUID           GUID     `json:"guid" yaml:"guid"`
	Unknown1       uint32   `json:"unknown1" yaml:"unknown1"`
	NetObjects     []uint32 `json:"net_objects,omitempty" yaml:"net_objects,omitempty"`

	EntryOffset int64 `json:"-" yaml:"-"`
	EntrySize   int64 `json:"-" yaml:"-"`

	Name     string `json:"name" yaml:"name"`
	FullName string `json:"full_name" yaml:"full_name"`
	Type     string `json:"type" yaml:"type"`
}

// exportFlagPropertiesObject is the dedicated high-flag bit marking an
// export as a bare-object (properties-only) payload, bypassing variant
// dispatch.
const exportFlagPropertiesObject uint32 = 0x00000010

// IsPropertiesObject reports whether this export is a bare-object payload.
func (e ExportEntry) IsPropertiesObject() bool {
	return e.ObjectFlagsH&exportFlagPropertiesObject != 0
}

// ParseMode controls how strictly the deserializer treats payload shapes it
// does not recognize.
type ParseMode string

// Supported parse modes.
const (
	// ParseStrict never guesses: an unrecognized property value is skipped
	// with a trace note, and an unrecognized export kind is left unread.
	ParseStrict ParseMode = "strict"
	// ParseUnsafe enables the heuristic size/shape guesses described for
	// the property walker and the base-object stack skip.
	ParseUnsafe ParseMode = "unsafe"
)

// DeserializeOptions configures a single Deserialize/Object call.
type DeserializeOptions struct {
	// Mode selects strict or unsafe heuristic parsing.
	Mode ParseMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	// QuickMode skips default-property value bodies entirely, reading
	// only the tag header and seeking past the declared value size.
	QuickMode bool `json:"quick_mode,omitempty" yaml:"quick_mode,omitempty"`
}

// applyDefaults fills zero-valued deserialize options with defaults.
func (opts *DeserializeOptions) applyDefaults() {
	if opts.Mode == "" {
		opts.Mode = ParseStrict
	}
}

// ReaderOptions configures package load behavior.
type ReaderOptions struct {
	// Logger receives trace/debug/warning/error messages. Nil uses the
	// package-level default sink.
	Logger Logger `json:"-" yaml:"-"`
	// Deserialize carries the default parse mode Package.Object calls use
	// unless overridden per call via ObjectWithOptions.
	Deserialize DeserializeOptions `json:"deserialize,omitzero" yaml:"deserialize,omitzero"`
}

// applyDefaults fills zero-valued reader options with defaults.
func (opts *ReaderOptions) applyDefaults() {
	opts.Deserialize.applyDefaults()

	if opts.Logger == nil {
		opts.Logger = defaultLogger
	}
}

// EditOptions configures mutating package operations.
type EditOptions struct {
	// Logger receives trace/debug/warning/error messages during edits.
	Logger Logger `json:"-" yaml:"-"`
}

// applyDefaults fills zero-valued edit options with defaults.
func (opts *EditOptions) applyDefaults() {
	if opts.Logger == nil {
		opts.Logger = defaultLogger
	}
}
