// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import "fmt"

// Summary is the fixed-layout package header: signature, version pair,
// table offsets and counts, engine/cooker versions, compression metadata,
// and a trailing unknown region carried verbatim for round-trip.
type Summary struct {
	Signature       uint32
	Version         uint16
	LicenseeVersion uint16
	HeaderSize      uint32
	FolderName      string
	PackageFlags    uint32
	NameCount       uint32
	NameOffset      uint32
	ExportCount     uint32
	ExportOffset    uint32
	ImportCount     uint32
	ImportOffset    uint32
	DependsOffset   uint32
	SerialOffset    uint32
	Unknown2        uint32
	Unknown3        uint32
	Unknown4        uint32
	GUID            GUID
	Generations     []GenerationInfo
	EngineVersion   uint32
	CookerVersion   uint32

	CompressionFlags    uint32
	CompressedChunks    []CompressedChunk
	UnknownTrailer      []byte

	// headerSizeOffset and nameCountOffset record where HeaderSize and
	// NameCount live in the stream, used by edit operations that must
	// patch them back in place without re-walking the whole summary.
	headerSizeOffset int64
	nameCountOffset  int64
}

// packageFlagCompressed marks a package as compressed in PackageFlags.
const packageFlagCompressed uint32 = 0x02000000

// IsCompressed reports whether the summary declares compression, either via
// the package-flags bit or a nonzero compressed-chunk list.
func (s *Summary) IsCompressed() bool {
	return s.PackageFlags&packageFlagCompressed != 0 || len(s.CompressedChunks) > 0
}

// IsFullyCompressed reports whether the whole file (not just declared
// chunks) is a compressed envelope, signaled by an unexpected version field.
func (s *Summary) IsFullyCompressed() bool {
	return s.Version != ExpectedVersion
}

// ReadSummary parses the fixed-layout header starting at the stream's
// current position.
func ReadSummary(bs *ByteStream) (*Summary, error) {
	s := &Summary{}

	var err error

	if s.Signature, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary signature: %w", err)
	}
	if s.Signature != PackageSignature {
		return nil, fmt.Errorf("%w: got %#x", ErrBadSignature, s.Signature)
	}

	if s.Version, err = bs.ReadU16(); err != nil {
		return nil, fmt.Errorf("summary version: %w", err)
	}
	if s.LicenseeVersion, err = bs.ReadU16(); err != nil {
		return nil, fmt.Errorf("summary licensee version: %w", err)
	}

	s.headerSizeOffset = bs.Tell()
	if s.HeaderSize, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary header size: %w", err)
	}

	if s.FolderName, err = bs.ReadLengthPrefixedString(); err != nil {
		return nil, fmt.Errorf("summary folder name: %w", err)
	}

	if s.PackageFlags, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary package flags: %w", err)
	}

	s.nameCountOffset = bs.Tell()
	if s.NameCount, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary name count: %w", err)
	}
	if s.NameOffset, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary name offset: %w", err)
	}
	if s.ExportCount, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary export count: %w", err)
	}
	if s.ExportOffset, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary export offset: %w", err)
	}
	if s.ImportCount, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary import count: %w", err)
	}
	if s.ImportOffset, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary import offset: %w", err)
	}
	if s.DependsOffset, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary depends offset: %w", err)
	}
	if s.SerialOffset, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary serial offset: %w", err)
	}
	if s.Unknown2, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary unknown2: %w", err)
	}
	if s.Unknown3, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary unknown3: %w", err)
	}
	if s.Unknown4, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary unknown4: %w", err)
	}
	if s.GUID, err = bs.ReadGUID(); err != nil {
		return nil, fmt.Errorf("summary guid: %w", err)
	}

	genCount, err := bs.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("summary generations count: %w", err)
	}

	s.Generations = make([]GenerationInfo, genCount)
	for i := range s.Generations {
		ec, err := bs.ReadI32()
		if err != nil {
			return nil, fmt.Errorf("generation %d export count: %w", i, err)
		}

		nc, err := bs.ReadI32()
		if err != nil {
			return nil, fmt.Errorf("generation %d name count: %w", i, err)
		}

		noc, err := bs.ReadI32()
		if err != nil {
			return nil, fmt.Errorf("generation %d net object count: %w", i, err)
		}

		s.Generations[i] = GenerationInfo{ExportCount: ec, NameCount: nc, NetObjectCount: noc}
	}

	if s.EngineVersion, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary engine version: %w", err)
	}
	if s.CookerVersion, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary cooker version: %w", err)
	}
	if s.CompressionFlags, err = bs.ReadU32(); err != nil {
		return nil, fmt.Errorf("summary compression flags: %w", err)
	}

	numChunks, err := bs.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("summary compressed chunk count: %w", err)
	}

	s.CompressedChunks = make([]CompressedChunk, numChunks)
	for i := range s.CompressedChunks {
		uo, err := bs.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("chunk %d uncompressed offset: %w", i, err)
		}

		us, err := bs.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("chunk %d uncompressed size: %w", i, err)
		}

		co, err := bs.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("chunk %d compressed offset: %w", i, err)
		}

		cs, err := bs.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("chunk %d compressed size: %w", i, err)
		}

		s.CompressedChunks[i] = CompressedChunk{
			UncompressedOffset: uo,
			UncompressedSize:   us,
			CompressedOffset:   co,
			CompressedSize:     cs,
		}
	}

	// The unknown trailer spans from here to name_offset (uncompressed
	// packages) or the first chunk's compressed_offset (compressed
	// packages); its length is derived positionally, never stored.
	trailerEnd := int64(s.NameOffset)
	if len(s.CompressedChunks) > 0 {
		trailerEnd = int64(s.CompressedChunks[0].CompressedOffset)
	}

	trailerLen := trailerEnd - bs.Tell()
	if trailerLen < 0 {
		trailerLen = 0
	}

	s.UnknownTrailer, err = bs.ReadBytes(int(trailerLen))
	if err != nil {
		return nil, fmt.Errorf("summary unknown trailer: %w", err)
	}

	return s, nil
}

// Serialize writes the summary back out in declared field order, producing
// the same byte layout ReadSummary consumes.
func (s *Summary) Serialize(bs *ByteStream) error {
	write := func(v uint32) error { return appendU32(bs, v) }

	if err := write(s.Signature); err != nil {
		return err
	}
	if err := appendU16(bs, s.Version); err != nil {
		return err
	}
	if err := appendU16(bs, s.LicenseeVersion); err != nil {
		return err
	}
	if err := write(s.HeaderSize); err != nil {
		return err
	}
	if err := appendLengthPrefixedString(bs, s.FolderName); err != nil {
		return err
	}
	if err := write(s.PackageFlags); err != nil {
		return err
	}
	if err := write(s.NameCount); err != nil {
		return err
	}
	if err := write(s.NameOffset); err != nil {
		return err
	}
	if err := write(s.ExportCount); err != nil {
		return err
	}
	if err := write(s.ExportOffset); err != nil {
		return err
	}
	if err := write(s.ImportCount); err != nil {
		return err
	}
	if err := write(s.ImportOffset); err != nil {
		return err
	}
	if err := write(s.DependsOffset); err != nil {
		return err
	}
	if err := write(s.SerialOffset); err != nil {
		return err
	}
	if err := write(s.Unknown2); err != nil {
		return err
	}
	if err := write(s.Unknown3); err != nil {
		return err
	}
	if err := write(s.Unknown4); err != nil {
		return err
	}
	if err := write(s.GUID.A); err != nil {
		return err
	}
	if err := write(s.GUID.B); err != nil {
		return err
	}
	if err := write(s.GUID.C); err != nil {
		return err
	}
	if err := write(s.GUID.D); err != nil {
		return err
	}

	if err := write(uint32(len(s.Generations))); err != nil {
		return err
	}
	for _, g := range s.Generations {
		if err := appendI32(bs, g.ExportCount); err != nil {
			return err
		}
		if err := appendI32(bs, g.NameCount); err != nil {
			return err
		}
		if err := appendI32(bs, g.NetObjectCount); err != nil {
			return err
		}
	}

	if err := write(s.EngineVersion); err != nil {
		return err
	}
	if err := write(s.CookerVersion); err != nil {
		return err
	}
	if err := write(s.CompressionFlags); err != nil {
		return err
	}

	if err := write(uint32(len(s.CompressedChunks))); err != nil {
		return err
	}
	for _, c := range s.CompressedChunks {
		if err := write(c.UncompressedOffset); err != nil {
			return err
		}
		if err := write(c.UncompressedSize); err != nil {
			return err
		}
		if err := write(c.CompressedOffset); err != nil {
			return err
		}
		if err := write(c.CompressedSize); err != nil {
			return err
		}
	}

	bs.Append(s.UnknownTrailer)

	return nil
}

// ClearCompression resets compression metadata on a summary that has just
// been decompressed in memory, matching the chunked-decode contract: the
// caller must re-serialize this summary as the new stream prefix before
// appending the decompressed chunk data.
func (s *Summary) ClearCompression() {
	s.CompressionFlags = 0
	s.PackageFlags &^= packageFlagCompressed
	s.CompressedChunks = nil
}

func appendU32(bs *ByteStream, v uint32) error {
	b := []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	bs.Append(b)

	return nil
}

func appendU16(bs *ByteStream, v uint16) error {
	bs.Append([]byte{byte(v), byte(v >> 8)})
	return nil
}

func appendI32(bs *ByteStream, v int32) error {
	return appendU32(bs, uint32(v))
}

func appendLengthPrefixedString(bs *ByteStream, s string) error {
	if s == "" {
		return appendU32(bs, 0)
	}

	if err := appendI32(bs, int32(len(s)+1)); err != nil {
		return err
	}

	bs.Append([]byte(s))
	bs.Append([]byte{0})

	return nil
}
