// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import (
	"fmt"
	"strings"
)

// DumpSummary renders the package summary as a human-readable block,
// the same trace-style output the object deserializer produces per export.
func (p *Package) DumpSummary() string {
	s := p.summary

	var b strings.Builder
	fmt.Fprintf(&b, "Signature:       0x%08X\n", s.Signature)
	fmt.Fprintf(&b, "Version:         %d\n", s.Version)
	fmt.Fprintf(&b, "LicenseeVersion: %d\n", s.LicenseeVersion)
	fmt.Fprintf(&b, "HeaderSize:      %d\n", s.HeaderSize)
	fmt.Fprintf(&b, "FolderName:      %s\n", s.FolderName)
	fmt.Fprintf(&b, "PackageFlags:    0x%08X\n", s.PackageFlags)
	fmt.Fprintf(&b, "NameCount:       %d (offset %d)\n", s.NameCount, s.NameOffset)
	fmt.Fprintf(&b, "ExportCount:     %d (offset %d)\n", s.ExportCount, s.ExportOffset)
	fmt.Fprintf(&b, "ImportCount:     %d (offset %d)\n", s.ImportCount, s.ImportOffset)
	fmt.Fprintf(&b, "DependsOffset:   %d\n", s.DependsOffset)
	fmt.Fprintf(&b, "SerialOffset:    %d\n", s.SerialOffset)
	fmt.Fprintf(&b, "Compressed:      %v\n", s.IsCompressed())

	return b.String()
}

// DumpNames renders the name table, one entry per line. In verbose mode
// each line also shows the entry's byte offset and flag words.
func (p *Package) DumpNames(verbose bool) string {
	var b strings.Builder

	for i, n := range p.tables.Names {
		if verbose {
			fmt.Fprintf(&b, "%5d  off=%-8d flags=0x%08X%08X  %s\n", i, n.EntryOffset, n.FlagsHigh, n.FlagsLow, n.Name)
			continue
		}

		fmt.Fprintf(&b, "%5d  %s\n", i, n.Name)
	}

	return b.String()
}

// DumpImports renders the import table, one entry per line.
func (p *Package) DumpImports(verbose bool) string {
	var b strings.Builder

	for i, imp := range p.tables.Imports {
		if i == 0 {
			continue
		}

		if verbose {
			fmt.Fprintf(&b, "%5d  off=%-8d owner=%s  %s (%s)\n", i, imp.EntryOffset, p.tables.ResolveFullName(imp.OwnerRef), imp.FullName, imp.Type)
			continue
		}

		fmt.Fprintf(&b, "%5d  %s (%s)\n", i, imp.FullName, imp.Type)
	}

	return b.String()
}

// DumpExports renders the export table, one entry per line.
func (p *Package) DumpExports(verbose bool) string {
	var b strings.Builder

	for i, exp := range p.tables.Exports {
		if i == 0 {
			continue
		}

		if verbose {
			fmt.Fprintf(&b, "%5d  off=%-8d size=%-8d owner=%s  %s (%s)\n", i, exp.SerialOffset, exp.SerialSize, p.tables.ResolveFullName(exp.OwnerRef), exp.FullName, exp.Type)
			continue
		}

		fmt.Fprintf(&b, "%5d  %s (%s)\n", i, exp.FullName, exp.Type)
	}

	return b.String()
}
