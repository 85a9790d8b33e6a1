// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

// Command upkdump is a thin front end over the upk package: flag parsing
// and direct calls into the core, no business logic of its own.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/woozymasta/upk"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("upkdump", flag.ContinueOnError)

	verbose := fs.Bool("verbose", false, "enable verbose output")
	logLevel := fs.Int("log-level", int(upk.LogLevelWarn), "log level (0=error .. 4=all)")
	backup := fs.Bool("backup", false, "copy the input package to <package>.bak beside it before loading (not into -output-dir)")
	inputDir := fs.String("input-dir", "", "directory to resolve the package path against")
	outputDir := fs.String("output-dir", "", "directory to write edited output to")
	decompress := fs.Bool("decompress", false, "save the uncompressed stream alongside the input")
	tables := fs.Bool("tables", false, "dump name/import/export tables")
	entry := fs.String("entry", "", "look up one export/import by full name")
	offset := fs.Int64("offset", -1, "look up one export by file byte offset")
	serialized := fs.Bool("serialized", false, "dump the serialized payload bytes of --entry/--offset")
	extract := fs.String("extract", "", "extract exports whose full name matches this pattern (glob)")
	compare := fs.String("compare", "", "compare against another package file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: upkdump [flags] <package>")
		return 2
	}

	path := fs.Arg(0)
	if *inputDir != "" {
		path = *inputDir + string(os.PathSeparator) + path
	}

	logger := &upk.LeveledLogger{Level: upk.LogLevel(*logLevel)}
	if *verbose && logger.Level < upk.LogLevelDebug {
		logger.Level = upk.LogLevelDebug
	}

	if *backup {
		if err := copyFile(path, path+".bak"); err != nil {
			fmt.Fprintf(os.Stderr, "backup: %v\n", err)
			return 1
		}
	}

	p, err := upk.OpenWithOptions(path, upk.ReaderOptions{Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		return 1
	}

	if *decompress {
		outPath := path + ".decompressed"
		if *outputDir != "" {
			outPath = *outputDir + string(os.PathSeparator) + p.Name() + ".decompressed"
		}

		if err := os.WriteFile(outPath, p.RawBytes(), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "decompress: %v\n", err)
			return 1
		}
	}

	if *tables {
		fmt.Print(p.DumpSummary())
		fmt.Print(p.DumpNames(*verbose))
		fmt.Print(p.DumpImports(*verbose))
		fmt.Print(p.DumpExports(*verbose))
	}

	if *entry != "" {
		if err := dumpEntry(p, upk.FindQuery{FullName: *entry}, *serialized); err != nil {
			fmt.Fprintf(os.Stderr, "entry: %v\n", err)
			return 1
		}
	}

	if *offset >= 0 {
		off := *offset
		if err := dumpEntry(p, upk.FindQuery{Offset: &off}, *serialized); err != nil {
			fmt.Fprintf(os.Stderr, "offset: %v\n", err)
			return 1
		}
	}

	if *extract != "" {
		if err := extractMatches(p, *extract, *outputDir); err != nil {
			fmt.Fprintf(os.Stderr, "extract: %v\n", err)
			return 1
		}
	}

	if *compare != "" {
		other, err := upk.OpenWithOptions(*compare, upk.ReaderOptions{Logger: logger})
		if err != nil {
			fmt.Fprintf(os.Stderr, "compare: %v\n", err)
			return 1
		}

		comparePackages(p, other)
	}

	return 0
}

func dumpEntry(p *upk.Package, q upk.FindQuery, serialized bool) error {
	res, found := p.Find(q)
	if !found {
		return fmt.Errorf("not found")
	}

	if !res.IsExport {
		imp := p.GetImportEntry(res.Index)
		fmt.Printf("import %d: %s (%s)\n", res.Index, imp.FullName, imp.Type)
		return nil
	}

	exp := p.GetExportEntry(res.Index)
	fmt.Printf("export %d: %s (%s) size=%d offset=%d\n", res.Index, exp.FullName, exp.Type, exp.SerialSize, exp.SerialOffset)

	if serialized {
		data, err := p.GetExportData(res.Index)
		if err != nil {
			return err
		}

		fmt.Printf("%d bytes\n", len(data))
		fmt.Printf("% x\n", data)
		return nil
	}

	obj, err := p.Object(res.Index)
	if err != nil {
		return err
	}

	fmt.Print(obj.Trace())

	return nil
}

func extractMatches(p *upk.Package, pattern, outputDir string) error {
	matcher, err := upk.NewNameMatcher(pattern)
	if err != nil {
		return err
	}

	count := 0

	for i := 1; i < len(p.Tables().Exports); i++ {
		exp := p.Tables().Exports[i]

		if !matcher.Match(exp.FullName) {
			continue
		}

		data, err := p.GetExportData(i)
		if err != nil {
			return err
		}

		outPath := exp.FullName + ".bin"
		if outputDir != "" {
			outPath = outputDir + string(os.PathSeparator) + strconv.Itoa(i) + ".bin"
		}

		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return err
		}

		count++
	}

	fmt.Printf("extracted %d export(s)\n", count)

	return nil
}

func comparePackages(a, b *upk.Package) {
	aExports := a.Tables().Exports
	bExports := b.Tables().Exports

	fmt.Printf("%s: %d exports, %s: %d exports\n", a.Name(), len(aExports)-1, b.Name(), len(bExports)-1)

	seen := make(map[string]bool, len(aExports))
	for i := 1; i < len(aExports); i++ {
		seen[aExports[i].FullName] = true
	}

	for i := 1; i < len(bExports); i++ {
		if !seen[bExports[i].FullName] {
			fmt.Printf("only in %s: %s\n", b.Name(), bExports[i].FullName)
		}
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, 0o644)
}
