// Package emitter holds what every target emitter shares: the output plan,
// atomic file writing, the selection of output families and doc comment
// formatting.
package emitter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Only selects which output families an emitter renders.
type Only string

const (
	OnlyAll   Only = ""
	OnlyTypes Only = "types"
	OnlyRest  Only = "rest"
)

// Types reports whether type definitions are rendered.
func (o Only) Types() bool { return o == OnlyAll || o == OnlyTypes }

// Rest reports whether method bindings are rendered.
func (o Only) Rest() bool { return o == OnlyAll || o == OnlyRest }

// ParseOnly validates an --only value.
func ParseOnly(s string) (Only, error) {
	switch o := Only(strings.ToLower(strings.TrimSpace(s))); o {
	case OnlyAll, OnlyTypes, OnlyRest:
		return o, nil
	default:
		return "", fmt.Errorf("unsupported output family %q (expected types or rest)", s)
	}
}

// Options controls output placement and selection for every target.
type Options struct {
	OutDir          string // required; target directory
	PackageName     string // crate or Go package name, target specific default
	SplitByResource bool   // one bindings file per resource tag
	Only            Only
	Force           bool // overwrite a non-empty directory
	DryRun          bool // don't write, only plan
	Verbose         bool
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and the resolved package name.
type Result struct {
	Language    string
	PackageName string
	Planned     []PlannedFile
}

// Plan lists files in sorted relative-path order.
func Plan(files map[string][]byte) []PlannedFile {
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: filepath.ToSlash(rel), Size: len(files[rel]), Mode: 0o644})
	}
	return planned
}

// Finish plans files and writes them unless opts.DryRun is set. A dry run
// still validates the output directory.
func Finish(lang, packageName string, files map[string][]byte, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("%s emitter: OutDir is required", lang)
	}
	planned := Plan(files)
	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	if err := validateOutputDirectory(abs, opts.Force); err != nil {
		return nil, err
	}
	if !opts.DryRun {
		if err := WriteFiles(abs, files); err != nil {
			return nil, err
		}
	}
	return &Result{Language: lang, PackageName: packageName, Planned: planned}, nil
}

// WriteFiles writes every file under outDir atomically, in sorted order.
func WriteFiles(outDir string, files map[string][]byte) error {
	for _, pf := range Plan(files) {
		if err := writeFileAtomic(outDir, pf.RelPath, files[pf.RelPath]); err != nil {
			return fmt.Errorf("write file %s: %w", pf.RelPath, err)
		}
	}
	return nil
}

// validateOutputDirectory checks if the output directory is valid for writing.
func validateOutputDirectory(absPath string, force bool) error {
	stat, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access output directory %q: %w", absPath, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("output path %q is not a directory", absPath)
	}
	if force {
		return nil
	}
	entries, err := os.ReadDir(absPath)
	if err != nil {
		return fmt.Errorf("cannot read output directory %q: %w", absPath, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("output directory %q is not empty (use --force to overwrite)", absPath)
	}
	return nil
}

// writeFileAtomic writes a file via temporary file + rename.
func writeFileAtomic(baseDir, relPath string, content []byte) error {
	fullPath := filepath.Join(baseDir, filepath.FromSlash(relPath))
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure target directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-restgen-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	success := false
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
		}
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return fmt.Errorf("write content to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		return fmt.Errorf("set file permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, fullPath); err != nil {
		return fmt.Errorf("atomic rename %s to %s: %w", tmpPath, fullPath, err)
	}
	success = true
	return nil
}
