// Package csemitter writes generated interfaces as C# source files.
package csemitter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mark3labs/refitgen/internal/config"
	"github.com/mark3labs/refitgen/internal/generator"
)

// DefaultUsings are imported by every generated file.
var DefaultUsings = []string{
	"Refit",
	"System",
	"System.Collections.Generic",
	"System.Net.Http",
	"System.Threading",
	"System.Threading.Tasks",
}

// ErrFileExists is returned when a target file holds different content and
// Force is not set.
var ErrFileExists = errors.New("output file exists")

// Options controls how units are rendered and written.
type Options struct {
	OutDir        string // required unless DryRun; target directory
	Filename      string // single-file output name; defaults to Output.cs
	Namespace     string // defaults to GeneratedCode
	MultipleFiles bool   // one file per interface, named after it
	// AutoGeneratedHeader prefixes each file with the <auto-generated> banner.
	AutoGeneratedHeader  bool
	AdditionalNamespaces []string
	ExcludeNamespaces    []string
	Version              string // tool version shown in the banner
	Force                bool   // overwrite files whose content differs
	DryRun               bool   // plan only
}

// OptionsFromSettings maps generation settings onto emitter options.
func OptionsFromSettings(s config.Settings) Options {
	return Options{
		OutDir:               s.OutputFolder,
		Filename:             s.OutputFilename,
		Namespace:            s.Namespace,
		MultipleFiles:        s.GenerateMultipleFiles,
		AutoGeneratedHeader:  s.AddGeneratedHeader,
		AdditionalNamespaces: s.AdditionalNamespaces,
		ExcludeNamespaces:    s.ExcludeNamespaces,
	}
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath   string
	Size      int
	Mode      os.FileMode
	Unchanged bool // the file already exists with identical content
}

// Result lists the planned files in deterministic order.
type Result struct {
	OutDir  string
	Planned []PlannedFile
}

// Render returns the file contents keyed by slash-separated relative path.
func Render(units []generator.GeneratedUnit, opts Options) (map[string][]byte, error) {
	if len(units) == 0 {
		return nil, errors.New("csemitter: no interfaces to write")
	}
	files := make(map[string][]byte)
	if opts.MultipleFiles {
		for _, u := range units {
			name := u.Name + ".cs"
			if _, dup := files[name]; dup {
				return nil, errors.Newf("csemitter: two interfaces named %s", u.Name)
			}
			files[name] = renderFile([]generator.GeneratedUnit{u}, opts)
		}
		return files, nil
	}
	name := strings.TrimSpace(opts.Filename)
	if name == "" {
		name = "Output.cs"
	}
	files[filepath.ToSlash(name)] = renderFile(units, opts)
	return files, nil
}

// Emit renders units and, unless DryRun is set, writes them below OutDir.
func Emit(ctx context.Context, units []generator.GeneratedUnit, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" && !opts.DryRun {
		return nil, errors.New("csemitter: OutDir is required")
	}
	files, err := Render(units, opts)
	if err != nil {
		return nil, err
	}

	abs := opts.OutDir
	if abs != "" {
		if abs, err = filepath.Abs(opts.OutDir); err != nil {
			return nil, errors.Wrap(err, "resolve out dir")
		}
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		pf := PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644}
		if abs != "" {
			existing, rerr := os.ReadFile(filepath.Join(abs, filepath.FromSlash(rel)))
			switch {
			case rerr == nil && bytes.Equal(existing, files[rel]):
				pf.Unchanged = true
			case rerr == nil && !opts.Force && !opts.DryRun:
				return nil, errors.WithHint(
					errors.Wrapf(ErrFileExists, "%s", filepath.Join(abs, rel)),
					"use --force to overwrite")
			}
		}
		planned = append(planned, pf)
	}

	if !opts.DryRun {
		if err := writeFiles(ctx, abs, files, planned); err != nil {
			return nil, err
		}
	}
	return &Result{OutDir: abs, Planned: planned}, nil
}

func writeFiles(ctx context.Context, outDir string, files map[string][]byte, planned []PlannedFile) error {
	for _, pf := range planned {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pf.Unchanged {
			continue
		}
		p := filepath.Join(outDir, filepath.FromSlash(pf.RelPath))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return errors.Wrap(err, "mkdir")
		}
		// atomic write via temp file + rename
		tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".tmp-*")
		if err != nil {
			return errors.Wrapf(err, "create temp for %s", pf.RelPath)
		}
		if _, err := tmp.Write(files[pf.RelPath]); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return errors.Wrapf(err, "write temp %s", pf.RelPath)
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmp.Name())
			return errors.Wrapf(err, "close temp %s", pf.RelPath)
		}
		if err := os.Chmod(tmp.Name(), pf.Mode); err != nil {
			_ = os.Remove(tmp.Name())
			return errors.Wrapf(err, "chmod %s", pf.RelPath)
		}
		if err := os.Rename(tmp.Name(), p); err != nil {
			_ = os.Remove(tmp.Name())
			return errors.Wrapf(err, "rename %s", pf.RelPath)
		}
	}
	return nil
}
