// Package generate is the go generate front end of extfn: it finds template
// functions in Go files, expands them and writes the generated files.
package generate

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/teranos/extfn/config"
	"github.com/teranos/extfn/errors"
	"github.com/teranos/extfn/extfn"
	"github.com/teranos/extfn/logger"
)

// Options controls output file naming and content.
type Options struct {
	Suffix string // replaces ".go" of the template file name
	Header string // first line of every generated file
	Dir    string // working directory for package patterns; "" is the current one

	Logger *zap.SugaredLogger
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Suffix: cfg.Generate.Suffix,
		Header: cfg.Generate.Header,
	}
}

func (o Options) withDefaults() Options {
	if o.Suffix == "" {
		o.Suffix = config.DefaultSuffix
	}
	if o.Header == "" {
		o.Header = config.DefaultHeader
	}
	if o.Logger == nil {
		o.Logger = logger.ComponentLogger("generate")
	}
	return o
}

// Output is one generated file.
type Output struct {
	Template     string   // template file
	Path         string   // generated file
	Capabilities []string // template functions expanded, in source order
	Content      []byte
}

// OutputPath returns the generated file name for a template file.
func OutputPath(template, suffix string) string {
	return strings.TrimSuffix(template, ".go") + suffix
}

// GenerateFile expands every template in one file. It returns nil when the
// file has no templates.
func GenerateFile(path string, src []byte, opts Options) (*Output, error) {
	opts = opts.withDefaults()

	if !HasTemplates(src) {
		return nil, nil
	}

	fset := token.NewFileSet()
	file, templates, err := ScanFile(fset, path, src)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n\npackage %s\n\n", opts.Header, file.Name.Name)
	writeImports(&buf, fset, file)

	out := &Output{
		Template: path,
		Path:     OutputPath(path, opts.Suffix),
	}

	for _, tmpl := range templates {
		code, err := extfn.Expand(tmpl.Input)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to expand %s", tmpl.Name)
		}
		buf.WriteString("\n")
		buf.Write(code)

		out.Capabilities = append(out.Capabilities, tmpl.Name)
		opts.Logger.Debugw("Expanded template",
			logger.FieldFile, path,
			logger.FieldFunction, tmpl.Name,
			logger.FieldTarget, tmpl.Target)
	}

	content, err := finish(out.Path, buf.Bytes())
	if err != nil {
		return nil, err
	}
	out.Content = content
	return out, nil
}

// writeImports copies the template file's import declarations. Unused ones
// are pruned once the generated code is in place.
func writeImports(buf *bytes.Buffer, fset *token.FileSet, file *ast.File) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.IMPORT {
			continue
		}
		// doc comments of the import block stay behind
		gen.Doc = nil
		if err := format.Node(buf, fset, gen); err != nil {
			continue
		}
		buf.WriteString("\n")
	}
}

// finish prunes unused imports and gofmts the assembled file.
func finish(path string, src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, errors.Wrapf(err, "generated file %s does not parse", path)
	}

	pruneImports(fset, file)
	ast.SortImports(fset, file)

	var out bytes.Buffer
	if err := format.Node(&out, fset, file); err != nil {
		return nil, errors.Wrapf(err, "failed to format %s", path)
	}
	return out.Bytes(), nil
}

// GeneratePackages resolves package patterns and generates every template
// file they contain, including files excluded by build constraints.
// Outputs are sorted by path.
func GeneratePackages(patterns []string, opts Options) ([]*Output, error) {
	outputs, _, err := generatePackages(patterns, opts.withDefaults())
	return outputs, err
}

// generatePackages also returns the generated files already present in the
// packages, sorted.
func generatePackages(patterns []string, opts Options) ([]*Output, []string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
		Dir:  opts.Dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to load packages %v", patterns)
	}
	if len(pkgs) == 0 {
		return nil, nil, errors.Newf("no packages found for %v", patterns)
	}

	var outputs []*Output
	var existing []string
	seen := make(map[string]bool)
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			// generated files may be stale or missing; only report
			opts.Logger.Warnw("Package load error",
				logger.FieldPattern, pkg.PkgPath,
				logger.FieldError, e.Msg)
		}

		files := append(append([]string(nil), pkg.GoFiles...), pkg.IgnoredFiles...)
		for _, path := range files {
			if seen[path] || strings.HasSuffix(path, "_test.go") {
				continue
			}
			seen[path] = true
			if strings.HasSuffix(path, opts.Suffix) {
				existing = append(existing, path)
				continue
			}

			out, err := generatePath(path, opts)
			if err != nil {
				return nil, nil, err
			}
			if out != nil {
				outputs = append(outputs, out)
			}
		}
	}

	sort.Slice(outputs, func(i, j int) bool {
		return outputs[i].Path < outputs[j].Path
	})
	sort.Strings(existing)

	opts.Logger.Infow("Generated capabilities",
		logger.FieldPattern, strings.Join(patterns, " "),
		logger.FieldCount, len(outputs))

	return outputs, existing, nil
}

// GenerateDir generates every template file directly inside dir, without
// loading packages. Outputs are sorted by path.
func GenerateDir(dir string, opts Options) ([]*Output, error) {
	opts = opts.withDefaults()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var outputs []*Output
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, opts.Suffix) || strings.HasSuffix(name, "_test.go") {
			continue
		}
		out, err := generatePath(filepath.Join(dir, name), opts)
		if err != nil {
			return nil, err
		}
		if out != nil {
			outputs = append(outputs, out)
		}
	}
	// ReadDir returns entries sorted by name, and OutputPath keeps that order
	return outputs, nil
}

func generatePath(path string, opts Options) (*Output, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return GenerateFile(path, src, opts)
}

// WriteOutputs writes generated files whose content changed and returns
// the paths written.
func WriteOutputs(outputs []*Output) ([]string, error) {
	var written []string
	for _, out := range outputs {
		existing, err := os.ReadFile(out.Path)
		if err == nil && bytes.Equal(existing, out.Content) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(out.Path), 0755); err != nil {
			return written, errors.Wrapf(err, "failed to create directory for %s", out.Path)
		}
		if err := os.WriteFile(out.Path, out.Content, 0644); err != nil {
			return written, errors.Wrapf(err, "failed to write %s", out.Path)
		}
		written = append(written, out.Path)
	}
	return written, nil
}
