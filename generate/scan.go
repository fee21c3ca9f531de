package generate

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/teranos/extfn/errors"
	"github.com/teranos/extfn/extfn"
)

// Template is one annotated function found in a source file.
type Template struct {
	Name string // function name
	extfn.Input
}

// ScanFile parses src and returns the file with every function carrying an
// //extfn:target directive, in source order. Positions in the returned
// templates refer to path.
func ScanFile(fset *token.FileSet, path string, src []byte) (*ast.File, []Template, error) {
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	var templates []Template
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Doc == nil {
			continue
		}

		var directive *ast.Comment
		for _, c := range fn.Doc.List {
			if !isTargetDirective(c.Text) {
				continue
			}
			if directive != nil {
				return nil, nil, errors.WithHint(
					errors.Newf("%s: function %s has more than one %s directive",
						fset.Position(c.Pos()), fn.Name.Name, extfn.TargetDirective),
					"expand the function once per target by copying it")
			}
			directive = c
		}
		if directive == nil {
			continue
		}

		args := strings.TrimPrefix(directive.Text, extfn.TargetDirective)
		lead := len(args) - len(strings.TrimLeft(args, " \t"))
		argsPos := fset.Position(directive.Pos())
		argsPos.Offset += len(extfn.TargetDirective) + lead
		argsPos.Column += len(extfn.TargetDirective) + lead

		start := fset.Position(fn.Doc.Pos())
		end := fset.Position(fn.End())

		templates = append(templates, Template{
			Name: fn.Name.Name,
			Input: extfn.Input{
				Target:      strings.TrimSpace(args),
				TargetPos:   argsPos,
				Function:    string(src[start.Offset:end.Offset]),
				FunctionPos: start,
			},
		})
	}

	return file, templates, nil
}

// isTargetDirective matches "//extfn:target" followed by nothing or blank.
func isTargetDirective(text string) bool {
	rest, ok := strings.CutPrefix(text, extfn.TargetDirective)
	return ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t')
}

// HasTemplates is a cheap pre-filter before parsing a file.
func HasTemplates(src []byte) bool {
	return bytes.Contains(src, []byte(extfn.TargetDirective))
}
