package extfn

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"strings"
)

// gofmt's printer settings
var printConfig = printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}

// render prints a node the way gofmt would. Nodes come from our own parse
// of well-formed input, so printing cannot fail.
func render(fset *token.FileSet, node interface{}) string {
	var buf bytes.Buffer
	if err := printConfig.Fprint(&buf, fset, node); err != nil {
		return ""
	}
	return buf.String()
}

// renderWithComments prints node together with the comments lying inside it.
func renderWithComments(fset *token.FileSet, file *ast.File, node ast.Node) string {
	var inside []*ast.CommentGroup
	for _, cg := range file.Comments {
		if cg.Pos() >= node.Pos() && cg.End() <= node.End() {
			inside = append(inside, cg)
		}
	}
	return render(fset, &printer.CommentedNode{Node: node, Comments: inside})
}

// tokenInfo is one scanned token with its byte offset in the scanned text.
type tokenInfo struct {
	offset int
	tok    token.Token
	lit    string
}

// typeParamList renders "[A, B any, C comparable]" or "" when empty.
func typeParamList(params []TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	groups := make([]string, len(params))
	for i, p := range params {
		groups[i] = strings.Join(p.Names, ", ") + " " + p.Constraint
	}
	return "[" + strings.Join(groups, ", ") + "]"
}

// typeArgList renders the parameter names only: "[A, B, C]".
func typeArgList(params []TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	var names []string
	for _, p := range params {
		names = append(names, p.Names...)
	}
	return "[" + strings.Join(names, ", ") + "]"
}
