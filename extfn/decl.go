package extfn

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/teranos/extfn/extfn/util"
)

// Visibility of a declaration. Go encodes it in the case of the name.
type Visibility int

const (
	VisibilityExported Visibility = iota
	VisibilityUnexported
	// VisibilityInherited marks the implementation copy: reachable only as a
	// method of the capability, never as a free function.
	VisibilityInherited
)

// ReceiverKind is the receiver form of a template function.
type ReceiverKind int

const (
	ReceiverNone    ReceiverKind = iota // func Name()
	ReceiverValue                       // func (s Self) Name()
	ReceiverPointer                     // func (s *Self) Name()
)

// Directives understood inside a template function's doc comment.
const (
	DirectivePrefix = "//extfn:"
	TargetDirective = DirectivePrefix + "target"
	AsyncDirective  = DirectivePrefix + "async"
)

// Param is one parameter of the template signature, flattened: grouped
// names ("a, b int") become separate params.
type Param struct {
	Name     string // "" when unnamed
	Type     string
	Variadic bool
}

// Function is a parsed template function declaration.
type Function struct {
	Name       string
	Visibility Visibility

	// Attrs are the doc comment lines and directives in source order,
	// without the //extfn: directives.
	Attrs []string

	Async    bool
	Receiver ReceiverKind
	RecvName string // "" when the receiver is unnamed

	Pos token.Position

	fset *token.FileSet
	file *ast.File
	decl *ast.FuncDecl
}

const (
	functionPrefix = "package p\n"
	hintFunction   = "write the template as a method on the Self placeholder: func (s Self) Name() { ... }"
)

// ParseFunction parses the source of exactly one function declaration,
// doc comment included. pos is the position of the first byte of src.
func ParseFunction(src string, pos token.Position) (*Function, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", functionPrefix+src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		at := pos
		msg := err.Error()
		if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
			at = shiftLines(pos, list[0].Pos)
			msg = list[0].Msg
		}
		return nil, functionError(at, hintFunction, "not a function declaration: %s", msg)
	}

	if len(file.Imports) > 0 || len(file.Decls) != 1 {
		return nil, functionError(pos, hintFunction, "expected exactly one function declaration, found %d declarations", len(file.Decls))
	}
	decl, ok := file.Decls[0].(*ast.FuncDecl)
	if !ok {
		return nil, functionError(pos, hintFunction, "expected a function declaration")
	}
	declPos := shiftLines(pos, fset.Position(decl.Pos()))
	if decl.Body == nil {
		return nil, functionError(declPos, "", "function %s has no body", decl.Name.Name)
	}
	if !validCapabilityName(decl.Name.Name) {
		return nil, functionError(declPos, "name the template with a letter: func (s Self) Len() int",
			"function name %s does not give a capability name", decl.Name.Name)
	}
	if decl.Type.TypeParams != nil {
		return nil, functionError(declPos, "declare type parameters in the directive: //extfn:target [T any] Target[T]",
			"function %s declares type parameters; methods cannot", decl.Name.Name)
	}

	fn := &Function{
		Name:       decl.Name.Name,
		Visibility: VisibilityUnexported,
		Pos:        declPos,
		fset:       fset,
		file:       file,
		decl:       decl,
	}
	if decl.Name.IsExported() {
		fn.Visibility = VisibilityExported
	}

	if err := fn.parseReceiver(); err != nil {
		return nil, err
	}

	if decl.Doc != nil {
		for _, c := range decl.Doc.List {
			switch {
			case strings.TrimSpace(c.Text) == AsyncDirective:
				fn.Async = true
			case strings.HasPrefix(c.Text, DirectivePrefix):
				// target directives are consumed by the caller
			default:
				fn.Attrs = append(fn.Attrs, c.Text)
			}
		}
		// the blank line separating prose from directives
		for len(fn.Attrs) > 0 && strings.TrimSpace(fn.Attrs[len(fn.Attrs)-1]) == "//" {
			fn.Attrs = fn.Attrs[:len(fn.Attrs)-1]
		}
	}

	return fn, nil
}

func (fn *Function) parseReceiver() error {
	recv := fn.decl.Recv
	if recv == nil || len(recv.List) == 0 {
		fn.Receiver = ReceiverNone
		return nil
	}

	field := recv.List[0]
	switch t := field.Type.(type) {
	case *ast.Ident:
		if t.Name == SelfParam {
			fn.Receiver = ReceiverValue
		}
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok && id.Name == SelfParam {
			fn.Receiver = ReceiverPointer
		}
	}
	if fn.Receiver == ReceiverNone {
		return functionError(fn.Pos, hintFunction, "receiver of %s must be %s or *%s, found %s",
			fn.Name, SelfParam, SelfParam, render(fn.fset, field.Type))
	}
	if len(field.Names) > 0 {
		fn.RecvName = field.Names[0].Name
	}
	return nil
}

// Params returns the flattened parameter list.
func (fn *Function) Params() []Param {
	return flattenFields(fn.fset, fn.decl.Type.Params)
}

// Results returns the flattened result list.
func (fn *Function) Results() []Param {
	return flattenFields(fn.fset, fn.decl.Type.Results)
}

// Body returns the function body as printed Go source, comments included.
func (fn *Function) Body() string {
	return renderWithComments(fn.fset, fn.file, fn.decl.Body)
}

// lower makes the function reachable only through its capability.
func (fn *Function) lower() {
	fn.Visibility = VisibilityInherited
}

// validCapabilityName reports whether the PascalCase form of name is a Go
// identifier. "_" and "_1" are not.
func validCapabilityName(name string) bool {
	pascal := util.ToPascalCase(name)
	r, _ := utf8.DecodeRuneInString(pascal)
	return pascal != "" && unicode.IsLetter(r)
}

// replaceSelf rewrites every reference to the Self type in the signature
// and body to typ. Field names, selectors and composite literal keys
// spelled Self are left alone. Where typ is used as an operand, as in a
// conversion Self(x) or a method expression Self.M, a typ that would not
// bind as one is parenthesized: *Buffer(b) dereferences a conversion.
func (fn *Function) replaceSelf(typ string) {
	bare := bindsAsOperand(typ)
	pre := func(c *astutil.Cursor) bool {
		id, ok := c.Node().(*ast.Ident)
		if !ok || id.Name != SelfParam {
			return true
		}
		switch c.Parent().(type) {
		case *ast.SelectorExpr:
			if c.Name() == "Sel" {
				return true
			}
		case *ast.KeyValueExpr:
			if c.Name() == "Key" {
				return true
			}
		case *ast.Field, *ast.ValueSpec:
			if c.Name() == "Names" {
				return true
			}
		case *ast.LabeledStmt, *ast.BranchStmt:
			return true
		}
		if !bare && operandPosition(c) {
			c.Replace(&ast.ParenExpr{
				Lparen: id.Pos(),
				X:      &ast.Ident{NamePos: id.Pos(), Name: typ},
				Rparen: id.End(),
			})
			return false
		}
		id.Name = typ
		return true
	}
	astutil.Apply(fn.decl.Type, pre, nil)
	astutil.Apply(fn.decl.Body, pre, nil)
}

// operandPosition reports whether the cursor sits where a type is used as
// an expression operand rather than in a type context.
func operandPosition(c *astutil.Cursor) bool {
	switch c.Parent().(type) {
	case *ast.CallExpr:
		return c.Name() == "Fun"
	case *ast.SelectorExpr:
		return c.Name() == "X"
	}
	return false
}

// bindsAsOperand reports whether typ can be spliced in front of "(" or "."
// without changing its meaning.
func bindsAsOperand(typ string) bool {
	expr, err := parser.ParseExpr(typ)
	if err != nil {
		return false
	}
	switch expr.(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr,
		*ast.ArrayType, *ast.MapType, *ast.ParenExpr:
		return true
	}
	return false
}

func flattenFields(fset *token.FileSet, fields *ast.FieldList) []Param {
	if fields == nil {
		return nil
	}
	var params []Param
	for _, f := range fields.List {
		_, variadic := f.Type.(*ast.Ellipsis)
		typ := render(fset, f.Type)
		if len(f.Names) == 0 {
			params = append(params, Param{Type: typ, Variadic: variadic})
			continue
		}
		for _, name := range f.Names {
			params = append(params, Param{Name: name.Name, Type: typ, Variadic: variadic})
		}
	}
	return params
}

// shiftLines maps a position inside the prefixed parse buffer back onto the
// caller's source.
func shiftLines(base token.Position, p token.Position) token.Position {
	if !base.IsValid() {
		return base
	}
	line := p.Line - 1 // functionPrefix is one line
	out := base
	if line <= 1 {
		out.Column = base.Column + p.Column - 1
	} else {
		out.Line = base.Line + line - 1
		out.Column = p.Column
	}
	out.Offset = base.Offset + p.Offset - len(functionPrefix)
	return out
}
