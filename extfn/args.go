package extfn

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"
)

// TargetKind selects the implementation path.
type TargetKind int

const (
	// TargetConcrete attaches the capability to one named type.
	TargetConcrete TargetKind = iota
	// TargetBound attaches the capability to every type satisfying a
	// constraint set, through the generic adapter type.
	TargetBound
)

func (k TargetKind) String() string {
	switch k {
	case TargetConcrete:
		return "concrete"
	case TargetBound:
		return "bound"
	default:
		return "unknown"
	}
}

// TypeParam is one group of a type parameter list, as declared:
// "K, V comparable" is one group with two names.
type TypeParam struct {
	Names      []string
	Constraint string
}

// Target is the parsed argument list of an //extfn:target directive.
type Target struct {
	Kind TargetKind

	// Type is the concrete target type expression (TargetConcrete only).
	Type string

	// Constraints are the +-joined constraints in order (TargetBound only).
	Constraints []string

	// TypeParams is the explicit type parameter list, exactly as declared.
	TypeParams []TypeParam

	Pos token.Position
}

const boundKeyword = "interface"

const (
	hintTarget     = "write a type (Text, Mapping[K, V]) or interface followed by constraints (interface ~string + fmt.Stringer)"
	hintTypeParams = "type parameters need a constraint each: [K comparable, V any]"
)

// ParseTarget parses directive arguments:
//
//	target = [ "[" TypeParamList "]" ] ( Type | "interface" Constraint { "+" Constraint } ) .
//
// pos is the position of the first byte of src and anchors diagnostics.
func ParseTarget(src string, pos token.Position) (*Target, error) {
	toks, err := scanTokens(src, pos)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, targetError(pos, hintTarget, "missing target type")
	}

	target := &Target{Pos: pos}
	rest := 0

	if toks[0].tok == token.LBRACK {
		end := matchingBracket(toks, 0)
		if end < 0 {
			return nil, targetError(advance(pos, toks[0].offset), hintTypeParams, "unterminated type parameter list")
		}
		inner := src[toks[0].offset+1 : toks[end].offset]
		params, err := parseTypeParams(inner, advance(pos, toks[0].offset+1))
		if err != nil {
			// "[]byte" and "[4]int" are types, not parameter lists
			if typ, typErr := parseTypeExpr(src, pos); typErr == nil {
				target.Kind = TargetConcrete
				target.Type = typ
				return target, nil
			}
			return nil, err
		}
		target.TypeParams = params
		rest = end + 1
	}

	if rest >= len(toks) {
		return nil, targetError(pos, hintTarget, "missing target type after type parameter list")
	}

	if toks[rest].tok == token.INTERFACE && (rest+1 >= len(toks) || toks[rest+1].tok != token.LBRACE) {
		constraints, err := parseConstraints(src, toks[rest+1:], advance(pos, toks[rest].offset), pos)
		if err != nil {
			return nil, err
		}
		target.Kind = TargetBound
		target.Constraints = constraints
		return target, nil
	}

	start := toks[rest].offset
	typ, err := parseTypeExpr(src[start:], advance(pos, start))
	if err != nil {
		return nil, err
	}
	target.Kind = TargetConcrete
	target.Type = typ
	return target, nil
}

// scanTokens tokenizes src, dropping automatically inserted semicolons.
func scanTokens(src string, pos token.Position) ([]tokenInfo, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var firstErr error
	var s scanner.Scanner
	s.Init(file, []byte(src), func(p token.Position, msg string) {
		if firstErr == nil {
			firstErr = targetError(advance(pos, p.Offset), hintTarget, "%s", msg)
		}
	}, 0)

	var toks []tokenInfo
	for {
		p, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		toks = append(toks, tokenInfo{offset: file.Offset(p), tok: tok, lit: lit})
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return toks, nil
}

// matchingBracket returns the index of the token closing toks[open], or -1.
func matchingBracket(toks []tokenInfo, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].tok {
		case token.LBRACK, token.LPAREN, token.LBRACE:
			depth++
		case token.RBRACK, token.RPAREN, token.RBRACE:
			depth--
			if depth == 0 {
				if toks[i].tok != token.RBRACK {
					return -1
				}
				return i
			}
		}
	}
	return -1
}

const typeParamsPrefix = "package p\ntype _["

// parseTypeParams parses the text between the brackets of a type parameter
// list by handing the parser a throwaway generic type declaration.
func parseTypeParams(inner string, pos token.Position) ([]TypeParam, error) {
	if strings.TrimSpace(inner) == "" {
		return nil, targetError(pos, hintTypeParams, "empty type parameter list")
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", typeParamsPrefix+inner+"] struct{}\n", parser.SkipObjectResolution)
	if err != nil {
		return nil, targetError(shiftParseError(err, pos, len("type _[")), hintTypeParams, "malformed type parameter list: %s", parseErrorMsg(err))
	}

	gen, ok := file.Decls[0].(*ast.GenDecl)
	if !ok || len(gen.Specs) != 1 {
		return nil, targetError(pos, hintTypeParams, "malformed type parameter list")
	}
	spec := gen.Specs[0].(*ast.TypeSpec)
	if spec.TypeParams == nil {
		// "[K]" parses as an array length, not as a parameter list
		return nil, targetError(pos, hintTypeParams, "type parameter list %q has no constraints", "["+inner+"]")
	}

	var params []TypeParam
	for _, field := range spec.TypeParams.List {
		p := TypeParam{Constraint: render(fset, field.Type)}
		for _, name := range field.Names {
			if name.Name == SelfParam {
				return nil, targetError(advance(pos, fset.Position(name.Pos()).Column-1-len("type _[")), "",
					"type parameter name %s is reserved for the implementing type", SelfParam)
			}
			p.Names = append(p.Names, name.Name)
		}
		params = append(params, p)
	}
	return params, nil
}

// parseConstraints splits toks on top-level + and parses each constraint.
// kwPos is the position of the interface keyword.
func parseConstraints(src string, toks []tokenInfo, kwPos, pos token.Position) ([]string, error) {
	if len(toks) == 0 {
		return nil, targetError(kwPos, hintTarget, "missing constraint after %s", boundKeyword)
	}

	var constraints []string
	depth := 0
	segStart := 0
	flush := func(end int) error {
		if segStart >= end {
			at := kwPos
			if segStart < len(toks) {
				at = advance(pos, toks[segStart].offset)
			} else if end > 0 {
				at = advance(pos, toks[end-1].offset)
			}
			return targetError(at, hintTarget, "empty constraint in %s list", boundKeyword)
		}
		from := toks[segStart].offset
		to := len(src)
		if end < len(toks) {
			to = toks[end].offset
		}
		c, err := parseConstraintExpr(src[from:to], advance(pos, from))
		if err != nil {
			return err
		}
		constraints = append(constraints, c)
		return nil
	}

	for i, t := range toks {
		switch t.tok {
		case token.LBRACK, token.LPAREN, token.LBRACE:
			depth++
		case token.RBRACK, token.RPAREN, token.RBRACE:
			depth--
		case token.ADD:
			if depth == 0 {
				if err := flush(i); err != nil {
					return nil, err
				}
				segStart = i + 1
			}
		}
	}
	if err := flush(len(toks)); err != nil {
		return nil, err
	}
	return constraints, nil
}

func parseTypeExpr(src string, pos token.Position) (string, error) {
	fset := token.NewFileSet()
	expr, err := parser.ParseExprFrom(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		if strings.Contains(err.Error(), "expected 'EOF'") {
			return "", targetError(shiftParseError(err, pos, 0), hintTarget, "unexpected trailing tokens after target type")
		}
		return "", targetError(shiftParseError(err, pos, 0), hintTarget, "malformed type expression: %s", parseErrorMsg(err))
	}
	if !isTypeExpr(expr) {
		return "", targetError(pos, hintTarget, "%q is not a type expression", strings.TrimSpace(src))
	}
	return render(fset, expr), nil
}

func parseConstraintExpr(src string, pos token.Position) (string, error) {
	fset := token.NewFileSet()
	expr, err := parser.ParseExprFrom(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		return "", targetError(shiftParseError(err, pos, 0), hintTarget, "malformed constraint %q: %s", strings.TrimSpace(src), parseErrorMsg(err))
	}
	if !isConstraintExpr(expr) {
		return "", targetError(pos, hintTarget, "%q is not a constraint", strings.TrimSpace(src))
	}
	return render(fset, expr), nil
}

func isTypeExpr(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name != "_"
	case *ast.SelectorExpr:
		_, ok := e.X.(*ast.Ident)
		return ok
	case *ast.StarExpr:
		return isTypeExpr(e.X)
	case *ast.ParenExpr:
		return isTypeExpr(e.X)
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.StructType, *ast.InterfaceType:
		return true
	case *ast.IndexExpr:
		return isTypeExpr(e.X) && isTypeExpr(e.Index)
	case *ast.IndexListExpr:
		if !isTypeExpr(e.X) {
			return false
		}
		for _, idx := range e.Indices {
			if !isTypeExpr(idx) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// isConstraintExpr accepts types, ~T terms and |-unions of them.
func isConstraintExpr(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.UnaryExpr:
		return e.Op == token.TILDE && isTypeExpr(e.X)
	case *ast.BinaryExpr:
		return e.Op == token.OR && isConstraintExpr(e.X) && isConstraintExpr(e.Y)
	default:
		return isTypeExpr(expr)
	}
}

// shiftParseError maps the first position of a go/parser error list back
// onto the directive. skip is the length of any synthetic text preceding
// the user's text on the reported line.
func shiftParseError(err error, pos token.Position, skip int) token.Position {
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		col := list[0].Pos.Column - 1 - skip
		if col < 0 {
			col = 0
		}
		return advance(pos, col)
	}
	return pos
}

func parseErrorMsg(err error) string {
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		return list[0].Msg
	}
	return err.Error()
}
