package extfn

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"

	"github.com/teranos/extfn/errors"
)

// builder assembles the declarations of one expansion. Output order is
// fixed: capability, seal marker, then the implementation.
type builder struct {
	ids    Idents
	fn     *Function
	target *Target

	// visibility of the capability, captured before the function is lowered
	vis Visibility
}

// Build generates the capability and its implementation for fn attached to
// target. fn is consumed: on the concrete path its Self references are
// rewritten in place.
func Build(target *Target, fn *Function) ([]byte, error) {
	b := &builder{
		ids:    NewIdents(fn.Name),
		fn:     fn,
		target: target,
		vis:    fn.Visibility,
	}

	if target.Kind == TargetConcrete {
		if fn.Receiver == ReceiverPointer && isPointerType(target.Type) {
			return nil, functionError(fn.Pos, "use a value receiver (s Self); the target is already a pointer",
				"pointer receiver *%s on pointer target %s", SelfParam, target.Type)
		}
		fn.replaceSelf(target.Type)
	}
	fn.lower()

	var decls []string
	switch target.Kind {
	case TargetConcrete:
		generics := target.TypeParams
		decls = append(decls, b.capability(generics)...)
		decls = append(decls, b.concreteImpl()...)
	case TargetBound:
		generics := append(append([]TypeParam(nil), target.TypeParams...), b.implicitParam())
		decls = append(decls, b.capability(generics)...)
		decls = append(decls, b.boundImpl(generics)...)
	default:
		return nil, errors.AssertionFailedf("unknown target kind %d", target.Kind)
	}

	src := packageClause + strings.Join(decls, "\n\n") + "\n"
	out, err := format.Source([]byte(src))
	if err != nil {
		return nil, errors.Wrapf(err, "generated code for %s does not parse", fn.Name)
	}
	return bytes.TrimPrefix(out, []byte(packageClause)), nil
}

func isPointerType(typ string) bool {
	return strings.HasPrefix(strings.TrimLeft(typ, "("), "*")
}

// packageClause makes the output a complete file for formatting. A leading
// directive would otherwise end up on the package line of a fragment.
const packageClause = "package p\n\n"

// implicitParam is the implementing type of the bound path: Self
// constrained by the conjunction of the directive's constraints.
func (b *builder) implicitParam() TypeParam {
	constraint := b.target.Constraints[0]
	if len(b.target.Constraints) > 1 {
		constraint = "interface{ " + strings.Join(b.target.Constraints, "; ") + " }"
	}
	return TypeParam{Names: []string{SelfParam}, Constraint: constraint}
}

// capability emits the capability interface and its seal marker.
func (b *builder) capability(generics []TypeParam) []string {
	var sb strings.Builder
	sb.WriteString(b.asyncPrefix())
	fmt.Fprintf(&sb, "type %s%s interface {\n", b.ids.capabilityName(b.vis), typeParamList(generics))
	fmt.Fprintf(&sb, "\t%s\n", b.ids.Seal)
	for _, attr := range b.fn.Attrs {
		fmt.Fprintf(&sb, "\t%s\n", attr)
	}
	fmt.Fprintf(&sb, "\t%s\n", b.signature(b.fn.Params()))
	sb.WriteString("}")

	seal := fmt.Sprintf("type %s interface {\n\t%s()\n}", b.ids.Seal, b.ids.Seal)
	return []string{sb.String(), seal}
}

// concreteImpl emits the method on the target type and the seal method.
func (b *builder) concreteImpl() []string {
	typ := b.target.Type

	var recv string
	switch b.fn.Receiver {
	case ReceiverPointer:
		recv = receiver(b.fn.RecvName, "*"+typ)
	case ReceiverValue:
		recv = receiver(b.fn.RecvName, typ)
	default:
		recv = receiver("", typ)
	}

	method := fmt.Sprintf("%sfunc %s %s %s", b.asyncPrefix(), recv, b.signature(b.fn.Params()), b.fn.Body())
	seal := fmt.Sprintf("func %s %s() {}", receiver("", typ), b.ids.Seal)
	return []string{method, seal}
}

// boundImpl emits the generic adapter type, its method and seal method.
// Go has no blanket implementations; wrapping a value in the adapter is
// what attaches the capability to every type satisfying the constraints.
func (b *builder) boundImpl(generics []TypeParam) []string {
	adapter := b.ids.adapterName(b.vis)
	adapterType := adapter + typeArgList(generics)

	decl := fmt.Sprintf("type %s%s struct {\n\t%s %s\n}", adapter, typeParamList(generics), adapterField, SelfParam)

	var method string
	if b.fn.Receiver == ReceiverNone {
		method = fmt.Sprintf("%sfunc %s %s %s", b.asyncPrefix(), receiver("", adapterType), b.signature(b.fn.Params()), b.fn.Body())
	} else {
		method = b.forwardingMethod(adapterType)
	}

	seal := fmt.Sprintf("func %s %s() {}", receiver("", adapterType), b.ids.Seal)
	return []string{decl, method, seal}
}

// forwardingMethod binds the adapter's value to the template receiver by
// running the untouched body inside a function literal.
func (b *builder) forwardingMethod(adapterType string) string {
	params := b.fn.Params()

	outer := make([]Param, len(params))
	inner := make([]string, 0, len(params)+1)
	args := make([]string, 0, len(params)+1)

	recvName := b.fn.RecvName
	if recvName == "" {
		recvName = "_"
	}
	recvType, recvArg := SelfParam, recvIdent+"."+adapterField
	if b.fn.Receiver == ReceiverPointer {
		recvType, recvArg = "*"+SelfParam, "&"+recvIdent+"."+adapterField
	}
	inner = append(inner, recvName+" "+recvType)
	args = append(args, recvArg)

	for i, p := range params {
		name := p.Name
		if name == "" || name == "_" {
			name = fmt.Sprintf("%s%d", argPrefix, i)
		}
		outer[i] = Param{Name: name, Type: p.Type, Variadic: p.Variadic}

		innerName := p.Name
		if innerName == "" {
			innerName = "_"
		}
		inner = append(inner, innerName+" "+p.Type)

		if p.Variadic {
			args = append(args, name+"...")
		} else {
			args = append(args, name)
		}
	}

	results := resultList(b.fn.Results())
	lit := fmt.Sprintf("func(%s)%s %s(%s)", strings.Join(inner, ", "), prefixSpace(results), b.fn.Body(), strings.Join(args, ", "))
	if results != "" {
		lit = "return " + lit
	}

	recv := receiver(recvIdent, adapterType)
	if b.fn.Receiver == ReceiverPointer {
		recv = receiver(recvIdent, "*"+adapterType)
	}
	return fmt.Sprintf("%sfunc %s %s {\n\t%s\n}", b.asyncPrefix(), recv, b.signature(outer), lit)
}

// signature renders "Name(params) results" with the function's own name.
func (b *builder) signature(params []Param) string {
	return b.fn.Name + "(" + paramList(params) + ")" + prefixSpace(resultList(b.fn.Results()))
}

func receiver(name, typ string) string {
	if name == "" {
		return "(" + typ + ")"
	}
	return "(" + name + " " + typ + ")"
}

func paramList(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Name == "" {
			parts[i] = p.Type
		} else {
			parts[i] = p.Name + " " + p.Type
		}
	}
	return strings.Join(parts, ", ")
}

func resultList(results []Param) string {
	switch {
	case len(results) == 0:
		return ""
	case len(results) == 1 && results[0].Name == "":
		return results[0].Type
	default:
		return "(" + paramList(results) + ")"
	}
}

func prefixSpace(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}
