package extfn

import (
	"go/token"
)

// Input is one expansion request: the arguments of an //extfn:target
// directive and the function declaration it annotates.
type Input struct {
	Target    string
	TargetPos token.Position

	// Function is the full declaration source, doc comment included.
	Function    string
	FunctionPos token.Position
}

// Expand parses both inputs and returns the capability declarations and
// their implementation as formatted Go source without a package clause.
// It never returns partial output.
func Expand(in Input) ([]byte, error) {
	target, err := ParseTarget(in.Target, in.TargetPos)
	if err != nil {
		return nil, err
	}
	fn, err := ParseFunction(in.Function, in.FunctionPos)
	if err != nil {
		return nil, err
	}
	return Build(target, fn)
}
