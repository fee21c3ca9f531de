package extfn

import (
	"github.com/teranos/extfn/extfn/util"
)

// Reserved identifiers. Generated code owns every identifier starting with
// ReservedPrefix; user code declaring one is a redeclaration error.
const (
	ReservedPrefix = "extfn"
	SealPrefix     = ReservedPrefix + "Seal"

	// SelfParam is both the receiver placeholder in templates and the
	// implicit type parameter of the bound path.
	SelfParam = "Self"

	adapterSuffix = "For"
	adapterField  = "Value"
	recvIdent     = ReservedPrefix + "Self"
	argPrefix     = ReservedPrefix + "Arg"
)

// Idents are the identifiers derived from a template function's name.
type Idents struct {
	// Capability is the PascalCase capability (interface) name, before
	// the function's visibility is applied.
	Capability string

	// Seal is the unexported sealing marker name.
	Seal string
}

// NewIdents derives the capability and seal names for a function name.
// Identical names always give identical identifiers; two templates with the
// same function name in one package collide, and the Go compiler reports
// the redeclaration.
func NewIdents(function string) Idents {
	pascal := util.ToPascalCase(function)
	return Idents{
		Capability: pascal,
		Seal:       SealPrefix + pascal,
	}
}

// capabilityName applies the function's visibility to the capability name.
func (id Idents) capabilityName(vis Visibility) string {
	if vis == VisibilityUnexported {
		return util.ToCamelCase(id.Capability)
	}
	return id.Capability
}

// adapterName is the generic adapter struct of the bound path.
func (id Idents) adapterName(vis Visibility) string {
	return id.capabilityName(vis) + adapterSuffix
}
