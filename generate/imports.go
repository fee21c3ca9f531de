package generate

import (
	"go/ast"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

// pruneImports deletes imports the generated declarations do not use.
// Blank and dot imports are kept: their use cannot be seen syntactically.
func pruneImports(fset *token.FileSet, file *ast.File) {
	for _, spec := range append([]*ast.ImportSpec(nil), file.Imports...) {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		var named string
		if spec.Name != nil {
			named = spec.Name.Name
			if named == "_" || named == "." {
				continue
			}
		}

		name := named
		if name == "" {
			name = importName(path)
		}
		if usesName(file, name) {
			continue
		}
		astutil.DeleteNamedImport(fset, file, named, path)
	}
}

// usesName reports whether name appears as the package of a selector that
// does not resolve to a local declaration.
func usesName(file *ast.File, name string) bool {
	used := false
	ast.Inspect(file, func(n ast.Node) bool {
		if used {
			return false
		}
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*ast.Ident); ok && id.Name == name && id.Obj == nil {
			used = true
		}
		return true
	})
	return used
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// importName guesses the package name of an unnamed import from its path:
// major version elements are skipped, "go-" prefixes and ".vN" suffixes
// dropped ("gopkg.in/yaml.v3" is yaml, "github.com/pelletier/go-toml/v2"
// is toml).
func importName(path string) string {
	elems := strings.Split(path, "/")
	name := elems[len(elems)-1]
	if majorVersion.MatchString(name) && len(elems) > 1 {
		name = elems[len(elems)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.ReplaceAll(name, "-", "")
}
